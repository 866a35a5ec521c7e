package bridge

import (
	"context"
	"fmt"

	"github.com/victorjacobs/go-turkov/turkov"
)

// Home Assistant climate vocabulary.
const (
	hvacOff     = "off"
	hvacHeat    = "heat"
	hvacCool    = "cool"
	hvacDry     = "dry"
	hvacFanOnly = "fan_only"

	fanOff    = "off"
	fanLow    = "low"
	fanMedium = "medium"
	fanHigh   = "high"
	fanAuto   = "auto"
)

func availableHVACModes(device *turkov.Device) []string {
	// Every unit ventilates, so fan only is always on the menu.
	modes := []string{hvacOff, hvacFanOnly}
	if device.HasHeater() {
		modes = append(modes, hvacHeat)
	}
	if device.HasCooler() {
		modes = append(modes, hvacCool)
	}
	if device.Snapshot().TargetHumidity != nil {
		modes = append(modes, hvacDry)
	}

	return modes
}

func currentHVACMode(device *turkov.Device) string {
	if !device.IsOn() {
		return hvacOff
	}
	if device.IsHeaterOn() {
		return hvacHeat
	}
	if device.IsCoolerOn() {
		return hvacCool
	}
	if humidifier := device.Snapshot().Humidifier; humidifier != nil && *humidifier {
		return hvacDry
	}

	return hvacFanOnly
}

func applyHVACMode(ctx context.Context, device *turkov.Device, mode string) error {
	if mode == hvacOff {
		if device.IsOn() {
			return device.TurnOff(ctx)
		}
		return nil
	}

	if !device.IsOn() {
		if err := device.TurnOn(ctx); err != nil {
			return err
		}
	}

	switch mode {
	case hvacFanOnly:
		if device.IsHeaterOn() || device.IsCoolerOn() {
			if err := device.TurnOffHVAC(ctx); err != nil {
				return err
			}
		}
		if humidifier := device.Snapshot().Humidifier; humidifier != nil && *humidifier {
			return device.SetHumidifier(ctx, false)
		}
		return nil
	case hvacDry:
		if device.IsHeaterOn() || device.IsCoolerOn() {
			if err := device.TurnOffHVAC(ctx); err != nil {
				return err
			}
		}
		if humidifier := device.Snapshot().Humidifier; humidifier != nil && !*humidifier {
			if err := device.SetHumidifier(ctx, true); err != nil {
				return err
			}
		}
		if target := device.Snapshot().TargetHumidity; target != nil {
			return device.SetTargetHumidity(ctx, int(*target))
		}
		return nil
	case hvacHeat:
		if !device.IsHeaterOn() {
			if err := device.TurnOnHeater(ctx); err != nil {
				return err
			}
		}
	case hvacCool:
		if !device.IsCoolerOn() {
			if err := device.TurnOnCooler(ctx); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported HVAC mode: %v", mode)
	}

	// Switching modes resets the setpoint on the unit, so send it again.
	if target := device.Snapshot().TargetTemperature; target != nil {
		return device.SetTargetTemperature(ctx, int(*target))
	}

	return nil
}

func availableFanModes(device *turkov.Device) []string {
	modes := []string{fanOff, fanLow, fanMedium, fanHigh}
	if device.Snapshot().FanMode == "both" {
		modes = append(modes, fanAuto)
	}

	return modes
}

func currentFanMode(device *turkov.Device) string {
	switch device.Snapshot().FanSpeed {
	case "A", "auto":
		return fanAuto
	case "1":
		return fanLow
	case "2":
		return fanMedium
	case "3":
		return fanHigh
	default:
		return fanOff
	}
}

func applyFanMode(ctx context.Context, device *turkov.Device, mode string) error {
	// Fan off is virtual, it powers down the whole unit.
	if mode == fanOff {
		if device.IsOn() {
			return device.TurnOff(ctx)
		}
		return nil
	}

	var fanSpeed string
	switch mode {
	case fanAuto:
		fanSpeed = "A"
	case fanLow:
		fanSpeed = "1"
	case fanMedium:
		fanSpeed = "2"
	case fanHigh:
		fanSpeed = "3"
	default:
		return fmt.Errorf("unsupported fan mode: %v", mode)
	}

	if !device.IsOn() {
		if err := device.TurnOn(ctx); err != nil {
			return err
		}
	}

	return device.SetFanSpeed(ctx, fanSpeed)
}

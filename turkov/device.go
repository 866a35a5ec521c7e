package turkov

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/victorjacobs/go-turkov/logging"
)

// State holds the last known attribute values of a device. Pointer fields
// are nil until the device has reported the attribute at least once.
type State struct {
	Power        *bool
	FanSpeed     string
	FanMode      string
	SelectedMode string
	Setup        string

	TargetTemperature    *float64
	TargetHumidity       *float64
	CurrentTemperature   *float64
	CurrentHumidity      *float64
	IndoorTemperature    *float64
	OutdoorTemperature   *float64
	IndoorHumidity       *float64
	AirPressure          *float64
	CO2Level             *float64
	FilterLifePercentage *float64

	FirstRelay  *bool
	SecondRelay *bool
	Fireplace   *bool
	Humidifier  *bool

	ImageURL string
}

// Device is a single Turkov unit, reachable through the cloud session it was
// discovered on, a LAN client, or both.
type Device struct {
	ID              string
	SerialNumber    string
	Pin             string
	Type            string
	Name            string
	FirmwareVersion string

	session *Session
	local   *LocalClient
	log     zerolog.Logger

	mutex sync.Mutex
	state State
}

func newCloudDevice(id string, session *Session) *Device {
	return &Device{
		ID:      id,
		session: session,
		log:     logging.WithComponent("device").With().Str("device", hideID(id)).Logger(),
	}
}

// NewLocalDevice creates a device reachable over the LAN only.
func NewLocalDevice(id string, local *LocalClient) *Device {
	return &Device{
		ID:    id,
		local: local,
		log:   logging.WithComponent("device").With().Str("device", hideID(id)).Logger(),
	}
}

// SetLocal attaches a LAN client; state fetches and commands then prefer the
// local path and fall back to the cloud.
func (d *Device) SetLocal(local *LocalClient) {
	d.local = local
}

// Snapshot returns a copy of the last known state.
func (d *Device) Snapshot() State {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.state
}

var stockImages = map[string]string{
	"Zenit":   "/images/zenit.jpg",
	"Capsule": "/images/capsule.jpg",
	"i-Vent":  "/images/ivent.jpg",
}

type attribute struct {
	name string
	key  string
	set  func(s *State, value any) (bool, error)
}

var attributes = []attribute{
	{"is_on", "on", func(s *State, v any) (bool, error) { return setBool(&s.Power, v) }},
	{"fan_speed", "fan_speed", func(s *State, v any) (bool, error) { return setString(&s.FanSpeed, v) }},
	{"fan_mode", "fan_mode", func(s *State, v any) (bool, error) { return setString(&s.FanMode, v) }},
	{"selected_mode", "mode", func(s *State, v any) (bool, error) { return setString(&s.SelectedMode, v) }},
	{"setup", "setup", func(s *State, v any) (bool, error) { return setString(&s.Setup, v) }},
	{"target_temperature", "temp_sp", func(s *State, v any) (bool, error) { return setFloat(&s.TargetTemperature, v, 1) }},
	{"target_humidity", "hum_sp", func(s *State, v any) (bool, error) { return setFloat(&s.TargetHumidity, v, 1) }},
	{"current_temperature", "temp_curr", func(s *State, v any) (bool, error) { return setFloat(&s.CurrentTemperature, v, 10) }},
	{"current_humidity", "hum_curr", func(s *State, v any) (bool, error) { return setFloat(&s.CurrentHumidity, v, 10) }},
	{"indoor_temperature", "in_temp", func(s *State, v any) (bool, error) { return setFloat(&s.IndoorTemperature, v, 10) }},
	{"outdoor_temperature", "out_temp", func(s *State, v any) (bool, error) { return setFloat(&s.OutdoorTemperature, v, 10) }},
	{"indoor_humidity", "in_humid", func(s *State, v any) (bool, error) { return setFloat(&s.IndoorHumidity, v, 10) }},
	{"air_pressure", "air_press", func(s *State, v any) (bool, error) { return setFloat(&s.AirPressure, v, 1) }},
	{"co2_level", "CO2_level", func(s *State, v any) (bool, error) { return setFloat(&s.CO2Level, v, 1) }},
	{"filter_life_percentage", "filter", func(s *State, v any) (bool, error) { return setFloat(&s.FilterLifePercentage, v, 1) }},
	{"first_relay", "relay_1", func(s *State, v any) (bool, error) { return setBool(&s.FirstRelay, v) }},
	{"second_relay", "relay_2", func(s *State, v any) (bool, error) { return setBool(&s.SecondRelay, v) }},
	{"fireplace", "fireplace", func(s *State, v any) (bool, error) { return setBool(&s.Fireplace, v) }},
	{"humidifier", "humidifier", func(s *State, v any) (bool, error) { return setBool(&s.Humidifier, v) }},
}

// ApplyState maps a raw state document onto the device and returns the names
// of the attributes that changed. Unknown keys are ignored; malformed values
// are logged and skipped so one bad reading does not poison the rest.
func (d *Device) ApplyState(raw map[string]any) []string {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var changed []string
	for _, attr := range attributes {
		value, ok := raw[attr.key]
		if !ok {
			continue
		}

		didChange, err := attr.set(&d.state, value)
		if err != nil {
			d.log.Warn().Str("key", attr.key).Interface("value", value).Err(err).Msg("Skipping malformed attribute")
			continue
		}
		if didChange {
			changed = append(changed, attr.name)
		}
	}

	if imageURL := d.resolveImageURL(raw); imageURL != d.state.ImageURL {
		d.state.ImageURL = imageURL
		changed = append(changed, "image_url")
	}

	return changed
}

func (d *Device) resolveImageURL(raw map[string]any) string {
	base := BaseURL
	if d.session != nil {
		base = d.session.baseURL
	}

	if image, _ := raw["image"].(string); image != "" {
		return fmt.Sprintf("%v/upload/%v_%v.jpg", base, d.ID, image)
	}

	if path, ok := stockImages[d.Type]; ok {
		return base + path
	}

	return d.state.ImageURL
}

// UpdateState fetches the current state document and applies it. With a LAN
// client attached the local endpoint is tried first and the cloud serves as
// fallback.
func (d *Device) UpdateState(ctx context.Context) ([]string, error) {
	raw, err := d.fetchState(ctx)
	if err != nil {
		return nil, err
	}

	return d.ApplyState(raw), nil
}

func (d *Device) fetchState(ctx context.Context) (map[string]any, error) {
	if d.local != nil {
		raw, err := d.local.State(ctx)
		if err == nil {
			return raw, nil
		}
		if d.session == nil {
			return nil, err
		}
		d.log.Warn().Err(err).Msg("Local state fetch failed, falling back to cloud")
	}

	if d.session != nil {
		return d.session.DeviceState(ctx, d.ID)
	}

	return nil, fmt.Errorf("no method to fetch device state")
}

func (d *Device) setValue(ctx context.Context, key string, value any) error {
	if d.local != nil {
		err := d.local.SetValue(ctx, key, value)
		if err == nil {
			return nil
		}
		if d.session == nil {
			return err
		}
		d.log.Warn().Err(err).Msg("Local command failed, falling back to cloud")
	}

	if d.session != nil {
		return d.session.SetDeviceValue(ctx, d.ID, key, value)
	}

	return fmt.Errorf("no method to set device values")
}

func (d *Device) TurnOn(ctx context.Context) error {
	return d.setValue(ctx, "on", "true")
}

func (d *Device) TurnOff(ctx context.Context) error {
	return d.setValue(ctx, "on", "false")
}

// SetFanSpeed accepts "A" (automatic) or the discrete steps "0" through "3".
func (d *Device) SetFanSpeed(ctx context.Context, fanSpeed string) error {
	switch fanSpeed {
	case "A", "0", "1", "2", "3":
	default:
		return fmt.Errorf("%w: valid fan speed not specified", ErrValue)
	}

	return d.setValue(ctx, "fan_speed", fanSpeed)
}

func (d *Device) SetTargetTemperature(ctx context.Context, targetTemperature int) error {
	if targetTemperature < 15 || targetTemperature > 50 {
		return fmt.Errorf("%w: target temperature out of bounds", ErrValue)
	}

	return d.setValue(ctx, "temp_sp", targetTemperature)
}

func (d *Device) SetTargetHumidity(ctx context.Context, targetHumidity int) error {
	if targetHumidity < 40 || targetHumidity > 100 {
		return fmt.Errorf("%w: target humidity out of bounds", ErrValue)
	}

	return d.setValue(ctx, "hum_sp", targetHumidity)
}

func (d *Device) TurnOnHeater(ctx context.Context) error {
	return d.setValue(ctx, "mode", "1")
}

func (d *Device) TurnOnCooler(ctx context.Context) error {
	return d.setValue(ctx, "mode", "2")
}

// TurnOffHVAC disables heating/cooling while leaving ventilation running.
func (d *Device) TurnOffHVAC(ctx context.Context) error {
	return d.setValue(ctx, "mode", "0")
}

func (d *Device) SetFirstRelay(ctx context.Context, on bool) error {
	return d.setValue(ctx, "relay_1", boolValue(on))
}

func (d *Device) SetSecondRelay(ctx context.Context, on bool) error {
	return d.setValue(ctx, "relay_2", boolValue(on))
}

func (d *Device) SetFireplace(ctx context.Context, on bool) error {
	return d.setValue(ctx, "fireplace", boolValue(on))
}

func (d *Device) SetHumidifier(ctx context.Context, on bool) error {
	return d.setValue(ctx, "humidifier", boolValue(on))
}

func boolValue(on bool) string {
	if on {
		return "true"
	}
	return "false"
}

// IsOn reports whether the unit itself is running.
func (d *Device) IsOn() bool {
	state := d.Snapshot()
	return state.Power != nil && *state.Power
}

func (d *Device) HasHeater() bool {
	setup := d.Snapshot().Setup
	return setup == "heating" || setup == "both"
}

func (d *Device) HasCooler() bool {
	setup := d.Snapshot().Setup
	return setup == "cooling" || setup == "both"
}

func (d *Device) IsHeaterOn() bool {
	return d.Snapshot().SelectedMode == "heating"
}

func (d *Device) IsCoolerOn() bool {
	return d.Snapshot().SelectedMode == "cooling"
}

// DisplayName picks the friendliest available identifier.
func (d *Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Type != "" {
		return d.Type
	}
	return d.ID
}

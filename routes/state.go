package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/victorjacobs/go-turkov/bridge"
	"github.com/victorjacobs/go-turkov/logging"
)

type deviceSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Type            string    `json:"type,omitempty"`
	SerialNumber    string    `json:"serial_number,omitempty"`
	FirmwareVersion string    `json:"firmware_version,omitempty"`
	Online          bool      `json:"online"`
	LastRefreshed   time.Time `json:"last_refreshed"`
}

type stateResponse struct {
	deviceSummary

	Power                *bool    `json:"power,omitempty"`
	FanSpeed             string   `json:"fan_speed,omitempty"`
	SelectedMode         string   `json:"selected_mode,omitempty"`
	TargetTemperature    *float64 `json:"target_temperature,omitempty"`
	CurrentTemperature   *float64 `json:"current_temperature,omitempty"`
	TargetHumidity       *float64 `json:"target_humidity,omitempty"`
	CurrentHumidity      *float64 `json:"current_humidity,omitempty"`
	IndoorTemperature    *float64 `json:"indoor_temperature,omitempty"`
	OutdoorTemperature   *float64 `json:"outdoor_temperature,omitempty"`
	IndoorHumidity       *float64 `json:"indoor_humidity,omitempty"`
	AirPressure          *float64 `json:"air_pressure,omitempty"`
	CO2Level             *float64 `json:"co2_level,omitempty"`
	FilterLifePercentage *float64 `json:"filter_life_percentage,omitempty"`
	ImageURL             string   `json:"image_url,omitempty"`
}

func summarize(b *bridge.Bridge) deviceSummary {
	device := b.Device()

	return deviceSummary{
		ID:              device.ID,
		Name:            device.DisplayName(),
		Type:            device.Type,
		SerialNumber:    device.SerialNumber,
		FirmwareVersion: device.FirmwareVersion,
		Online:          b.Online(),
		LastRefreshed:   b.LastPoll(),
	}
}

// Devices lists all bridged devices.
func Devices(bridges map[string]*bridge.Bridge) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		summaries := make([]deviceSummary, 0, len(bridges))
		for _, b := range bridges {
			summaries = append(summaries, summarize(b))
		}

		writeJSON(w, summaries)
	}
}

// DeviceState returns the last polled state snapshot for one device.
func DeviceState(bridges map[string]*bridge.Bridge) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		b, ok := bridges[params.ByName("id")]
		if !ok {
			http.Error(w, "device not found", http.StatusNotFound)
			return
		}

		state := b.Device().Snapshot()

		resp := stateResponse{
			deviceSummary:        summarize(b),
			Power:                state.Power,
			FanSpeed:             state.FanSpeed,
			SelectedMode:         state.SelectedMode,
			TargetTemperature:    state.TargetTemperature,
			CurrentTemperature:   state.CurrentTemperature,
			TargetHumidity:       state.TargetHumidity,
			CurrentHumidity:      state.CurrentHumidity,
			IndoorTemperature:    state.IndoorTemperature,
			OutdoorTemperature:   state.OutdoorTemperature,
			IndoorHumidity:       state.IndoorHumidity,
			AirPressure:          state.AirPressure,
			CO2Level:             state.CO2Level,
			FilterLifePercentage: state.FilterLifePercentage,
			ImageURL:             state.ImageURL,
		}

		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		logger := logging.WithComponent("routes")
		logger.Error().Err(err).Msg("Error marshaling response")
	}
}

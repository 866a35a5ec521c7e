package bridge

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorjacobs/go-turkov/turkov"
)

// commandRecorder serves a device's LAN endpoint and records every command.
type commandRecorder struct {
	mutex    sync.Mutex
	state    map[string]any
	commands []map[string]any
}

func (r *commandRecorder) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", func(w http.ResponseWriter, req *http.Request) {
		r.mutex.Lock()
		defer r.mutex.Unlock()
		json.NewEncoder(w).Encode(r.state)
	})
	mux.HandleFunc("/command", func(w http.ResponseWriter, req *http.Request) {
		var command map[string]any
		if err := json.NewDecoder(req.Body).Decode(&command); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		r.mutex.Lock()
		defer r.mutex.Unlock()
		r.commands = append(r.commands, command)
	})
	return mux
}

func (r *commandRecorder) recorded() []map[string]any {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return append([]map[string]any{}, r.commands...)
}

func newRecordedDevice(t *testing.T, state map[string]any) (*turkov.Device, *commandRecorder) {
	t.Helper()

	recorder := &commandRecorder{state: state}
	server := httptest.NewServer(recorder.handler())
	t.Cleanup(server.Close)

	host, portString, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portString)
	require.NoError(t, err)

	local, err := turkov.NewLocalClient(host, port)
	require.NoError(t, err)

	device := turkov.NewLocalDevice("device-1", local)
	device.ApplyState(state)

	return device, recorder
}

// deadLocalClient points at an address nothing listens on.
func deadLocalClient(t *testing.T) *turkov.LocalClient {
	t.Helper()

	server := httptest.NewServer(http.NotFoundHandler())
	host, portString, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portString)
	require.NoError(t, err)
	server.Close()

	local, err := turkov.NewLocalClient(host, port)
	require.NoError(t, err)

	return local
}

func TestAvailableHVACModes(t *testing.T) {
	tests := []struct {
		name     string
		state    map[string]any
		expected []string
	}{
		{
			name:     "ventilation only",
			state:    map[string]any{"on": "true"},
			expected: []string{"off", "fan_only"},
		},
		{
			name:     "heater",
			state:    map[string]any{"on": "true", "setup": "heating"},
			expected: []string{"off", "fan_only", "heat"},
		},
		{
			name:     "heater and cooler with humidifier",
			state:    map[string]any{"on": "true", "setup": "both", "hum_sp": "55"},
			expected: []string{"off", "fan_only", "heat", "cool", "dry"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			device, _ := newRecordedDevice(t, test.state)
			assert.Equal(t, test.expected, availableHVACModes(device))
		})
	}
}

func TestCurrentHVACMode(t *testing.T) {
	tests := []struct {
		name     string
		state    map[string]any
		expected string
	}{
		{"powered down", map[string]any{"on": "false"}, "off"},
		{"heating", map[string]any{"on": "true", "mode": "heating"}, "heat"},
		{"cooling", map[string]any{"on": "true", "mode": "cooling"}, "cool"},
		{"ventilating", map[string]any{"on": "true", "mode": "none"}, "fan_only"},
		{"humidifying", map[string]any{"on": "true", "mode": "none", "humidifier": "true"}, "dry"},
		{"heating wins over humidifier", map[string]any{"on": "true", "mode": "heating", "humidifier": "true"}, "heat"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			device, _ := newRecordedDevice(t, test.state)
			assert.Equal(t, test.expected, currentHVACMode(device))
		})
	}
}

func TestApplyHVACModeHeatResendsSetpoint(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{
		"on":      "false",
		"setup":   "heating",
		"mode":    "none",
		"temp_sp": "21",
	})

	require.NoError(t, applyHVACMode(context.Background(), device, "heat"))

	assert.Equal(t, []map[string]any{
		{"on": "true"},
		{"mode": "1"},
		{"temp_sp": float64(21)},
	}, recorder.recorded())
}

func TestApplyHVACModeOff(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{"on": "true"})

	require.NoError(t, applyHVACMode(context.Background(), device, "off"))
	assert.Equal(t, []map[string]any{{"on": "false"}}, recorder.recorded())

	// Already off, nothing to send.
	device.ApplyState(map[string]any{"on": "false"})
	require.NoError(t, applyHVACMode(context.Background(), device, "off"))
	assert.Len(t, recorder.recorded(), 1)
}

func TestApplyHVACModeFanOnlyDisablesHVAC(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{
		"on":    "true",
		"setup": "heating",
		"mode":  "heating",
	})

	require.NoError(t, applyHVACMode(context.Background(), device, "fan_only"))
	assert.Equal(t, []map[string]any{{"mode": "0"}}, recorder.recorded())
}

func TestApplyHVACModeDryStartsHumidifier(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{
		"on":         "true",
		"setup":      "heating",
		"mode":       "heating",
		"humidifier": "false",
		"hum_sp":     "55",
	})

	require.NoError(t, applyHVACMode(context.Background(), device, "dry"))

	assert.Equal(t, []map[string]any{
		{"mode": "0"},
		{"humidifier": "true"},
		{"hum_sp": float64(55)},
	}, recorder.recorded())
}

func TestApplyHVACModeFanOnlyStopsHumidifier(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{
		"on":         "true",
		"mode":       "none",
		"humidifier": "true",
	})

	require.NoError(t, applyHVACMode(context.Background(), device, "fan_only"))
	assert.Equal(t, []map[string]any{{"humidifier": "false"}}, recorder.recorded())
}

func TestApplyHVACModeRejectsUnknownMode(t *testing.T) {
	device, _ := newRecordedDevice(t, map[string]any{"on": "true"})

	assert.Error(t, applyHVACMode(context.Background(), device, "heat_cool"))
}

func TestAvailableFanModes(t *testing.T) {
	device, _ := newRecordedDevice(t, map[string]any{"on": "true"})
	assert.Equal(t, []string{"off", "low", "medium", "high"}, availableFanModes(device))

	device.ApplyState(map[string]any{"fan_mode": "both"})
	assert.Equal(t, []string{"off", "low", "medium", "high", "auto"}, availableFanModes(device))
}

func TestCurrentFanMode(t *testing.T) {
	tests := []struct {
		fanSpeed string
		expected string
	}{
		{"A", "auto"},
		{"1", "low"},
		{"2", "medium"},
		{"3", "high"},
		{"0", "off"},
	}

	for _, test := range tests {
		t.Run(test.fanSpeed, func(t *testing.T) {
			device, _ := newRecordedDevice(t, map[string]any{"on": "true", "fan_speed": test.fanSpeed})
			assert.Equal(t, test.expected, currentFanMode(device))
		})
	}
}

func TestApplyFanModeTurnsOnFirst(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{"on": "false"})

	require.NoError(t, applyFanMode(context.Background(), device, "medium"))

	assert.Equal(t, []map[string]any{
		{"on": "true"},
		{"fan_speed": "2"},
	}, recorder.recorded())
}

func TestApplyFanModeOffPowersDown(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{"on": "true"})

	require.NoError(t, applyFanMode(context.Background(), device, "off"))
	assert.Equal(t, []map[string]any{{"on": "false"}}, recorder.recorded())
}

func TestApplyFanModeAuto(t *testing.T) {
	device, recorder := newRecordedDevice(t, map[string]any{"on": "true", "fan_mode": "both"})

	require.NoError(t, applyFanMode(context.Background(), device, "auto"))
	assert.Equal(t, []map[string]any{{"fan_speed": "A"}}, recorder.recorded())
}

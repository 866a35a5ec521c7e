package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorjacobs/go-turkov/bridge"
	"github.com/victorjacobs/go-turkov/turkov"
)

func testBridges() map[string]*bridge.Bridge {
	device := turkov.NewLocalDevice("device-1", nil)
	device.Name = "Living Room"
	device.Type = "Zenit"
	device.ApplyState(map[string]any{
		"on":        "true",
		"fan_speed": "2",
		"temp_sp":   "21",
		"temp_curr": "215",
		"out_temp":  "-53",
	})

	return map[string]*bridge.Bridge{
		"device-1": bridge.New(device),
	}
}

func testRouter(bridges map[string]*bridge.Bridge) *httprouter.Router {
	router := httprouter.New()
	router.GET("/devices", Devices(bridges))
	router.GET("/devices/:id/state", DeviceState(bridges))

	return router
}

func TestDevices(t *testing.T) {
	router := testRouter(testBridges())
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/devices", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var devices []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "device-1", devices[0]["id"])
	assert.Equal(t, "Living Room", devices[0]["name"])
	assert.Equal(t, "Zenit", devices[0]["type"])
	assert.Equal(t, false, devices[0]["online"])
}

func TestDeviceState(t *testing.T) {
	router := testRouter(testBridges())
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/devices/device-1/state", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var state map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &state))
	assert.Equal(t, "device-1", state["id"])
	assert.Equal(t, true, state["power"])
	assert.Equal(t, "2", state["fan_speed"])
	assert.EqualValues(t, 21, state["target_temperature"])
	assert.EqualValues(t, 21.5, state["current_temperature"])
	assert.EqualValues(t, -5.3, state["outdoor_temperature"])
	// Nothing reported these, so they stay out of the payload.
	assert.NotContains(t, state, "co2_level")
	assert.NotContains(t, state, "target_humidity")
}

func TestDeviceStateNotFound(t *testing.T) {
	router := testRouter(testBridges())
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/devices/unknown/state", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

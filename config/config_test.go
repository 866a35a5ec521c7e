package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "turkov.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestLoadConfiguration(t *testing.T) {
	path := writeConfig(t, `{
		"cloud": {"email": "user@example.com", "password": "hunter2"},
		"hosts": {"device-1": {"ip_address": "192.168.1.10"}},
		"mqtt": {"ip_address": "192.168.1.2", "username": "mqtt", "password": "secret"},
		"state_poll_seconds": 30,
		"log_level": "debug"
	}`)

	configuration, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", configuration.Cloud.Email)
	assert.Equal(t, "192.168.1.2", configuration.Mqtt.IpAddress)
	assert.Equal(t, 30*time.Second, configuration.StatePollInterval())
	assert.Equal(t, "debug", configuration.LogLevel)
	// Host port defaults to the unit's plain HTTP port.
	assert.Equal(t, 80, configuration.Hosts["device-1"].Port)
}

func TestLoadConfigurationDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"cloud": {"email": "user@example.com", "password": "hunter2"},
		"mqtt": {"ip_address": "192.168.1.2"}
	}`)

	configuration, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", configuration.HTTPAddress)
	assert.Equal(t, 10*time.Second, configuration.StatePollInterval())
	assert.Equal(t, 600*time.Second, configuration.UserDataPollInterval())
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		expected string
	}{
		{
			name:     "missing mqtt address",
			contents: `{"cloud": {"email": "a@b.c", "password": "x"}}`,
			expected: "mqtt.ip_address is required",
		},
		{
			name:     "incomplete cloud credentials",
			contents: `{"cloud": {"email": "a@b.c"}, "mqtt": {"ip_address": "192.168.1.2"}}`,
			expected: "cloud.email and cloud.password are required",
		},
		{
			name:     "neither cloud nor hosts",
			contents: `{"mqtt": {"ip_address": "192.168.1.2"}}`,
			expected: "either cloud credentials or at least one host is required",
		},
		{
			name:     "host without address",
			contents: `{"hosts": {"device-1": {}}, "mqtt": {"ip_address": "192.168.1.2"}}`,
			expected: "hosts.device-1.ip_address is required",
		},
		{
			name:     "host port out of range",
			contents: `{"hosts": {"device-1": {"ip_address": "192.168.1.10", "port": 70000}}, "mqtt": {"ip_address": "192.168.1.2"}}`,
			expected: "hosts.device-1.port must be within [1:65535] range",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, test.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expected)
		})
	}
}

func TestMqttClientOptions(t *testing.T) {
	mqttConfig := &Mqtt{IpAddress: "192.168.1.2", Username: "mqtt", Password: "secret"}

	options := mqttConfig.ClientOptions()
	require.Len(t, options.Servers, 1)
	assert.Equal(t, "tcp://192.168.1.2:1883", options.Servers[0].String())
	assert.Contains(t, options.ClientID, "go-turkov-")
	assert.Equal(t, "mqtt", options.Username)
	assert.True(t, options.AutoReconnect)
}

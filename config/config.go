package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/victorjacobs/go-turkov/logging"
)

const HomeAssistantPrefix = "homeassistant"
const TopicPrefix = "turkov"

type Configuration struct {
	Cloud               *Cloud          `json:"cloud"`
	Hosts               map[string]Host `json:"hosts"`
	Mqtt                Mqtt            `json:"mqtt"`
	HTTPAddress         string          `json:"http_address"`
	StatePollSeconds    int             `json:"state_poll_seconds"`
	UserDataPollSeconds int             `json:"user_data_poll_seconds"`
	LogLevel            string          `json:"log_level"`
}

// Cloud holds the Turkov account credentials used for device discovery and
// as command fallback.
type Cloud struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Host is a LAN address override for one device, keyed by device id in the
// configuration file.
type Host struct {
	IpAddress string `json:"ip_address"`
	Port      int    `json:"port"`
}

type Mqtt struct {
	IpAddress string `json:"ip_address"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func LoadConfiguration(filename string) (*Configuration, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	configuration := &Configuration{}
	if err := json.NewDecoder(file).Decode(configuration); err != nil {
		return nil, err
	}

	configuration.applyDefaults()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.HTTPAddress == "" {
		c.HTTPAddress = ":8080"
	}
	if c.StatePollSeconds == 0 {
		c.StatePollSeconds = 10
	}
	if c.UserDataPollSeconds == 0 {
		c.UserDataPollSeconds = 600
	}
	for id, host := range c.Hosts {
		if host.Port == 0 {
			host.Port = 80
			c.Hosts[id] = host
		}
	}
}

func (c *Configuration) Validate() error {
	if c.Mqtt.IpAddress == "" {
		return fmt.Errorf("mqtt.ip_address is required")
	}
	if c.Cloud != nil {
		if c.Cloud.Email == "" || c.Cloud.Password == "" {
			return fmt.Errorf("cloud.email and cloud.password are required")
		}
	} else if len(c.Hosts) == 0 {
		return fmt.Errorf("either cloud credentials or at least one host is required")
	}
	for id, host := range c.Hosts {
		if host.IpAddress == "" {
			return fmt.Errorf("hosts.%v.ip_address is required", id)
		}
		if host.Port < 1 || host.Port > 65535 {
			return fmt.Errorf("hosts.%v.port must be within [1:65535] range", id)
		}
	}

	return nil
}

func (c *Configuration) StatePollInterval() time.Duration {
	return time.Duration(c.StatePollSeconds) * time.Second
}

func (c *Configuration) UserDataPollInterval() time.Duration {
	return time.Duration(c.UserDataPollSeconds) * time.Second
}

func (m *Mqtt) ClientOptions() *mqtt.ClientOptions {
	log := logging.WithComponent("mqtt")

	return mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%v:1883", m.IpAddress)).
		SetClientID("go-turkov-" + uuid.NewString()[:8]).
		SetUsername(m.Username).
		SetPassword(m.Password).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(client mqtt.Client, err error) {
			log.Warn().Err(err).Msg("MQTT connection lost")
		}).
		SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
			log.Info().Msg("MQTT reconnecting")
		})
}

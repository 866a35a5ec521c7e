package homeassistant

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/victorjacobs/go-turkov/config"
)

// Client registers entities with Home Assistant over MQTT discovery.
type Client struct {
	mqtt mqtt.Client
}

func NewClient(mqtt mqtt.Client) *Client {
	return &Client{
		mqtt: mqtt,
	}
}

// Device describes the physical unit entities get grouped under.
type Device struct {
	Identifier       string
	Name             string
	Manufacturer     string
	Model            string
	FirmwareVersion  string
	ConfigurationURL string
}

func (d *Device) block() *deviceBlock {
	if d == nil {
		return nil
	}
	return &deviceBlock{
		Identifiers:      []string{"turkov_" + d.Identifier},
		Name:             d.Name,
		Manufacturer:     d.Manufacturer,
		Model:            d.Model,
		SwVersion:        d.FirmwareVersion,
		ConfigurationURL: d.ConfigurationURL,
	}
}

type Sensor struct {
	DeviceSlug string
	Key        string
	Name       string
	Class      string
	StateClass string
	Unit       string
	Icon       string
	Device     *Device
}

type Switch struct {
	DeviceSlug string
	Key        string
	Name       string
	Icon       string
	Device     *Device
}

type Climate struct {
	DeviceSlug  string
	Name        string
	Modes       []string
	FanModes    []string
	MinTemp     float64
	MaxTemp     float64
	HasHumidity bool
	Device      *Device
}

// ClimateTopics is the set of topics a registered climate entity listens and
// publishes on. Humidity topics are empty when the entity has no humidifier.
type ClimateTopics struct {
	ModeState             string
	ModeCommand           string
	FanModeState          string
	FanModeCommand        string
	TemperatureState      string
	TemperatureCommand    string
	CurrentTemperature    string
	TargetHumidityState   string
	TargetHumidityCommand string
	CurrentHumidity       string
}

// AvailabilityTopic returns the topic availability is published on for a
// device. All of the device's entities share it.
func AvailabilityTopic(deviceSlug string) string {
	return fmt.Sprintf("%v/%v/availability", config.TopicPrefix, deviceSlug)
}

// StateTopic returns the topic an entity's state is published on.
func StateTopic(deviceSlug string, kind string, key string) string {
	return fmt.Sprintf("%v/%v/%v/%v", config.TopicPrefix, deviceSlug, kind, key)
}

// CommandTopic returns the topic an entity's commands arrive on.
func CommandTopic(deviceSlug string, kind string, key string) string {
	return StateTopic(deviceSlug, kind, key) + "/cmd"
}

// Slug normalizes a device name for use in topics and ids.
func Slug(name string) string {
	return strings.Replace(strings.ToLower(strings.TrimSpace(name)), " ", "_", -1)
}

// RegisterSensor publishes a sensor discovery payload and returns the state
// topic to publish readings to.
func (h *Client) RegisterSensor(sensor Sensor) (string, error) {
	uniqueId := fmt.Sprintf("turkov_%v_%v", sensor.DeviceSlug, sensor.Key)
	stateTopic := StateTopic(sensor.DeviceSlug, "sensor", sensor.Key)

	payload, _ := json.Marshal(sensorConfiguration{
		UniqueId:          uniqueId,
		ObjectId:          fmt.Sprintf("%v_%v", sensor.DeviceSlug, sensor.Key),
		Name:              sensor.Name,
		DeviceClass:       sensor.Class,
		StateClass:        sensor.StateClass,
		StateTopic:        stateTopic,
		UnitOfMeasurement: sensor.Unit,
		Icon:              sensor.Icon,
		AvailabilityTopic: AvailabilityTopic(sensor.DeviceSlug),
		Device:            sensor.Device.block(),
	})

	configTopic := fmt.Sprintf("%v/sensor/%v/config", config.HomeAssistantPrefix, uniqueId)
	if t := h.mqtt.Publish(configTopic, 0, true, payload); t.Wait() && t.Error() != nil {
		return "", t.Error()
	}

	return stateTopic, nil
}

// RegisterSwitch publishes a switch discovery payload and returns the state
// and command topics.
func (h *Client) RegisterSwitch(sw Switch) (string, string, error) {
	uniqueId := fmt.Sprintf("turkov_%v_%v", sw.DeviceSlug, sw.Key)
	stateTopic := StateTopic(sw.DeviceSlug, "switch", sw.Key)
	commandTopic := CommandTopic(sw.DeviceSlug, "switch", sw.Key)

	payload, _ := json.Marshal(switchConfiguration{
		UniqueId:          uniqueId,
		ObjectId:          fmt.Sprintf("%v_%v", sw.DeviceSlug, sw.Key),
		Name:              sw.Name,
		StateTopic:        stateTopic,
		CommandTopic:      commandTopic,
		Icon:              sw.Icon,
		AvailabilityTopic: AvailabilityTopic(sw.DeviceSlug),
		Device:            sw.Device.block(),
	})

	configTopic := fmt.Sprintf("%v/switch/%v/config", config.HomeAssistantPrefix, uniqueId)
	if t := h.mqtt.Publish(configTopic, 0, true, payload); t.Wait() && t.Error() != nil {
		return "", "", t.Error()
	}

	return stateTopic, commandTopic, nil
}

// RegisterClimate publishes a climate discovery payload and returns the
// topics the entity was registered with.
func (h *Client) RegisterClimate(climate Climate) (ClimateTopics, error) {
	uniqueId := fmt.Sprintf("turkov_%v_climate", climate.DeviceSlug)

	topics := ClimateTopics{
		ModeState:          StateTopic(climate.DeviceSlug, "climate", "mode"),
		ModeCommand:        CommandTopic(climate.DeviceSlug, "climate", "mode"),
		FanModeState:       StateTopic(climate.DeviceSlug, "climate", "fan_mode"),
		FanModeCommand:     CommandTopic(climate.DeviceSlug, "climate", "fan_mode"),
		TemperatureState:   StateTopic(climate.DeviceSlug, "climate", "temperature"),
		TemperatureCommand: CommandTopic(climate.DeviceSlug, "climate", "temperature"),
		CurrentTemperature: StateTopic(climate.DeviceSlug, "climate", "current_temperature"),
	}

	payload := climateConfiguration{
		UniqueId: uniqueId,
		// Object id equals the device slug so the entity materialises as
		// climate.<device_name>.
		ObjectId:                climate.DeviceSlug,
		Name:                    climate.Name,
		Modes:                   climate.Modes,
		ModeStateTopic:          topics.ModeState,
		ModeCommandTopic:        topics.ModeCommand,
		FanModes:                climate.FanModes,
		FanModeStateTopic:       topics.FanModeState,
		FanModeCommandTopic:     topics.FanModeCommand,
		TemperatureStateTopic:   topics.TemperatureState,
		TemperatureCommandTopic: topics.TemperatureCommand,
		CurrentTemperatureTopic: topics.CurrentTemperature,
		MinTemp:                 climate.MinTemp,
		MaxTemp:                 climate.MaxTemp,
		TempStep:                1,
		TemperatureUnit:         "C",
		AvailabilityTopic:       AvailabilityTopic(climate.DeviceSlug),
		Device:                  climate.Device.block(),
	}

	if climate.HasHumidity {
		topics.TargetHumidityState = StateTopic(climate.DeviceSlug, "climate", "target_humidity")
		topics.TargetHumidityCommand = CommandTopic(climate.DeviceSlug, "climate", "target_humidity")
		topics.CurrentHumidity = StateTopic(climate.DeviceSlug, "climate", "current_humidity")

		payload.TargetHumidityStateTopic = topics.TargetHumidityState
		payload.TargetHumidityCommandTopic = topics.TargetHumidityCommand
		payload.CurrentHumidityTopic = topics.CurrentHumidity
		payload.MinHumidity = 40
		payload.MaxHumidity = 100
	}

	marshaled, _ := json.Marshal(payload)

	configTopic := fmt.Sprintf("%v/climate/%v/config", config.HomeAssistantPrefix, uniqueId)
	if t := h.mqtt.Publish(configTopic, 0, true, marshaled); t.Wait() && t.Error() != nil {
		return ClimateTopics{}, t.Error()
	}

	return topics, nil
}

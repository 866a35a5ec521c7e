package bridge

import (
	"context"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/victorjacobs/go-turkov/homeassistant"
	"github.com/victorjacobs/go-turkov/logging"
	"github.com/victorjacobs/go-turkov/turkov"
)

const commandTimeout = 30 * time.Second

type registeredSensor struct {
	definition sensorDefinition
	stateTopic string
}

type registeredSwitch struct {
	definition switchDefinition
	stateTopic string
}

// Bridge connects one Turkov device to Home Assistant: it registers the
// device's entities over MQTT discovery, relays commands and publishes
// polled state.
type Bridge struct {
	device *turkov.Device
	slug   string
	log    zerolog.Logger

	availabilityTopic string

	// Commands can arrive as soon as the MQTT connection is up, so anything
	// written during discovery registration is read under the mutex.
	mutex         sync.Mutex
	registered    bool
	climateTopics homeassistant.ClimateTopics
	sensors       []registeredSensor
	switches      []registeredSwitch
	lastPublished map[string]string
	lastPoll      time.Time
	online        bool
}

func New(device *turkov.Device) *Bridge {
	slug := homeassistant.Slug(device.DisplayName())

	return &Bridge{
		device:            device,
		slug:              slug,
		log:               logging.WithComponent("bridge").With().Str("device", slug).Logger(),
		availabilityTopic: homeassistant.AvailabilityTopic(slug),
		lastPublished:     make(map[string]string),
	}
}

func (b *Bridge) Device() *turkov.Device {
	return b.device
}

func (b *Bridge) Slug() string {
	return b.slug
}

// Online reports whether the last poll succeeded.
func (b *Bridge) Online() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.online
}

// LastPoll returns the time of the last successful poll.
func (b *Bridge) LastPoll() time.Time {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.lastPoll
}

// RegisterEntities announces the device's climate entity plus whatever
// sensors and switches the device reports. Call after the first state update
// so presence checks see real data.
func (b *Bridge) RegisterEntities(mqttClient mqtt.Client) error {
	homeAssistantClient := homeassistant.NewClient(mqttClient)

	info := &homeassistant.Device{
		Identifier:       b.device.ID,
		Name:             b.device.DisplayName(),
		Manufacturer:     "Turkov",
		Model:            b.device.Type,
		FirmwareVersion:  b.device.FirmwareVersion,
		ConfigurationURL: turkov.BaseURL,
	}

	state := b.device.Snapshot()

	climateTopics, err := homeAssistantClient.RegisterClimate(homeassistant.Climate{
		DeviceSlug:  b.slug,
		Name:        b.device.DisplayName(),
		Modes:       availableHVACModes(b.device),
		FanModes:    availableFanModes(b.device),
		MinTemp:     15,
		MaxTemp:     50,
		HasHumidity: state.TargetHumidity != nil,
		Device:      info,
	})
	if err != nil {
		return err
	}

	var sensors []registeredSensor
	var switches []registeredSwitch

	for _, definition := range sensorDefinitions {
		if definition.get(state) == nil {
			continue
		}

		stateTopic, err := homeAssistantClient.RegisterSensor(homeassistant.Sensor{
			DeviceSlug: b.slug,
			Key:        definition.key,
			Name:       definition.name,
			Class:      definition.class,
			StateClass: definition.stateClass,
			Unit:       definition.unit,
			Icon:       definition.icon,
			Device:     info,
		})
		if err != nil {
			return err
		}

		b.log.Info().Str("sensor", definition.key).Msg("Registered sensor")
		sensors = append(sensors, registeredSensor{definition: definition, stateTopic: stateTopic})
	}

	for _, definition := range switchDefinitions {
		if definition.get(state) == nil {
			continue
		}

		stateTopic, _, err := homeAssistantClient.RegisterSwitch(homeassistant.Switch{
			DeviceSlug: b.slug,
			Key:        definition.key,
			Name:       definition.name,
			Icon:       definition.icon,
			Device:     info,
		})
		if err != nil {
			return err
		}

		b.log.Info().Str("switch", definition.key).Msg("Registered switch")
		switches = append(switches, registeredSwitch{definition: definition, stateTopic: stateTopic})
	}

	b.mutex.Lock()
	b.climateTopics = climateTopics
	b.sensors = sensors
	b.switches = switches
	b.registered = true
	b.mutex.Unlock()

	return nil
}

// SubscribeToCommands sets up the climate command subscriptions. Invoked from
// the MQTT ConnectHandler so subscriptions survive reconnects.
func (b *Bridge) SubscribeToCommands(mqttClient mqtt.Client) {
	b.subscribe(mqttClient, homeassistant.CommandTopic(b.slug, "climate", "mode"), "climate", func(ctx context.Context, payload string) error {
		return applyHVACMode(ctx, b.device, payload)
	})

	b.subscribe(mqttClient, homeassistant.CommandTopic(b.slug, "climate", "fan_mode"), "climate", func(ctx context.Context, payload string) error {
		return applyFanMode(ctx, b.device, payload)
	})

	b.subscribe(mqttClient, homeassistant.CommandTopic(b.slug, "climate", "temperature"), "climate", func(ctx context.Context, payload string) error {
		target, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return err
		}

		if !b.device.IsOn() {
			if err := b.device.TurnOn(ctx); err != nil {
				return err
			}
		}
		// A setpoint only takes effect with the heater running.
		if b.device.HasHeater() && !b.device.IsHeaterOn() {
			if err := b.device.TurnOnHeater(ctx); err != nil {
				return err
			}
		}

		return b.device.SetTargetTemperature(ctx, int(target))
	})

	b.subscribe(mqttClient, homeassistant.CommandTopic(b.slug, "climate", "target_humidity"), "climate", func(ctx context.Context, payload string) error {
		target, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return err
		}

		if !b.device.IsOn() {
			if err := b.device.TurnOn(ctx); err != nil {
				return err
			}
		}

		return b.device.SetTargetHumidity(ctx, int(target))
	})

	// Switch command topics are static, so subscribe to all of them even
	// when the device ends up registering only a subset.
	for _, definition := range switchDefinitions {
		definition := definition
		b.subscribe(mqttClient, homeassistant.CommandTopic(b.slug, "switch", definition.key), definition.key, func(ctx context.Context, payload string) error {
			return definition.command(ctx, b.device, payload == "ON")
		})
	}
}

func (b *Bridge) subscribe(mqttClient mqtt.Client, topic string, entity string, handle func(ctx context.Context, payload string) error) {
	if t := mqttClient.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
		payload := string(msg.Payload())
		commandsTotal.WithLabelValues(b.slug, entity).Inc()

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if err := handle(ctx, payload); err != nil {
			commandErrorsTotal.WithLabelValues(b.slug, entity).Inc()
			b.log.Error().Str("topic", topic).Str("payload", payload).Err(err).Msg("Command failed")
			return
		}

		// Refresh immediately so Home Assistant sees the effect.
		b.PollState(ctx, client)
	}); t.Wait() && t.Error() != nil {
		b.log.Error().Str("topic", topic).Err(t.Error()).Msg("MQTT subscribe error")
	}
}

// PollState fetches the device state and publishes everything that changed.
func (b *Bridge) PollState(ctx context.Context, mqttClient mqtt.Client) {
	pollsTotal.WithLabelValues(b.slug).Inc()

	changed, err := b.device.UpdateState(ctx)
	if err != nil {
		pollErrorsTotal.WithLabelValues(b.slug).Inc()
		deviceOnline.WithLabelValues(b.slug).Set(0)
		b.setOnline(false)
		b.publish(mqttClient, b.availabilityTopic, "offline")
		b.log.Warn().Err(err).Msg("Failed to poll device state")
		return
	}

	deviceOnline.WithLabelValues(b.slug).Set(1)
	b.setOnline(true)
	b.publish(mqttClient, b.availabilityTopic, "online")

	if len(changed) > 0 {
		b.log.Debug().Strs("attributes", changed).Msg("State changed")
	}

	b.mutex.Lock()
	registered := b.registered
	climateTopics := b.climateTopics
	sensors := b.sensors
	switches := b.switches
	b.mutex.Unlock()

	// Entity topics only exist once discovery registration has finished.
	if !registered {
		return
	}

	state := b.device.Snapshot()

	b.publish(mqttClient, climateTopics.ModeState, currentHVACMode(b.device))
	b.publish(mqttClient, climateTopics.FanModeState, currentFanMode(b.device))

	if state.TargetTemperature != nil {
		b.publish(mqttClient, climateTopics.TemperatureState, formatFloat(*state.TargetTemperature))
	}
	if current := firstPresent(state.CurrentTemperature, state.IndoorTemperature); current != nil {
		b.publish(mqttClient, climateTopics.CurrentTemperature, formatFloat(*current))
	}
	if climateTopics.TargetHumidityState != "" {
		if state.TargetHumidity != nil {
			b.publish(mqttClient, climateTopics.TargetHumidityState, formatFloat(*state.TargetHumidity))
		}
		if current := firstPresent(state.CurrentHumidity, state.IndoorHumidity); current != nil {
			b.publish(mqttClient, climateTopics.CurrentHumidity, formatFloat(*current))
		}
	}

	for _, sensor := range sensors {
		if value := sensor.definition.get(state); value != nil {
			deviceReading.WithLabelValues(b.slug, sensor.definition.key).Set(*value)
			b.publish(mqttClient, sensor.stateTopic, formatFloat(*value))
		}
	}

	for _, sw := range switches {
		if value := sw.definition.get(state); value != nil {
			payload := "OFF"
			if *value {
				payload = "ON"
			}
			b.publish(mqttClient, sw.stateTopic, payload)
		}
	}
}

// publish sends a retained message, deduplicating repeat values per topic.
func (b *Bridge) publish(mqttClient mqtt.Client, topic string, value string) {
	b.mutex.Lock()
	if b.lastPublished[topic] == value {
		b.mutex.Unlock()
		return
	}
	b.mutex.Unlock()

	if t := mqttClient.Publish(topic, 0, true, value); t.Wait() && t.Error() != nil {
		publishErrorsTotal.WithLabelValues(b.slug).Inc()
		b.log.Warn().Str("topic", topic).Err(t.Error()).Msg("MQTT publishing failed")
		return
	}

	b.mutex.Lock()
	b.lastPublished[topic] = value
	b.mutex.Unlock()
}

func (b *Bridge) setOnline(online bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.online = online
	if online {
		b.lastPoll = time.Now()
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func firstPresent(values ...*float64) *float64 {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}

package homeassistant

// Discovery payloads follow the Home Assistant MQTT discovery schema. Only
// the fields this bridge uses are modeled.

type deviceBlock struct {
	Identifiers      []string `json:"identifiers"`
	Name             string   `json:"name"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
	Model            string   `json:"model,omitempty"`
	SwVersion        string   `json:"sw_version,omitempty"`
	ConfigurationURL string   `json:"configuration_url,omitempty"`
}

type sensorConfiguration struct {
	UniqueId          string       `json:"unique_id"`
	ObjectId          string       `json:"object_id"`
	Name              string       `json:"name"`
	DeviceClass       string       `json:"device_class,omitempty"`
	StateClass        string       `json:"state_class,omitempty"`
	StateTopic        string       `json:"state_topic"`
	UnitOfMeasurement string       `json:"unit_of_measurement,omitempty"`
	Icon              string       `json:"icon,omitempty"`
	AvailabilityTopic string       `json:"availability_topic,omitempty"`
	Device            *deviceBlock `json:"device,omitempty"`
}

type switchConfiguration struct {
	UniqueId          string       `json:"unique_id"`
	ObjectId          string       `json:"object_id"`
	Name              string       `json:"name"`
	StateTopic        string       `json:"state_topic"`
	CommandTopic      string       `json:"command_topic"`
	Icon              string       `json:"icon,omitempty"`
	AvailabilityTopic string       `json:"availability_topic,omitempty"`
	Device            *deviceBlock `json:"device,omitempty"`
}

type climateConfiguration struct {
	UniqueId                   string       `json:"unique_id"`
	ObjectId                   string       `json:"object_id"`
	Name                       string       `json:"name"`
	Modes                      []string     `json:"modes"`
	ModeStateTopic             string       `json:"mode_state_topic"`
	ModeCommandTopic           string       `json:"mode_command_topic"`
	FanModes                   []string     `json:"fan_modes"`
	FanModeStateTopic          string       `json:"fan_mode_state_topic"`
	FanModeCommandTopic        string       `json:"fan_mode_command_topic"`
	TemperatureStateTopic      string       `json:"temperature_state_topic"`
	TemperatureCommandTopic    string       `json:"temperature_command_topic"`
	CurrentTemperatureTopic    string       `json:"current_temperature_topic"`
	TargetHumidityStateTopic   string       `json:"target_humidity_state_topic,omitempty"`
	TargetHumidityCommandTopic string       `json:"target_humidity_command_topic,omitempty"`
	CurrentHumidityTopic       string       `json:"current_humidity_topic,omitempty"`
	MinTemp                    float64      `json:"min_temp,omitempty"`
	MaxTemp                    float64      `json:"max_temp,omitempty"`
	TempStep                   float64      `json:"temp_step,omitempty"`
	MinHumidity                int          `json:"min_humidity,omitempty"`
	MaxHumidity                int          `json:"max_humidity,omitempty"`
	TemperatureUnit            string       `json:"temperature_unit,omitempty"`
	AvailabilityTopic          string       `json:"availability_topic,omitempty"`
	Device                     *deviceBlock `json:"device,omitempty"`
}

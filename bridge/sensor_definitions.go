package bridge

import "github.com/victorjacobs/go-turkov/turkov"

type sensorDefinition struct {
	key        string
	name       string
	class      string
	stateClass string
	unit       string
	icon       string
	get        func(state turkov.State) *float64
}

// Auxiliary measurements not represented inside the climate entity. Only
// sensors the device actually reports get registered.
var sensorDefinitions = [...]sensorDefinition{
	{
		key:        "outdoor_temperature",
		name:       "Outdoor Temperature",
		class:      "temperature",
		stateClass: "measurement",
		unit:       "°C",
		get:        func(state turkov.State) *float64 { return state.OutdoorTemperature },
	},
	{
		key:        "indoor_temperature",
		name:       "Indoor Temperature",
		class:      "temperature",
		stateClass: "measurement",
		unit:       "°C",
		get:        func(state turkov.State) *float64 { return state.IndoorTemperature },
	},
	{
		key:        "indoor_humidity",
		name:       "Indoor Humidity",
		class:      "humidity",
		stateClass: "measurement",
		unit:       "%",
		get:        func(state turkov.State) *float64 { return state.IndoorHumidity },
	},
	{
		key:        "air_pressure",
		name:       "Air Pressure",
		class:      "pressure",
		stateClass: "measurement",
		unit:       "Pa",
		get:        func(state turkov.State) *float64 { return state.AirPressure },
	},
	{
		key:        "co2_level",
		name:       "CO2 Level",
		class:      "carbon_dioxide",
		stateClass: "measurement",
		unit:       "ppm",
		get:        func(state turkov.State) *float64 { return state.CO2Level },
	},
	{
		key:        "filter_life_percentage",
		name:       "Filter Used Percentage",
		stateClass: "measurement",
		unit:       "%",
		icon:       "mdi:air-filter",
		get:        func(state turkov.State) *float64 { return state.FilterLifePercentage },
	},
}

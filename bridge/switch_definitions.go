package bridge

import (
	"context"

	"github.com/victorjacobs/go-turkov/turkov"
)

type switchDefinition struct {
	key     string
	name    string
	icon    string
	get     func(state turkov.State) *bool
	command func(ctx context.Context, device *turkov.Device, on bool) error
}

var switchDefinitions = [...]switchDefinition{
	{
		key:  "first_relay",
		name: "First Relay",
		icon: "mdi:electric-switch",
		get:  func(state turkov.State) *bool { return state.FirstRelay },
		command: func(ctx context.Context, device *turkov.Device, on bool) error {
			return device.SetFirstRelay(ctx, on)
		},
	},
	{
		key:  "second_relay",
		name: "Second Relay",
		icon: "mdi:electric-switch",
		get:  func(state turkov.State) *bool { return state.SecondRelay },
		command: func(ctx context.Context, device *turkov.Device, on bool) error {
			return device.SetSecondRelay(ctx, on)
		},
	},
	{
		key:  "fireplace",
		name: "Fireplace",
		icon: "mdi:fireplace",
		get:  func(state turkov.State) *bool { return state.Fireplace },
		command: func(ctx context.Context, device *turkov.Device, on bool) error {
			return device.SetFireplace(ctx, on)
		},
	},
	{
		key:  "humidifier",
		name: "Humidifier",
		icon: "mdi:air-humidifier",
		get:  func(state turkov.State) *bool { return state.Humidifier },
		command: func(ctx context.Context, device *turkov.Device, on bool) error {
			return device.SetHumidifier(ctx, on)
		},
	},
}

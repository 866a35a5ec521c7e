package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turkov_polls_total",
		Help: "Number of state polls per device.",
	}, []string{"device"})

	pollErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turkov_poll_errors_total",
		Help: "Number of failed state polls per device.",
	}, []string{"device"})

	publishErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turkov_mqtt_publish_errors_total",
		Help: "Number of failed MQTT publishes per device.",
	}, []string{"device"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turkov_commands_total",
		Help: "Number of commands handled per device and entity.",
	}, []string{"device", "entity"})

	commandErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turkov_command_errors_total",
		Help: "Number of failed commands per device and entity.",
	}, []string{"device", "entity"})

	deviceOnline = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "turkov_device_online",
		Help: "Whether the last state poll for the device succeeded.",
	}, []string{"device"})

	deviceReading = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "turkov_device_reading",
		Help: "Last sensor readings reported by the device.",
	}, []string{"device", "reading"})
)

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/victorjacobs/go-turkov/bridge"
	"github.com/victorjacobs/go-turkov/config"
	"github.com/victorjacobs/go-turkov/logging"
	"github.com/victorjacobs/go-turkov/routes"
	"github.com/victorjacobs/go-turkov/turkov"
)

func main() {
	configPath := "turkov.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfiguration(configPath)
	if err != nil {
		logger := logging.WithComponent("main")
		logger.Fatal().Err(err).Msg("Error loading configuration")
	}

	logging.Configure(cfg.LogLevel)
	log := logging.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	devices := make(map[string]*turkov.Device)
	var session *turkov.Session

	if cfg.Cloud != nil {
		session = turkov.NewSession(turkov.BaseURL, cfg.Cloud.Email, cfg.Cloud.Password)
		if err := session.SignIn(ctx); err != nil {
			log.Fatal().Err(err).Msg("Cloud authentication failed")
		}
		if err := session.UpdateUserData(ctx); err != nil {
			log.Fatal().Err(err).Msg("Device discovery failed")
		}

		devices = session.Devices()

		// LAN address overrides: talk to these devices directly, cloud as
		// fallback.
		for id, host := range cfg.Hosts {
			device, ok := devices[id]
			if !ok {
				log.Warn().Str("device", id).Msg("Host configured for unknown device")
				continue
			}

			local, err := turkov.NewLocalClient(host.IpAddress, host.Port)
			if err != nil {
				log.Fatal().Str("device", id).Err(err).Msg("Invalid host configuration")
			}
			device.SetLocal(local)
		}
	} else {
		for id, host := range cfg.Hosts {
			local, err := turkov.NewLocalClient(host.IpAddress, host.Port)
			if err != nil {
				log.Fatal().Str("device", id).Err(err).Msg("Invalid host configuration")
			}
			devices[id] = turkov.NewLocalDevice(id, local)
		}
	}

	if len(devices) == 0 {
		log.Fatal().Msg("No devices found")
	}

	bridges := make(map[string]*bridge.Bridge, len(devices))
	for id, device := range devices {
		// First update before entity registration, so presence checks see
		// real attributes.
		if _, err := device.UpdateState(ctx); err != nil {
			log.Error().Str("device", id).Err(err).Msg("Initial state update failed")
		}

		bridges[id] = bridge.New(device)
		log.Info().Str("device", bridges[id].Slug()).Str("type", device.Type).Msg("Bridging device")
	}

	if session != nil {
		// Keep names and firmware versions fresh. Devices added to the
		// account later are only bridged on restart.
		go loopSafely(func() {
			time.Sleep(cfg.UserDataPollInterval())

			if err := session.UpdateUserData(ctx); err != nil {
				log.Warn().Err(err).Msg("User data refresh failed")
				return
			}
			for id := range session.Devices() {
				if _, ok := bridges[id]; !ok {
					log.Info().Str("device", id).Msg("New device on account, restart to bridge it")
				}
			}
		})
	}

	mqttOpts := cfg.Mqtt.ClientOptions()
	// Configure MQTT subscriptions in the ConnectHandler to make sure they
	// are set up after reconnect
	mqttOpts.SetOnConnectHandler(func(client mqtt.Client) {
		for _, b := range bridges {
			b.SubscribeToCommands(client)
		}
	})

	mqttClient := mqtt.NewClient(mqttOpts)
	if t := mqttClient.Connect(); t.Wait() && t.Error() != nil {
		log.Fatal().Err(t.Error()).Msg("MQTT connection error")
	}

	for _, b := range bridges {
		if err := b.RegisterEntities(mqttClient); err != nil {
			log.Fatal().Str("device", b.Slug()).Err(err).Msg("Entity registration failed")
		}

		b := b
		go loopSafely(func() {
			b.PollState(ctx, mqttClient)

			time.Sleep(cfg.StatePollInterval())
		})
	}

	router := httprouter.New()
	router.GET("/devices", routes.Devices(bridges))
	router.GET("/devices/:id/state", routes.DeviceState(bridges))
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.HTTPAddress, Handler: router}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", cfg.HTTPAddress).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Shutting down with error")
	}

	mqttClient.Disconnect(1000)
}

package main

import (
	"time"

	"github.com/victorjacobs/go-turkov/logging"
)

// loopSafely runs f in a loop and restarts it after a panic.
func loopSafely(f func()) {
	defer func() {
		if v := recover(); v != nil {
			logger := logging.WithComponent("main")
			logger.Error().Interface("panic", v).Msg("Panic, restarting loop")
			time.Sleep(time.Second)
			go loopSafely(f)
		}
	}()

	for {
		f()
	}
}

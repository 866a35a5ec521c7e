package logging

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global logger exactly once. An empty level
// defaults to info.
func Configure(level string) {
	once.Do(func() {
		parsed := zerolog.InfoLevel
		if level != "" {
			if l, err := zerolog.ParseLevel(level); err == nil {
				parsed = l
			}
		}
		zerolog.SetGlobalLevel(parsed)
		zerolog.TimeFieldFormat = time.RFC3339

		base = zerolog.New(os.Stdout).With().
			Timestamp().
			Str("service", "go-turkov").
			Logger()
	})
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	Configure("")
	return base.With().Str("component", component).Logger()
}

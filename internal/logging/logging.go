package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global zerolog logger. Verbose runs use a human
// console writer on stderr; otherwise JSON at warn level, so degraded oracle
// calls stay visible without drowning batch progress output.
func Init(verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if verbose {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}).Level(zerolog.DebugLevel)
	} else {
		log.Logger = zerolog.New(os.Stderr).
			With().
			Timestamp().
			Logger().
			Level(zerolog.WarnLevel)
	}
}

// Component returns a logger tagged with a component name
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

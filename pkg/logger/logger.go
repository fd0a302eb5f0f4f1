package logx

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zenese/server/internal/core"
)

// Options controls how the global logger is initialised.
type Options struct {
	Environment core.Environment
}

var defaultOptions = &Options{
	Environment: core.Development,
}

func pick(opts ...Options) *Options {
	if len(opts) == 0 {
		return defaultOptions
	}
	return &opts[0]
}

// Init configures the process-wide zerolog logger. Production keeps the JSON
// writer at Info level; everything else gets a console writer at Debug with
// caller annotations for local runs.
func Init(opts ...Options) {
	if pick(opts...).Environment.IsProduction() {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}

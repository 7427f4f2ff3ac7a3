package global

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// global Log
var Logger log.Logger

func init() {
	w := log.NewSyncWriter(os.Stderr)
	Logger = log.NewLogfmtLogger(w)
}

// SetLogLevel filters the global logger to the given level ("debug", "info",
// "warn", "error"). Unknown values leave everything enabled.
func SetLogLevel(lvl string) {
	w := log.NewSyncWriter(os.Stderr)
	base := log.NewLogfmtLogger(w)
	switch lvl {
	case "debug":
		Logger = level.NewFilter(base, level.AllowDebug())
	case "info":
		Logger = level.NewFilter(base, level.AllowInfo())
	case "warn":
		Logger = level.NewFilter(base, level.AllowWarn())
	case "error":
		Logger = level.NewFilter(base, level.AllowError())
	default:
		Logger = base
	}
}

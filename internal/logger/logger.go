package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide logger. It is a no-op until Initialize is called,
// so packages can log safely from tests without wiring.
var Log = zap.NewNop()

// Initialize builds a production logger with the given level and installs it
// as the package-wide Log.
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = zl
	return nil
}

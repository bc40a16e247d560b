package logging

import (
	"log/slog"

	"photovault/internal/config"
)

// NewFromConfig creates a logger using application config defaults. Archive
// runs log to the file under LogDir only; nothing is written to stdout so the
// run itself stays silent.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stderr"}})
	}
	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{cfg.LogFilePath()},
	})
}

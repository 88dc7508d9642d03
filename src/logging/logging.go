package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Setup configures the package level logger used across the server.
func Setup(level string) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the standard logrus logger. Production logs JSON,
// everything else logs text with full timestamps.
func SetupLogging(c *Config) {
	if c.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("[CONFIG] unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

package util

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the package-level logger instance every component builds its
// contextual entries from.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLogLevel sets the logging level.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination.
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat enables JSON log format.
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithField returns a logger entry with a single field.
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields returns a logger entry with multiple fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithDriver returns a logger entry tagged with the hardware driver name
// (e.g. "arista"); hwdriverctl's sync command hands it to the Sync Service.
func WithDriver(name string) *logrus.Entry {
	return Logger.WithField("driver", name)
}

// WithNetwork returns a logger entry tagged with a tenant network id.
func WithNetwork(networkID string) *logrus.Entry {
	return Logger.WithField("network", networkID)
}

// WithHost returns a logger entry tagged with a compute host name.
func WithHost(host string) *logrus.Entry {
	return Logger.WithField("host", host)
}

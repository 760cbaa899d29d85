package apikit

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the library-wide log sink. Library code never prints directly;
// everything operational goes through here so consumers can redirect or
// silence it.
var Logger = logrus.New()

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// InitLogger configures the shared Logger for the named application. The
// level comes from LOG_LEVEL (default info). LOG_FORMAT=json switches to the
// JSON formatter, which CloudWatch indexes into structured fields; anything
// else keeps the plain text formatter for local runs.
func InitLogger(appName string) {
	Logger.SetOutput(os.Stdout)

	logLevelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", logLevelStr)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	Logger.AddHook(&appNameHook{appName})
}

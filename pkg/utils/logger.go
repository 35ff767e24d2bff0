package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Log level names accepted by InitLogger.
const (
	LogLevelVerbose = "VERBOSE"
	LogLevelNormal  = "INFO"
	LogLevelQuiet   = "WARN"
)

var (
	// Log is the global logger instance.
	Log *logrus.Logger

	// When progress bars own the terminal, log lines go to a file instead
	// so they do not tear the bars apart.
	terminalProgressEnabled bool
)

// InitLogger sets up the global logger. An empty logFile logs to stdout
// only, unless progress bars are active, in which case output is redirected
// to a file under the system temp dir.
func InitLogger(level string, logFile string) error {
	Log = logrus.New()

	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if terminalProgressEnabled {
		if logFile == "" {
			logFile = filepath.Join(os.TempDir(), "submaker.log")
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			Log.SetOutput(file)
		}
	} else if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}

		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}

		Log.SetOutput(io.MultiWriter(os.Stdout, file))
	} else {
		Log.SetOutput(os.Stdout)
	}

	switch level {
	case LogLevelVerbose, "DEBUG", "debug":
		Log.SetLevel(logrus.DebugLevel)
	case LogLevelQuiet, "warn", "warning":
		Log.SetLevel(logrus.WarnLevel)
	case "ERROR", "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		Log.SetLevel(logrus.InfoLevel)
	}

	return nil
}

// EnableTerminalProgress redirects log output away from the terminal while
// progress bars are drawing.
func EnableTerminalProgress() {
	terminalProgressEnabled = true
	currentLevel := Log.GetLevel().String()
	InitLogger(currentLevel, "")
}

// DisableTerminalProgress restores log output to stdout.
func DisableTerminalProgress() {
	terminalProgressEnabled = false
	if Log != nil {
		Log.SetOutput(os.Stdout)
	}
}

func Debug(format string, args ...interface{}) {
	if Log != nil {
		Log.Debugf(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	if Log != nil {
		Log.Infof(format, args...)
	}
}

func Warn(format string, args ...interface{}) {
	if Log != nil {
		Log.Warnf(format, args...)
	}
}

func Error(format string, args ...interface{}) {
	if Log != nil {
		Log.Errorf(format, args...)
	}
}

func Fatal(format string, args ...interface{}) {
	if Log != nil {
		Log.Fatalf(format, args...)
	}
}

// WithField creates a log entry carrying a single structured field.
func WithField(key string, value interface{}) *logrus.Entry {
	if Log != nil {
		return Log.WithField(key, value)
	}
	return nil
}

// WithFields creates a log entry carrying multiple structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	if Log != nil {
		return Log.WithFields(fields)
	}
	return nil
}

// Package log provides structured logging with filesystem-based persistence.
//
// Logging is silent until Setup enables it through the logs.write option, so
// library code may log freely without touching the terminal the reader draws on.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/readalong-cli/readalong/filesystem"
	"github.com/readalong-cli/readalong/key"
	"github.com/readalong-cli/readalong/where"
	"github.com/samber/lo"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Fields is an alias of logrus.Fields so callers do not import logrus directly.
type Fields = logrus.Fields

var enabled bool

// Setup initializes file handles, formatting, and severity levels based on global configuration.
// If logging is disabled, all subsequent log emissions are discarded.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		logrus.SetOutput(io.Discard)
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	if exists := lo.Must(filesystem.API().Exists(path)); !exists {
		lo.Must(filesystem.API().Create(path))
	}

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// Entry is a logger bound to a set of structured fields.
type Entry struct {
	fields Fields
}

// With returns an Entry carrying the given fields on every emission.
func With(fields Fields) Entry {
	return Entry{fields: fields}
}

func (e Entry) Debugf(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Debugf(format, args...)
	}
}

func (e Entry) Infof(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Infof(format, args...)
	}
}

func (e Entry) Warnf(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Warnf(format, args...)
	}
}

func (e Entry) Errorf(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Errorf(format, args...)
	}
}

// Severity-specific emissions proxy to the configured backend when logging is enabled.

func Error(args ...interface{}) {
	if enabled {
		logrus.Error(args...)
	}
}
func Errorf(format string, args ...interface{}) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}
func Warn(args ...interface{}) {
	if enabled {
		logrus.Warn(args...)
	}
}
func Warnf(format string, args ...interface{}) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}
func Info(args ...interface{}) {
	if enabled {
		logrus.Info(args...)
	}
}
func Infof(format string, args ...interface{}) {
	if enabled {
		logrus.Infof(format, args...)
	}
}
func Debugf(format string, args ...interface{}) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
func Tracef(format string, args ...interface{}) {
	if enabled {
		logrus.Tracef(format, args...)
	}
}

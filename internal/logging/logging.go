package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05.000 Z07:00"

type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Time = entry.Time.UTC()
	return f.Formatter.Format(entry)
}

// Setup configures the standard logrus logger. format is "text" or "json";
// an empty level means info.
func Setup(level, format string) error {
	return configure(logrus.StandardLogger(), os.Stderr, level, format)
}

// New returns a standalone logger writing to w, for tests and embedding.
func New(w io.Writer, level, format string) (*logrus.Logger, error) {
	l := logrus.New()
	if err := configure(l, w, level, format); err != nil {
		return nil, err
	}
	return l, nil
}

func configure(l *logrus.Logger, w io.Writer, level, format string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)

	var lineFormatter logrus.Formatter
	if format == "json" {
		lineFormatter = &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		}
	} else {
		lineFormatter = &logrus.TextFormatter{
			TimestampFormat:  timestampFormat,
			FullTimestamp:    true,
			QuoteEmptyFields: true,
		}
	}
	l.SetFormatter(utcFormatter{lineFormatter})
	l.SetOutput(w)
	return nil
}

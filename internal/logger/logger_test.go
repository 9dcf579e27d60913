package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerDefaultsInvalidLevel(t *testing.T) {
	log := NewLogger("shouting", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerFormatterByEnvironment(t *testing.T) {
	prod := NewLogger("info", "production")
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)

	dev := NewLogger("info", "development")
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)
}

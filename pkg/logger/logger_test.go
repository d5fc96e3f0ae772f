package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"WARN":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetupSelectsFormatter(t *testing.T) {
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	Setup("debug", "text")
	assert.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	Setup("info", "json")
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

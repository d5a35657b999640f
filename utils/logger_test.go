package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithLevel("warn", &buf)

	l.Info("[test] hidden %d", 1)
	l.Warn("[test] shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[test] shown 2")
	assert.Equal(t, "warning", l.Level())
}

func TestLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithLevel("chatty", &buf)

	l.Debug("[test] debug")
	l.Info("[test] info")

	assert.NotContains(t, buf.String(), "[test] debug")
	assert.Contains(t, buf.String(), "[test] info")
}

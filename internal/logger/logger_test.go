package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(WARN, &buf)

	l.Info("hidden")
	l.Warn("shown", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] logger_test.go:")
	assert.Contains(t, out, "shown 3")
}

func TestComplexArgsRenderedAsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(DEBUG, &buf)

	l.Debug("payload", map[string]int{"goals": 2}, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "[Object of type map[string]int]")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, `"goals": 2`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("Debug"))
	assert.Equal(t, WARN, ParseLevel(" warning "))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestDiscardIsSilent(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() { l.Error("nothing to see") })
}

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", "json", &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log.Info("dropped")
	log.WithField("patch", 3).Warn("balance residual")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "balance residual", entry["msg"])
	assert.Equal(t, float64(3), entry["patch"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "text", &buf)
	require.NoError(t, err)

	log.WithField("stage", "snowpack").Debug("branch")
	assert.Contains(t, buf.String(), "stage=snowpack")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewErrors(t *testing.T) {
	_, err := New("loud", "text", nil)
	assert.Error(t, err)

	_, err = New("info", "xml", nil)
	assert.ErrorContains(t, err, "unknown format")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerFormatsSortedFields(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	logger := &log.Logger{Handler: h, Level: log.InfoLevel}
	logger.WithFields(log.Fields{"url": "https://a/", "bucket": "miss"}).Info("probe")
	logger.Debug("hidden")

	assert.Equal(t, "2026-01-02 03:04:05 I probe bucket=miss url=https://a/\n", buf.String())
}

func TestInitLevels(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Init(&buf, "warn"))
	log.Info("dropped")
	log.Warn("kept")
	assert.Contains(t, buf.String(), " W kept")
	assert.NotContains(t, buf.String(), "dropped")

	t.Setenv("PAGEINDEX_LOG", "debug")
	require.NoError(t, Init(&buf, ""))
	log.Debug("now visible")
	assert.Contains(t, buf.String(), " D now visible")

	assert.Error(t, Init(&buf, "chatty"))
}

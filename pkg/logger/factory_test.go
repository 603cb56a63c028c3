package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sigtoken/pkg/logger"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

type traceKey struct{}

func traceExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := ctx.Value(traceKey{}).(string); ok {
		return logger.RequestID(id), true
	}
	return slog.Attr{}, false
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default with provider attributes", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))

		log.Warn("secret reload failed",
			logger.Component("secret"),
			logger.Provider("file"),
			logger.Path("/run/secrets/token"),
			logger.Duration(1500*time.Millisecond),
			logger.Error(errors.New("permission denied")),
		)

		entry := decodeEntry(t, buf)
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "secret", entry["component"])
		assert.Equal(t, "file", entry["provider"])
		assert.Equal(t, "/run/secrets/token", entry["path"])
		assert.InDelta(t, float64(1500*time.Millisecond), entry["duration"], 0)
		assert.Equal(t, "permission denied", entry["error"])
	})

	t.Run("text formatter keeps static attributes", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithTextFormatter(),
			logger.WithAttr(slog.String("service", "sigtoken")),
		)

		log.Info("request", logger.Status(401))

		out := buf.String()
		assert.Contains(t, out, "service=sigtoken")
		assert.Contains(t, out, "status=401")
	})

	t.Run("last format option wins", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithTextFormatter(),
			logger.WithJSONFormatter(),
		)

		log.Info("token issued")
		assert.Equal(t, "token issued", decodeEntry(t, buf)["msg"])
	})

	t.Run("context extractor adds request id", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithOutput(buf),
			logger.WithContextExtractors(traceExtractor),
		)

		ctx := context.WithValue(context.Background(), traceKey{}, "req-7")
		log.InfoContext(ctx, "token verified")
		assert.Equal(t, "req-7", decodeEntry(t, buf)["request_id"])

		buf.Reset()
		log.InfoContext(context.Background(), "no request")
		assert.NotContains(t, decodeEntry(t, buf), "request_id")
	})

	t.Run("empty attributes are dropped", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))

		log.Info("clean", logger.Error(nil), logger.RequestID(""))

		entry := decodeEntry(t, buf)
		assert.NotContains(t, entry, "error")
		assert.NotContains(t, entry, "request_id")
	})
}

func TestSetAsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	buf := &bytes.Buffer{}
	logger.SetAsDefault(logger.New(logger.WithOutput(buf), logger.WithProduction("sigtoken")))
	slog.Info("via default")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "via default", entry["msg"])
	assert.Equal(t, "sigtoken", entry["service"])
}

func TestWithFormatPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}

package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmhttp "github.com/bkyoung/diffscope/internal/adapter/llm/http"
	"github.com/bkyoung/diffscope/internal/adapter/observability"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLogWarningHuman(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewRunLogger(llmhttp.LogFormatHuman)

	logger.LogWarning(context.Background(), "failed to save run", map[string]interface{}{
		"runID": "run-123",
		"error": "database locked",
	})

	out := buf.String()
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "failed to save run")
	assert.Contains(t, out, "error=database locked")
	assert.Contains(t, out, "runID=run-123")
}

func TestLogInfoHuman(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewRunLogger(llmhttp.LogFormatHuman)

	logger.LogInfo(context.Background(), "run complete", map[string]interface{}{
		"skill":    "security-review",
		"findings": 3,
	})

	out := buf.String()
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "run complete")
	assert.Contains(t, out, "findings=3 skill=security-review", "fields are sorted by key")
}

func TestLogInfoJSON(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewRunLogger(llmhttp.LogFormatJSON)

	logger.LogInfo(context.Background(), "run complete", map[string]interface{}{
		"skill": "security-review",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "run complete", entry["message"])
	assert.Equal(t, "security-review", entry["skill"])
}

func TestLogNoFields(t *testing.T) {
	buf := captureLog(t)
	logger := observability.NewRunLogger(llmhttp.LogFormatHuman)

	logger.LogInfo(context.Background(), "starting", nil)
	assert.Equal(t, "[INFO] starting\n", buf.String())
}

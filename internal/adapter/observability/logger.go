package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	llmhttp "github.com/bkyoung/diffscope/internal/adapter/llm/http"
	"github.com/bkyoung/diffscope/internal/usecase/skill"
)

// RunLogger implements skill.Logger over the standard logger, matching
// the format conventions of the LLM call logger so both streams read
// the same in combined output.
type RunLogger struct {
	format llmhttp.LogFormat
}

// NewRunLogger creates a run logger with the given output format.
func NewRunLogger(format llmhttp.LogFormat) *RunLogger {
	return &RunLogger{format: format}
}

// LogInfo logs an informational message with structured fields.
func (l *RunLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.emit("INFO", "info", message, fields)
}

// LogWarning logs a warning message with structured fields.
func (l *RunLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.emit("WARN", "warning", message, fields)
}

func (l *RunLogger) emit(humanLevel, jsonLevel, message string, fields map[string]interface{}) {
	if l.format == llmhttp.LogFormatJSON {
		entry := map[string]interface{}{
			"level":   jsonLevel,
			"message": message,
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf(`{"level":"%s","message":%q}`, jsonLevel, message)
			return
		}
		log.Printf("%s", data)
		return
	}

	log.Printf("[%s] %s%s", humanLevel, message, formatFields(fields))
}

// formatFields renders fields as " k=v k=v" in key order so output is
// stable across runs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}

var _ skill.Logger = (*RunLogger)(nil)

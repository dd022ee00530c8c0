package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffscope/internal/config"
)

func TestRetryConfigFromSettings(t *testing.T) {
	cfg := retryConfig(config.HTTPConfig{
		MaxRetries:        3,
		InitialBackoff:    "1s",
		MaxBackoff:        "10s",
		BackoffMultiplier: 1.5,
	})

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialBackoff)
	assert.Equal(t, 10*time.Second, cfg.MaxBackoff)
	assert.Equal(t, 1.5, cfg.Multiplier)
}

func TestRetryConfigFallsBackOnBadValues(t *testing.T) {
	cfg := retryConfig(config.HTTPConfig{InitialBackoff: "not-a-duration"})
	assert.Equal(t, 2*time.Second, cfg.InitialBackoff, "unparseable values keep defaults")
	assert.Equal(t, 5, cfg.MaxRetries)
}

func TestOpenStoreCreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/dir/history.db"

	st := openStore(path)
	require.NotNil(t, st)
	defer st.Close()
}

func TestDefaultConfigPaths(t *testing.T) {
	paths := defaultConfigPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
}

// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-reader/internal/platform/config"
	"github.com/taibuivan/yomira-reader/internal/reader"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://reader@localhost/yomira")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/etc/yomira/jwt.pub")
}

/*
TestLoad_Defaults fills the reader settings from their defaults.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 10*time.Minute, cfg.PageCacheTTL)
	assert.Equal(t, uint(3), cfg.FetchAttempts)
	assert.Equal(t, 200*time.Millisecond, cfg.FetchRetryDelay)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.True(t, cfg.IsDevelopment())

	options := cfg.ReaderOptions()
	assert.Equal(t, reader.DefaultLoadThreshold, options.LoadThreshold)
	assert.Equal(t, reader.DefaultPageExtent, options.PageExtent)
	assert.Equal(t, 1, options.PrefetchDepth)
	assert.Equal(t, reader.ModeVertical, options.Mode)
	assert.Equal(t, 64, options.EventBuffer)
}

/*
TestLoad_Overrides reads reader tuning from the environment.
*/
func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("READER_LOAD_THRESHOLD", "800")
	t.Setenv("READER_PREFETCH_DEPTH", "2")
	t.Setenv("READER_MODE", "rightToLeft")

	cfg, err := config.Load()
	require.NoError(t, err)

	options := cfg.ReaderOptions()
	assert.Equal(t, 800.0, options.LoadThreshold)
	assert.Equal(t, 2, options.PrefetchDepth)
	assert.Equal(t, reader.ModeRightToLeft, options.Mode)
}

/*
TestLoad_Invalid rejects missing and malformed settings.
*/
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{"missing_database", func(t *testing.T) {
			setRequired(t)
			t.Setenv("DATABASE_URL", "")
		}},
		{"bad_mode", func(t *testing.T) {
			setRequired(t)
			t.Setenv("READER_MODE", "diagonal")
		}},
		{"zero_attempts", func(t *testing.T) {
			setRequired(t)
			t.Setenv("FETCH_ATTEMPTS", "0")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[server]
host = "127.0.0.1"
port = 8080
debug_mode = true

[storage]
sqlite_file = "test.sqlite"

[ranking]
mode = "PROPORTIONAL"

[ranking.proportional]
k_base = 16
bonus_factor = 1.5
saturation_margin = 12

[scheduler]
enabled = false
interval = "15m"
max_session_age = "6h"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNew(t *testing.T) {
	cfg, err := New(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "test.sqlite", cfg.Storage.SqliteFile)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.MaxSessionAge)
	assert.Equal(t, "info", cfg.Log.Level)

	s, err := cfg.Ranking.Settings()
	require.NoError(t, err)
	assert.Equal(t, domain.RankingProportional, s.Mode)
	assert.Equal(t, 16.0, s.Proportional.KBase)
	assert.Equal(t, 12, s.Proportional.SaturationMargin)
	// untouched section keeps defaults
	assert.Equal(t, 7, s.Classic.MarginThreshold)
}

func TestNewDefaults(t *testing.T) {
	cfg, err := New("")
	require.NoError(t, err)
	s, err := cfg.Ranking.Settings()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRankingSettings(), s)
}

func TestNewEnvOverride(t *testing.T) {
	t.Setenv("DOUBLES_PORT", "9999")
	t.Setenv("DOUBLES_SQLITE_FILE", "env.sqlite")
	cfg, err := New("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "env.sqlite", cfg.Storage.SqliteFile)

	t.Setenv("DOUBLES_PORT", "abc")
	_, err = New("")
	assert.Error(t, err)
}

func TestNewInvalidRanking(t *testing.T) {
	_, err := New(writeConfig(t, "[ranking]\nmode = \"GLICKO\"\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)

	_, err = New(writeConfig(t, "[ranking.classic]\nk_base = -1\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

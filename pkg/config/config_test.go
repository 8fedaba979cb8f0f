package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.ViewPeriod())
	assert.Equal(t, time.Second, cfg.ClockPeriod())
	assert.Equal(t, time.Hour, cfg.ArtifactTTL())
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opsboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen: ":9000"
  db_path: "/tmp/x.db"
refresh:
  view_period_ms: 500
fixtures:
  seed: 7
  symbols: [BTCUSDT]
  location: UTC
alerts:
  lark_webhook: "http://example.invalid/hook"
`), 0o644))
	t.Setenv("OPSBOARD_LISTEN", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Listen)
	assert.Equal(t, "/tmp/x.db", cfg.Server.DBPath)
	assert.Equal(t, 500*time.Millisecond, cfg.ViewPeriod())
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, time.Second, cfg.ClockPeriod())
	assert.Equal(t, int64(7), cfg.Fixtures.Seed)
	assert.Equal(t, []string{"BTCUSDT"}, cfg.Fixtures.Symbols)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
	assert.Equal(t, "http://example.invalid/hook", cfg.Alerts.LarkWebhook)
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "opsboard.toml")
	require.NoError(t, os.WriteFile(bad, []byte("x=1"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	loc := filepath.Join(dir, "loc.yaml")
	require.NoError(t, os.WriteFile(loc, []byte("fixtures:\n  location: Mars/Olympus\n"), 0o644))
	_, err = Load(loc)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

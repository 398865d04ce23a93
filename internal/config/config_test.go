package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 30*time.Second, cfg.Room.HostGrace)
	assert.Equal(t, 750*time.Millisecond, cfg.Room.ChatCooldown)
	assert.Equal(t, 15, cfg.Room.LatencyDeltaMs)
	assert.NotEmpty(t, cfg.ICEServers)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := "port: 9000\nroom:\n  host_grace: 10s\n  member_grace: 5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644))
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("PLAYROOM_ROOM_MEMBER_GRACE", "7s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Room.HostGrace)
	assert.Equal(t, 7*time.Second, cfg.Room.MemberGrace)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.InDelta(t, 4.2, c.Physics.Friction, 1e-9)
	require.Equal(t, 100*time.Millisecond, c.Physics.VelocityWindow)
	require.Equal(t, 16*time.Millisecond, c.Demo.FrameInterval)
	require.Equal(t, 16, c.Demo.CellPx)
	require.NotEmpty(t, c.Database.Path)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[physics]
friction = 3.5
velocity_window = "80ms"

[demo]
header_lines = 4
`), 0o600))
	t.Setenv("STICKYSCROLL_CONFIG", path)
	t.Setenv("STICKYSCROLL_DEMO_ITEMS", "42")

	c, err := Load()
	require.NoError(t, err)
	require.InDelta(t, 3.5, c.Physics.Friction, 1e-9)
	require.Equal(t, 80*time.Millisecond, c.Physics.VelocityWindow)
	require.Equal(t, 4, c.Demo.HeaderLines)
	require.Equal(t, 42, c.Demo.Items)
	require.InDelta(t, 8000, c.Physics.MaxFlingVelocity, 1e-9)
}

func TestValidateRestoresDefaults(t *testing.T) {
	c := Config{}
	c.Physics.Friction = -1
	c.Physics.MinFlingVelocity = 100
	c.Physics.MaxFlingVelocity = 10
	c.Demo.HeaderLines = -3
	c.Validate()

	d := Default()
	require.Equal(t, d.Physics.Friction, c.Physics.Friction)
	require.Equal(t, 100.0, c.Physics.MinFlingVelocity)
	require.Equal(t, d.Physics.MaxFlingVelocity, c.Physics.MaxFlingVelocity)
	require.Equal(t, d.Demo.HeaderLines, c.Demo.HeaderLines)
	require.Equal(t, d.Demo.FrameInterval, c.Demo.FrameInterval)
	require.Equal(t, d.Database.Path, c.Database.Path)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	t.Setenv("STICKYSCROLL_CONFIG", path)

	c := Default()
	c.Physics.Friction = 5
	c.Demo.Items = 7
	require.NoError(t, Save(c))

	got, err := Load()
	require.NoError(t, err)
	require.InDelta(t, 5, got.Physics.Friction, 1e-9)
	require.Equal(t, 7, got.Demo.Items)
	require.Equal(t, c.Physics.VelocityWindow, got.Physics.VelocityWindow)
}

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	htm "github.com/htm-community/cla"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.Params, cfg.Params)
	assert.Equal(t, defaults.Encoder, cfg.Encoder)
	assert.Equal(t, defaults.Sequence, cfg.Sequence)
	assert.Equal(t, defaults.Steps, cfg.Steps)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	doc := `
region:
  cells_per_column: 2
temporal_pooler:
  new_synapse_count: 5
steps: 12
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	t.Setenv("HTMSIM_REGION_X_LEN", "4")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Region.CellsPerColumn)
	assert.Equal(t, 4, cfg.Region.XLen)
	assert.Equal(t, 8, cfg.Region.YLen)
	assert.Equal(t, 5, cfg.TemporalPooler.NewSynapseCount)
	assert.Equal(t, 0.5, cfg.TemporalPooler.ConnectedPerm)
	assert.Equal(t, 12, cfg.Steps)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region:\n  x_len: 0\n"), 0644))

	_, err := LoadConfig(path)
	assert.True(t, errors.Is(err, htm.ErrInvalidParams))

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGeometryCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"geometry"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "x: field length 10 shift 8")
	assert.Contains(t, out.String(), "column 0,0: x [0,10) y [0,10)")
	assert.Contains(t, out.String(), "column 7,7: x [56,66) y [56,66)")
}

func TestRunCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--steps", "8", "--log-level", "warn"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "average prediction score")
	assert.Contains(t, out.String(), "segments")
}

func TestConfigShowCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "show"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "sensor_width: 66")

	var shown Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &shown))
	assert.Equal(t, *DefaultConfig(), shown)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\npage_size: 25\ncors_origins:\n  - http://localhost:5173\n"), 0o644))
	t.Setenv("FLEETDASH_PAGE_SIZE", "50")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Addr)
	assert.Equal(t, 50, c.PageSize)
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORSOrigins)
	assert.Equal(t, 32, c.MaxUploadMB)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.LogFormat = "xml"
	assert.Error(t, c.Validate())

	c = Default()
	c.PageSize = 0
	assert.Error(t, c.Validate())
}

func TestYAMLRoundTrip(t *testing.T) {
	b, err := Default().YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(b, &back))
	assert.Equal(t, *Default(), back)
}

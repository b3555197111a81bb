package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/richard-senior/fixturecast/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixturecast.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(configPathEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Stats.Window)
	assert.Equal(t, 500, cfg.Train.Forest.Trees)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, logger.INFO, cfg.Level())
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
logLevel: debug
derivedStandings: true
stats:
  window: 6
  formWeights: [1, 1, 1, 1, 1, 1]
train:
  forest:
    trees: 50
source:
  season: 2022
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Stats.Window)
	assert.Equal(t, 3, cfg.Stats.MinGames)
	assert.Equal(t, 50, cfg.Train.Forest.Trees)
	assert.Equal(t, 10, cfg.Train.Forest.MaxDepth)
	assert.Equal(t, 2022, cfg.Source.Season)
	assert.Equal(t, "2013", cfg.Source.Competition)
	assert.True(t, cfg.DerivedStandings)
	assert.Equal(t, logger.DEBUG, cfg.Level())
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "source:\n  apiKey: from-file\n")
	t.Setenv(apiKeyEnv, "from-env")
	t.Setenv(dbDriverEnv, "postgres")
	t.Setenv(dbDSNEnv, "postgres://localhost/fixturecast")
	t.Setenv(seasonEnv, "2021")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Source.APIKey)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/fixturecast", cfg.Store.DSN)
	assert.Equal(t, 2021, cfg.Source.Season)

	t.Setenv(seasonEnv, "next year")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "stats: [not, a, map]"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "stats:\n  window: 8\n"))
	assert.ErrorContains(t, err, "form weight")
}

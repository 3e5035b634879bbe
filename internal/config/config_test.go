package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: local
database:
  host: db.internal
  user: builder
  name: builder
`)

	t.Setenv("APP_ENV", "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 24, cfg.JWT.ExpiresIn)
	assert.Equal(t, 4, cfg.Publish.MinLevel)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
database:
  host: db.internal
`)

	t.Setenv("APP_ENV", "")
	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.False(t, cfg.IsDevelopment())
}

func TestDSN(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  port: 3307
  user: u
  password: p
  name: builder
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "u:p@tcp(db.internal:3307)/builder?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NEXCTL_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultAPIURL, cfg.APIURL)
	require.Equal(t, DefaultTenant, cfg.Tenant)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEXCTL_HOME", dir)

	content := "api_url: https://identity.example.com\ntenant: acme\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://identity.example.com", cfg.APIURL)
	require.Equal(t, "acme", cfg.Tenant)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEXCTL_HOME", dir)

	content := "api_url: https://from-file.example.com\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	t.Setenv("NEXCTL_API_URL", "https://from-env.example.com")
	t.Setenv("NEXCTL_TENANT", "acme")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://from-env.example.com", cfg.APIURL)
	require.Equal(t, "acme", cfg.Tenant)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEXCTL_HOME", dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_url: [broken"), 0o600))

	_, err := Load()
	require.Error(t, err)
}

func TestSessionPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NEXCTL_HOME", dir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "session.json"), cfg.SessionPath())
}

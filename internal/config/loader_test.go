package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("PODBOOK_TEST_HOST", "db.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "host: ${PODBOOK_TEST_HOST}", "host: db.internal"},
		{"set variable ignores default", "host: ${PODBOOK_TEST_HOST:localhost}", "host: db.internal"},
		{"default used", "port: ${PODBOOK_TEST_UNSET:5432}", "port: 5432"},
		{"empty default", "password: ${PODBOOK_TEST_UNSET:}", "password: "},
		{"unset without default kept", "key: ${PODBOOK_TEST_UNSET}", "key: ${PODBOOK_TEST_UNSET}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromMergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
app:
  name: podbook
rss:
  cache_ttl: 5m
wizard:
  pricing_policy: ${PODBOOK_TEST_POLICY:flat}
`)
	writeFile(t, dir, "config.staging.yaml", `
rss:
  max_episodes: 50
`)
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PODBOOK_TEST_POLICY", "duration")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "podbook", cfg.App.Name)
	assert.Equal(t, 5*time.Minute, cfg.RSS.CacheTTL)
	assert.Equal(t, 50, cfg.RSS.MaxEpisodes)
	assert.Equal(t, "duration", cfg.Wizard.PricingPolicy)
	// defaults fill the rest
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, 600*time.Millisecond, cfg.Wizard.AutosaveDebounce)
	assert.Equal(t, 1, cfg.Wizard.UploadConcurrency)
}

func TestLoadFromMissingDirectoryUsesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Equal(t, "podbook", cfg.App.Name)
	assert.Equal(t, "flat", cfg.Wizard.PricingPolicy)
	assert.Equal(t, "/projects/%s", cfg.Wizard.ProjectRoute)
}

func TestBindPrefersFlagsOverFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cli.yaml", `
clients:
  podbook:
    base_url: http://from-file/api
    token: file-token
`)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("api", "", "")
	require.NoError(t, fs.Parse([]string{"--api", "http://from-flag/api"}))

	v := viper.New()
	require.NoError(t, v.BindPFlag("clients.podbook.base_url", fs.Lookup("api")))

	cfg, err := Bind(v, path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag/api", cfg.Clients.Podbook.BaseURL)
	assert.Equal(t, "file-token", cfg.Clients.Podbook.Token)
}

func TestBindMissingFileFails(t *testing.T) {
	_, err := Bind(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "5002", conf.API.Port)
	assert.Equal(t, 7*24*time.Hour, conf.API.SessionTTL)
	assert.Equal(t, "sqlite", conf.Database.Driver)
	assert.Equal(t, 12, conf.Pagination.CardPerPage)
	assert.Equal(t, 20, conf.Pagination.TablePerPage)
	assert.Equal(t, 100, conf.Pagination.APIMaxPerPage)
	assert.Empty(t, conf.API.TrustedProxies)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  port: "8080"
  session_ttl: 2h
  allowed_cors_domains:
    - https://a.example
    - https://b.example
database:
  driver: postgres
pagination:
  card_per_page: 6
`), 0o600))

	t.Setenv("TRINITY_API_LOG_LEVEL", "debug")
	t.Setenv("TRINITY_DATABASE_POSTGRES_HOST", "db.internal")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", conf.API.Port)
	assert.Equal(t, 2*time.Hour, conf.API.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, conf.API.AllowedCORSDomains)
	assert.Equal(t, "debug", conf.API.LogLevel)
	assert.Equal(t, "postgres", conf.Database.Driver)
	assert.Equal(t, "db.internal", conf.Database.Postgres.Host)
	assert.Equal(t, 6, conf.Pagination.CardPerPage)
	assert.Equal(t, 20, conf.Pagination.TablePerPage)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ProductionSigningKey(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		key     string
		wantErr bool
	}{
		{name: "development keeps default", env: "development"},
		{name: "production default key", env: "production", wantErr: true},
		{name: "production blank key", env: "production", key: "   ", wantErr: true},
		{name: "production private key", env: "production", key: "d2bd1c3e0f9a4b7c8e6f5a4b3c2d1e0f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TRINITY_API_ENVIRONMENT", tt.env)
			if tt.key != "" {
				t.Setenv("TRINITY_API_SESSION_SIGNING_KEY", tt.key)
			}

			conf, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInsecureSigningKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.env, conf.API.Environment)
		})
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	write := func(t *testing.T, body string) string {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	conf, err := Load(write(t, `
api:
  trusted_proxies:
    - 10.0.0.1
    - 172.16.0.0/12
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, conf.API.TrustedProxies)

	_, err = Load(write(t, `
api:
  trusted_proxies:
    - not-a-proxy
`))
	assert.ErrorIs(t, err, ErrInvalidProxy)
}

func TestWatch_LogsUndecodableChange(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  log_level: info\n"), 0o600))

	require.NoError(t, Watch(path, func(fsnotify.Event, *AppConfig) {}))

	require.NoError(t, os.WriteFile(path, []byte("pagination:\n  card_per_page: many\n"), 0o600))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("ignoring unreadable config").Len() > 0
	}, 5*time.Second, 20*time.Millisecond)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "valid config",
			yaml:    `web_address: "localhost:8080"`,
			wantErr: "",
		},
		{
			name:    "empty file uses defaults",
			yaml:    ``,
			wantErr: "",
		},
		{
			name:    "lowercase log level",
			yaml:    `log_level: debug`,
			wantErr: "",
		},
		{
			name:    "unknown log level fails validation",
			yaml:    `log_level: LOUD`,
			wantErr: "config validation failed",
		},
		{
			name:    "short session ttl fails validation",
			yaml:    `session_ttl: 10ms`,
			wantErr: "config validation failed",
		},
		{
			name:    "fractional session ttl fails validation",
			yaml:    `session_ttl: 1500ms`,
			wantErr: "session_ttl: must be whole seconds",
		},
		{
			name:    "bcrypt cost out of range fails validation",
			yaml:    `bcrypt_cost: 99`,
			wantErr: "config validation failed",
		},
		{
			name:    "unknown field",
			yaml:    `root_uri: "https://example.com"`,
			wantErr: "failed to unmarshal config file",
		},
		{
			name:    "invalid yaml syntax",
			yaml:    `invalid: [yaml: content`,
			wantErr: "failed to unmarshal config file",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			path := writeTestConfig(t, test.yaml)
			cfg, err := Load(path)

			if test.wantErr != "" {
				require.ErrorContains(t, err, test.wantErr)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestLoad_MergesDefaults(t *testing.T) {
	t.Parallel()

	path := writeTestConfig(t, "session_ttl: 90s\nlog_level: warn\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, LogLevelWarn, cfg.LogLevel)
	assert.Equal(t, def.WebAddress, cfg.WebAddress)
	assert.Equal(t, def.DBFilepath, cfg.DBFilepath)
	assert.Equal(t, def.BcryptCost, cfg.BcryptCost)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	require.ErrorContains(t, err, "failed to read config file")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, cfg)
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.SessionTTL = 2 * time.Minute
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "session_ttl: 2m0s")

	loaded, err := Load(writeTestConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)
	return path
}

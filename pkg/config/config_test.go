package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/p4"
)

func clearEnv(t *testing.T) {
	t.Setenv(EnvConfigFile, "")
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
		}
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("P4PORT", "ssl:perforce:1666")
	t.Setenv("P4USER", "bob")
	t.Setenv("P4OO_USER", "alice")
	t.Setenv("P4CLIENT", "ws")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "ssl:perforce:1666", cfg.Port)
	assert.Equal(t, "alice", cfg.User, "P4OO_* variables take precedence")
	assert.Equal(t, "ws", cfg.Client)
	assert.Equal(t, p4.DefaultProgram, cfg.Program)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Equal(t, p4.Settings{
		p4.SettingPort:   "ssl:perforce:1666",
		p4.SettingUser:   "alice",
		p4.SettingClient: "ws",
	}, cfg.Settings())
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	file := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: perforce:1666
user: carol
password: secret
program: /opt/p4
schema: /etc/p4oo/schema.yaml
loglevel: debug
`), 0o600))
	t.Setenv(EnvConfigFile, file)
	t.Setenv("P4USER", "dave")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "perforce:1666", cfg.Port)
	assert.Equal(t, "dave", cfg.User, "environment takes precedence over the config file")
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "/opt/p4", cfg.Program)
	assert.Equal(t, "/etc/p4oo/schema.yaml", cfg.Schema)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "secret", cfg.Settings()[p4.SettingPassword])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "nowhere.yaml"))

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfig))
}

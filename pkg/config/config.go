// Package config loads the settings of a perforce connection.
//
// Settings are read, by order of precedence, from P4OO_* environment
// variables, the usual P4* environment variables, and a p4oo.yaml
// configuration file.
package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/p4"
)

// EnvConfigFile points to an explicit configuration file
const EnvConfigFile = "P4OO_CONFIG"

// ErrConfig indicates an invalid configuration
var ErrConfig = errors.New("invalid configuration")

// Config for a perforce connection
type Config struct {
	Port     string `mapstructure:"port" json:"port,omitempty" yaml:"port,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty" yaml:"user,omitempty"`
	Client   string `mapstructure:"client" json:"client,omitempty" yaml:"client,omitempty"`
	Password string `mapstructure:"password" json:"-" yaml:"password,omitempty"`
	Charset  string `mapstructure:"charset" json:"charset,omitempty" yaml:"charset,omitempty"`
	Host     string `mapstructure:"host" json:"host,omitempty" yaml:"host,omitempty"`

	// Program is the path to the p4 command line client
	Program string `mapstructure:"program" json:"program,omitempty" yaml:"program,omitempty"`

	// Schema is the path to a schema document overriding the built-in one
	Schema string `mapstructure:"schema" json:"schema,omitempty" yaml:"schema,omitempty"`

	LogLevel string `mapstructure:"loglevel" json:"loglevel,omitempty" yaml:"loglevel,omitempty"`
}

var envBindings = map[string][]string{
	"port":     {"P4OO_PORT", "P4PORT"},
	"user":     {"P4OO_USER", "P4USER"},
	"client":   {"P4OO_CLIENT", "P4CLIENT"},
	"password": {"P4OO_PASSWD", "P4PASSWD"},
	"charset":  {"P4OO_CHARSET", "P4CHARSET"},
	"host":     {"P4OO_HOST", "P4HOST"},
	"program":  {"P4OO_PROGRAM"},
	"schema":   {"P4OO_SCHEMA"},
	"loglevel": {"P4OO_LOGLEVEL"},
}

// Init prepares a viper instance to read p4oo settings: defaults, environment and config file locations.
func Init(v *viper.Viper) error {
	v.SetDefault("program", p4.DefaultProgram)
	v.SetDefault("loglevel", "info")

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return ErrConfig.Wrap(err)
		}
	}

	if file := os.Getenv(EnvConfigFile); file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.p4oo")
		v.AddConfigPath("/etc/p4oo")
		v.SetConfigName("p4oo")
	}
	return nil
}

// Load the configuration.
//
// A missing configuration file is not an error, unless explicitly set with P4OO_CONFIG.
func Load(v *viper.Viper) (*Config, error) {
	if err := Init(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, ErrConfig.WithDetail("reading %s", v.ConfigFileUsed()).Wrap(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ErrConfig.Wrap(err)
	}
	return &cfg, nil
}

// Settings yields the connection settings for a perforce connection
func (c *Config) Settings() p4.Settings {
	s := make(p4.Settings)
	for key, value := range map[string]string{
		p4.SettingPort:     c.Port,
		p4.SettingUser:     c.User,
		p4.SettingClient:   c.Client,
		p4.SettingPassword: c.Password,
		p4.SettingCharset:  c.Charset,
		p4.SettingHost:     c.Host,
	} {
		if value != "" {
			s[key] = value
		}
	}
	return s
}

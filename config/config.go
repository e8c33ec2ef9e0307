// Package config loads service configuration from layered sources: .env
// files, a base settings file, an environment-specific overlay and process
// environment variables, in increasing order of precedence.
//
// Keys are hierarchical and case-insensitive. The environment variable form
// replaces dots with underscores, so connectionStrings.Messaging can be set
// with CONNECTIONSTRINGS_MESSAGING.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// DefaultEnvironment is used when no source sets service.environment.
const DefaultEnvironment = "Development"

// Service identifies the running service. The name doubles as the Kafka
// client id and the consumer group stem, so it cannot be empty.
type Service struct {
	Name        string `mapstructure:"name" validate:"required,excludesall=0x20"`
	Environment string `mapstructure:"environment" validate:"required"`
	Version     string `mapstructure:"version"`
}

// Config is the loaded configuration: the typed service identity plus the
// raw tree for packages that bind their own sections.
type Config struct {
	Service Service

	v *viper.Viper
}

// Viper exposes the underlying tree for section binders.
func (c *Config) Viper() *viper.Viper { return c.v }

var validate = validator.New(validator.WithRequiredStructEnabled())

type loader struct {
	fs         afero.Fs
	file       string
	name       string
	searchDirs []string
	envFiles   []string
	defaults   map[string]any
}

// LoadOption adjusts where and how configuration is read.
type LoadOption func(*loader)

// WithFs reads all files through the given filesystem.
func WithFs(fs afero.Fs) LoadOption {
	return func(l *loader) { l.fs = fs }
}

// WithFile loads exactly this settings file; a missing file is then an error
// instead of being skipped.
func WithFile(path string) LoadOption {
	return func(l *loader) { l.file = path }
}

// WithName changes the base name of the discovered settings file, default
// "appsettings".
func WithName(name string) LoadOption {
	return func(l *loader) { l.name = name }
}

// WithSearchDirs changes the directories searched for settings files,
// default the working directory.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(l *loader) { l.searchDirs = dirs }
}

// WithEnvFiles changes the dotenv files loaded before anything else, default
// ".env". Values never override variables already present in the process
// environment.
func WithEnvFiles(files ...string) LoadOption {
	return func(l *loader) { l.envFiles = files }
}

// WithDefault seeds a default value for a key, below every other source.
func WithDefault(key string, value any) LoadOption {
	return func(l *loader) {
		l.defaults[key] = value
	}
}

// Load reads the configuration sources in order and returns the merged view.
// The service section is validated; everything else is bound lazily by the
// packages that own it.
func Load(opts ...LoadOption) (*Config, error) {
	l := &loader{
		fs:         afero.NewOsFs(),
		name:       "appsettings",
		searchDirs: []string{"."},
		envFiles:   []string{".env"},
		defaults:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(l.fs)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service.environment", DefaultEnvironment)
	for key, value := range l.defaults {
		v.SetDefault(key, value)
	}

	if err := l.readSettings(v); err != nil {
		return nil, err
	}

	// The overlay is chosen by the environment the earlier layers resolved,
	// mirroring appsettings.{Environment} layering.
	if err := l.mergeEnvironmentOverlay(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Service: Service{
			Name:        v.GetString("service.name"),
			Environment: v.GetString("service.environment"),
			Version:     v.GetString("service.version"),
		},
		v: v,
	}

	if err := validate.Struct(cfg.Service); err != nil {
		return nil, fmt.Errorf("config: invalid service settings: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads dotenv files and exports their variables, keeping any
// value the process environment already has.
func (l *loader) loadDotEnv() error {
	for _, file := range l.envFiles {
		data, err := afero.ReadFile(l.fs, file)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("config: read %s: %w", file, err)
		}

		vars, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return fmt.Errorf("config: parse %s: %w", file, err)
		}
		for key, value := range vars {
			if _, present := os.LookupEnv(key); present {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("config: set %s: %w", key, err)
			}
		}
	}
	return nil
}

func (l *loader) readSettings(v *viper.Viper) error {
	if l.file != "" {
		v.SetConfigFile(l.file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", l.file, err)
		}
		return nil
	}

	v.SetConfigName(l.name)
	for _, dir := range l.searchDirs {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		// Running on environment variables alone is supported; anything but
		// a missing file is still fatal.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", l.name, err)
	}
	return nil
}

// mergeEnvironmentOverlay merges {name}.{environment}.yaml over the base
// settings when such a file exists in the search directories.
func (l *loader) mergeEnvironmentOverlay(v *viper.Viper) error {
	if l.file != "" {
		return nil
	}

	env := v.GetString("service.environment")
	if env == "" {
		return nil
	}

	overlay := fmt.Sprintf("%s.%s.yaml", l.name, env)
	for _, dir := range l.searchDirs {
		path := filepath.Join(dir, overlay)
		ok, err := afero.Exists(l.fs, path)
		if err != nil {
			return fmt.Errorf("config: probe %s: %w", path, err)
		}
		if !ok {
			continue
		}

		data, err := afero.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		v.SetConfigType("yaml")
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("config: merge %s: %w", path, err)
		}
		return nil
	}
	return nil
}

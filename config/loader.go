package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/testkit/logger"
	"github.com/kbukum/testkit/version"
)

// LoaderConfig holds optional file overrides for Load.
type LoaderConfig struct {
	ConfigFile string // explicit testkit.yml path
	EnvFile    string // explicit .env path, preloaded before binding
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// envKeyReplacer maps viper keys to environment names, e.g.
// logging.level -> TESTKIT_LOGGING_LEVEL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// configKeys are the viper keys bound to TESTKIT_* environment variables.
var configKeys = []string{
	"lock_namespace",
	"store",
	"dotenv_file",
	"logging.level",
	"logging.format",
	"logging.output",
	"logging.no_color",
	"logging.timestamp",
	"logging.caller",
}

// Load reads testkit configuration from (in increasing precedence) a
// testkit.yml file, a preloaded .env file, and TESTKIT_* environment
// variables, then applies defaults and validates. It also initializes the
// global logger from the loaded logging section.
func Load(opts ...LoaderOption) (*Config, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return nil, fmt.Errorf("config: load env file %s: %w", lc.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("TESTKIT")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Init(cfg.Logging)
	logger.Debug("testkit configured", logger.Fields(
		"version", version.GetShortVersion(),
		logger.FieldLock, cfg.LockNamespace,
		"store", cfg.Store,
	))
	return &cfg, nil
}

// findConfigFile checks the conventional locations for a testkit config file.
func findConfigFile() string {
	for _, path := range []string{"testkit.yml", ".testkit.yml", "testdata/testkit.yml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

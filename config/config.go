package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/testkit/envguard"
	"github.com/kbukum/testkit/locks"
	"github.com/kbukum/testkit/logger"
)

// Store selection values.
const (
	StoreEnv    = "env"
	StoreMemory = "memory"
)

// Config contains testkit library configuration.
type Config struct {
	Logging       logger.Config `yaml:"logging" mapstructure:"logging"`
	LockNamespace string        `yaml:"lock_namespace" mapstructure:"lock_namespace" validate:"required"`
	Store         string        `yaml:"store" mapstructure:"store" validate:"oneof=env memory"`
	DotenvFile    string        `yaml:"dotenv_file" mapstructure:"dotenv_file"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.LockNamespace == "" {
		c.LockNamespace = envguard.DefaultLockNamespace
	}
	if c.Store == "" {
		c.Store = StoreEnv
	}
	c.Logging.ApplyDefaults()
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Guard builds an environment guard from the configuration: the configured
// store and the configured lock namespace from the default registry.
func (c *Config) Guard() *envguard.Guard {
	opts := []envguard.Option{
		envguard.WithLock(locks.Default().Get(c.LockNamespace)),
	}
	if c.Store == StoreMemory {
		opts = append(opts, envguard.WithStore(envguard.NewMapStore(nil)))
	}
	return envguard.NewGuard(opts...)
}

package dynarray

import (
	"flag"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds construction defaults for arrays built with NewFromConfig.
type Config struct {
	InitialCapacity int    `env:"DYNARRAY_INITIAL_CAPACITY" envDefault:"0"`
	GrowthFloor     int    `env:"DYNARRAY_GROWTH_FLOOR" envDefault:"1"`
	MaxBytes        uint64 `env:"DYNARRAY_MAX_BYTES" envDefault:"0"`
}

// RegisterFlags registers the config flags on f.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.IntVar(&cfg.InitialCapacity, "dynarray.initial-capacity", 0, "Number of slots allocated when an array is created. 0 defers allocation to the first append.")
	f.IntVar(&cfg.GrowthFloor, "dynarray.growth-floor", DefaultGrowthFloor, "Capacity an empty array grows to on its first resize.")
	f.Uint64Var(&cfg.MaxBytes, "dynarray.max-bytes", 0, "Maximum bytes of slot buffers per array. 0 means unlimited.")
}

// Validate reports the first invalid setting.
func (cfg *Config) Validate() error {
	if cfg.InitialCapacity < 0 {
		return errors.Wrapf(ErrInvalidArgument, "initial capacity must not be negative, got %d", cfg.InitialCapacity)
	}
	if cfg.GrowthFloor < 1 {
		return errors.Wrapf(ErrInvalidArgument, "growth floor must be at least 1, got %d", cfg.GrowthFloor)
	}
	return nil
}

// ConfigFromEnv loads a Config from DYNARRAY_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Options converts the config into construction options.
func (cfg Config) Options() []Option {
	opts := []Option{WithGrowthFloor(cfg.GrowthFloor)}
	if cfg.MaxBytes > 0 {
		opts = append(opts, WithAllocator(NewBudgetAllocator(cfg.MaxBytes)))
	}
	return opts
}

// NewFromConfig creates an array for T sized by cfg. opts are applied after
// the config and take precedence.
func NewFromConfig[T any](cfg Config, opts ...Option) (*Array[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewOf[T](cfg.InitialCapacity, append(cfg.Options(), opts...)...)
}

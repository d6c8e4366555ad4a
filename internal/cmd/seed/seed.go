// Package seed loads a YAML world fixture into storage.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/louisbranch/loreworld/internal/platform/config"
	"github.com/louisbranch/loreworld/internal/seed"
	"github.com/louisbranch/loreworld/internal/storage/sqlite"
)

// Config is the seed command configuration.
type Config struct {
	DBPath     string `env:"DB_PATH" envDefault:"loreworld.db"`
	LogQueries bool   `env:"LOG_QUERIES" envDefault:"false"`

	FixturePath string
}

// ParseConfig reads the environment and the fixture path argument.
func ParseConfig(flagSet *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}
	if flagSet.NArg() != 1 {
		return Config{}, fmt.Errorf("usage: seed <fixture.yaml>")
	}
	cfg.FixturePath = flagSet.Arg(0)
	return cfg, nil
}

// Run applies the fixture and reports the new world id.
func Run(ctx context.Context, cfg Config) error {
	fixture, err := seed.Load(cfg.FixturePath)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath, sqlite.Options{LogQueries: cfg.LogQueries})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	worldID, err := seed.Apply(ctx, store, fixture)
	if err != nil {
		return err
	}
	log.Printf("seeded world %d (%s) from %s", worldID, fixture.World.Name, cfg.FixturePath)
	return nil
}

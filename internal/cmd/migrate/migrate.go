// Package migrate applies or rolls back schema migrations.
package migrate

import (
	"context"
	"flag"
	"log"

	"github.com/louisbranch/loreworld/internal/platform/config"
	"github.com/louisbranch/loreworld/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/loreworld/internal/storage/sqlite"
)

// Config is the migrate command configuration.
type Config struct {
	DBPath string `env:"DB_PATH" envDefault:"loreworld.db"`

	Rollback bool
}

// ParseConfig reads the environment and flags.
func ParseConfig(flagSet *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	flagSet.BoolVar(&cfg.Rollback, "rollback", false, "roll back the most recent migration")
	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run applies pending migrations, or reverses the latest with -rollback.
func Run(_ context.Context, cfg Config) error {
	sqlDB, err := sqlite.OpenDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Rollback {
		name, err := sqlitemigrate.Rollback(sqlDB, sqlite.Migrations)
		if err != nil {
			return err
		}
		if name == "" {
			log.Printf("nothing to roll back")
			return nil
		}
		log.Printf("rolled back %s", name)
		return nil
	}

	if err := sqlitemigrate.Apply(sqlDB, sqlite.Migrations); err != nil {
		return err
	}
	log.Printf("migrations up to date")
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mcontrol/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	versions, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s (%d migrations applied)\n", config.Database.Path, len(versions))
}

// SetupConfig writes a configuration file from the embedded template.
//
// With --client-id the defaults are written with that client ID filled in.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	clientID := cmd.String("client-id")

	if clientID == "" {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
	} else {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%w: config file already exists at %s", shared.ErrInvalidArgument, configPath)
		}
		config := shared.DefaultConfig()
		config.OAuth.ClientID = clientID
		if err := shared.SaveConfig(configPath, config); err != nil {
			return err
		}
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	if clientID == "" {
		r.writePlain("1. Set oauth.client_id in %s or export %s\n", configPath, shared.ClientIDEnv)
	} else {
		r.writePlain("1. Review the [oauth] section of %s\n", configPath)
	}
	r.writePlain("2. Run 'mcontrol setup database --config %s'\n", configPath)
	r.writePlain("3. Run 'mcontrol login --config %s'\n", configPath)
	return nil
}

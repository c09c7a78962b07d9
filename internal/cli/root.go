package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/config"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the top-level "kisheka" command and registers all
// subcommands against the provided App. When app has no services yet they
// are wired from configuration before the first command runs.
func NewRootCmd(app *App) *cobra.Command {
	var cfgFile string
	v := viper.New()

	root := &cobra.Command{
		Use:           "kisheka",
		Short:         "Construction budget tracking and reallocation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.wired() {
				return nil
			}
			return wireFromConfig(app, v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.kisheka/config.toml)")
	flags.String("db", "", "SQLite database path")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")
	_ = v.BindPFlag("database.path", flags.Lookup("db"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))

	root.AddCommand(
		newProjectCmd(app),
		newPhaseCmd(app),
		newSpendCmd(app),
		newCapitalCmd(app),
		newReallocCmd(app),
		newOutboxCmd(app),
		newImportCmd(app),
	)

	return root
}

// Execute runs the root command with args and then releases whatever the
// run wired, whether or not the command failed.
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCmd(app)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if closeErr := app.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("closing: %w", closeErr))
	}
	return err
}

func wireFromConfig(app *App, v *viper.Viper, cfgFile string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	wired, err := Wire(database, cfg, logger)
	if err != nil {
		_ = database.Close()
		return err
	}
	app.adopt(wired)
	app.close = func() error {
		_ = logger.Sync()
		return database.Close()
	}
	logger.Debug("database opened", zapPath(cfg.Database.Path))
	return nil
}

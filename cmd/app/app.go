package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trinitydb/impossible-trinity/internal/config"
	"github.com/trinitydb/impossible-trinity/internal/db"
	"github.com/trinitydb/impossible-trinity/internal/logger"
	"github.com/trinitydb/impossible-trinity/internal/repository/dao"
)

const defaultConfigPath = "./cmd/app/config.yml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "trinity",
	Short:         "Impossible Trinity Database",
	Long:          "A small site where users publish, discuss and vote on impossible trinities.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the command line. Without a subcommand it serves the site.
func Execute() error {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{serveCmd.Use})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		zap.L().Error("command failed", zap.Error(err))
		return err
	}

	return nil
}

// bootstrap loads the config, sets up logging and returns a migrated
// database.
func bootstrap() (*config.AppConfig, *gorm.DB, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.API.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}

	var database *gorm.DB
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		database, err = db.OpenWithURL(dbURL, conf.Database)
	} else {
		database, err = db.Open(conf.Database)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(database); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database -> %w", err)
	}

	return conf, database, nil
}

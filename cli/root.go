// Package cli wires the vitalsfirst commands.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vitalsfirst/artifact"
	"vitalsfirst/config"
	"vitalsfirst/db"
	"vitalsfirst/logging"
)

var version = "dev"

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "vitalsfirst",
	Short: "Clinical triage classifier",
	Long: `Trains a triage classifier from patient vitals and serves single-record
predictions from an interactive console.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the yaml config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	l, err := logging.New(loaded.Log, verbose, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	logger.Debug("config loaded", zap.String("path", configPath))
	return nil
}

func artifactConfig() artifact.Config {
	return artifact.Config{
		Dir:         cfg.Artifacts.Dir,
		ModelFile:   cfg.Artifacts.ModelFile,
		EncoderFile: cfg.Artifacts.EncoderFile,
	}
}

// openHistory returns nil when no database is configured or it cannot be
// opened; history is never required for training or prediction.
func openHistory() *db.DB {
	if cfg.Database.Path == "" {
		return nil
	}
	history, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Warn("run history unavailable", zap.String("path", cfg.Database.Path), zap.Error(err))
		return nil
	}
	return history
}

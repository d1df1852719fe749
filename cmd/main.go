package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	envFile string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "showtime",
	Short: "Show running-order editor and duration calculator",
	Long: `showtime keeps an ordered list of scenes and the transitions between them,
each timed in seconds, and reports scene, transition and total running time.

Run "showtime serve" for the HTTP editing service, or work with show files
directly with "showtime totals" and "showtime example".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file loaded before reading the environment")

	rootCmd.AddCommand(serveCmd, totalsCmd, exampleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command kpctl drives the proposal workflow from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"proposal-client/internal/config"
	"proposal-client/internal/notify"
	"proposal-client/pkg/logger"
)

var (
	version = "0.1.0"
	appName = "kpctl"

	logLevel string

	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)

	container *config.Container
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Commercial proposal client",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Upload a pricing spreadsheet, check it against the proposal service
and turn it into a commercial proposal document.

Examples:
  kpctl login -u manager
  kpctl submit prices.xlsx
  kpctl proposals --page 2`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		level := logLevel
		if level == "" {
			level = os.Getenv("LOG_LEVEL")
		}
		c, err := config.NewContainer(
			config.WithLogger(logger.NewLoggerWithWriter(level, os.Stderr)),
			config.WithNotifier(notify.NewConsole(os.Stdout)),
		)
		if err != nil {
			return err
		}
		container = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if container != nil {
			container.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(loginCmd, logoutCmd, resetPasswordCmd, statusCmd, submitCmd, proposalsCmd, downloadCmd, inspectCmd)
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

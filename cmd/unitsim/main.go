// Command unitsim runs the unit core headless: it plays the demo match,
// records and replays order files and keeps run reports.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/1siamBot/unitcore/engine/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "unitsim",
	Short: "unitsim - headless unit simulation",
	Long:  `unitsim drives the command queue, behaviour state and pathfinding core without a window.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		level, err := c.Level()
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		cfg = c
		return nil
	},
	SilenceUsage: true,
}

var (
	configPath string
	logLevel   string
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "unitsim.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mkuehnel/superblock/internal/diag"
)

var verbosity string

var rootCmd = &cobra.Command{
	Use:   "superblock",
	Short: "Superblock formation: trace selection and tail duplication",
	Long: `superblock builds traces through a function's control-flow graph,
predicts branch direction where no profile is available, and duplicates
trace tails so each trace becomes a superblock with no side entrances.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&verbosity, "verbosity", "info",
		"log verbosity: silent, info, debug, trace")
	rootCmd.AddCommand(formCmd)
	rootCmd.AddCommand(extractFeaturesCmd)
}

func logLevel() diag.Level {
	switch verbosity {
	case "silent":
		return diag.LevelSilent
	case "debug":
		return diag.LevelDebug
	case "trace":
		return diag.LevelTrace
	default:
		return diag.LevelInfo
	}
}

func newLogger() *diag.Logger {
	return diag.NewLogger(os.Stderr, logLevel())
}

// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log/slog"

	"github.com/dotandev/gopahole/internal/config"
	"github.com/dotandev/gopahole/internal/logger"
	"github.com/spf13/cobra"
)

// Version is set by cmd/godwat/main.go from build-time ldflags.
var Version = "dev"

var (
	verboseFlag bool
	cfg         *config.Config
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "godwat",
	Short: "Inspect DWARF type and struct-layout information in ELF/Mach-O/PE binaries",
	Long: `godwat reads DWARF v4/v5 debugging information out of ELF, Mach-O and PE
object files and reports struct layouts in the style of pahole: byte size,
member offsets, bit-fields, holes, padding and alignment.

Examples:
  godwat lookup ./a.out my_struct          Print one struct's layout
  godwat lookup ./a.out my_struct -v       Print with hole/padding annotations
  godwat dump ./a.out                      Print every struct layout found
  godwat dump ./a.out --fast               Skip the persistent struct cache`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if verboseFlag {
			level = "debug"
		}
		logger.SetLevel(parseLevel(level))
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"annotate output with hole/padding/alignment detail and enable debug logging")
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package main provides the mapcheck CLI:
//
//	mapcheck check <set.yaml...>   (run the check suite)
//	mapcheck browse <set.yaml>     (full-screen issue browser)
//	mapcheck shell <set.yaml>      (interactive issue shell)
//	mapcheck list                  (registered checks)
//	mapcheck explain <check-id>    (check documentation)
//	mapcheck schema <type>         (exports JSON Schema)
//	mapcheck test <dir...>         (golden scenarios)
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:          "mapcheck",
	Short:        "Quality checks for osu! beatmapsets",
	SilenceUsage: true,
}

// newLogger builds the text logger every command writes diagnostics to.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mapcheck %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(versionCmd)
}

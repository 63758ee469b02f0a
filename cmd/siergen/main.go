// Package main implements the siergen CLI.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"siergen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "siergen",
	Short: "SSA IR to Sierra-style program lowering",
	Long:  `siergen lowers a textual SSA control-flow graph into a linear, statement-indexed Sierra-style program`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveColorMode turns the --color flag into a concrete decision and
// syncs the global color state used by styled output.
func resolveColorMode(cmd *cobra.Command, out *os.File) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	var enabled bool
	switch mode {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default: // auto
		enabled = isTerminal(out)
	}
	color.NoColor = !enabled
	return enabled, nil
}

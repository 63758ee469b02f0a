package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"siergen/internal/diagfmt"
	"siergen/internal/driver"
	"siergen/internal/lower"
	"siergen/internal/project"
	"siergen/internal/sierra"
	"siergen/internal/source"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] <file.ll> [<file.ll>...]",
	Short: "Lower textual SSA IR files to Sierra-style programs",
	Long:  "Parse each input file, lower its control-flow graph to a linear statement sequence with resolved branch targets, and print the result.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLower,
}

func init() {
	lowerCmd.Flags().String("emit", "", "output format (text|bin); default text, overridable in siergen.toml")
	lowerCmd.Flags().String("out", "", "write output to a file (single input only)")
	lowerCmd.Flags().Bool("no-cache", false, "disable the on-disk program cache")
	lowerCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

func runLower(cmd *cobra.Command, args []string) error {
	colorEnabled, err := resolveColorMode(cmd, os.Stderr)
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	emit, err := cmd.Flags().GetString("emit")
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	if outPath != "" && len(args) > 1 {
		return errors.New("--out requires a single input file")
	}

	lowerOpts, emitDefault, err := loadLowerConfig()
	if err != nil {
		return err
	}
	if emit == "" {
		emit = emitDefault
	}
	if emit != "text" && emit != "bin" {
		return fmt.Errorf("unsupported emit format: %s (supported: text, bin)", emit)
	}

	var cache *driver.DiskCache
	if !noCache {
		// A missing cache directory is not fatal; lowering just runs cold.
		cache, _ = driver.OpenDiskCache("siergen")
	}

	fileSet := source.NewFileSet()
	results, err := driver.LowerFiles(cmd.Context(), fileSet, args, driver.Options{
		Lower:          lowerOpts,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Cache:          cache,
	})
	if err != nil {
		return err
	}

	failed := false
	for _, res := range results {
		if res.Bag != nil && res.Bag.Len() > 0 {
			res.Bag.Sort()
			diagfmt.Pretty(os.Stderr, res.Bag, fileSet, diagfmt.PrettyOpts{Color: colorEnabled, Context: true})
		}
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "siergen: %v\n", res.Err)
			failed = true
			continue
		}
		for _, sk := range res.Report.Skipped {
			fmt.Fprintf(os.Stderr, "%s: skipped unsupported instruction %q in @%s (block %s)\n",
				res.Path, sk.Mnemonic, sk.Func, sk.Block)
		}
		if err := writeProgram(cmd, res.Program, emit, outPath); err != nil {
			return err
		}
	}
	if failed {
		return errors.New("lowering failed")
	}
	return nil
}

// loadLowerConfig merges siergen.toml (if present) over the defaults.
func loadLowerConfig() (lower.Options, string, error) {
	opts := lower.DefaultOptions()
	emit := "text"

	manifest, found, err := project.LoadManifest(".")
	if err != nil {
		return opts, emit, err
	}
	if !found {
		return opts, emit, nil
	}
	if len(manifest.Config.Predicates) > 0 {
		opts.Predicates = manifest.Config.Predicates
	}
	if manifest.Config.Lower.FallbackPredicate != "" {
		opts.FallbackPredicate = manifest.Config.Lower.FallbackPredicate
	}
	if manifest.Config.Output.Emit != "" {
		emit = manifest.Config.Output.Emit
	}
	return opts, emit, nil
}

func writeProgram(cmd *cobra.Command, prog *sierra.Program, emit, outPath string) error {
	if emit == "bin" {
		data, err := msgpack.Marshal(prog)
		if err != nil {
			return fmt.Errorf("failed to encode program: %w", err)
		}
		if outPath == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return os.WriteFile(outPath, data, 0o644)
	}

	if outPath == "" {
		return sierra.Print(cmd.OutOrStdout(), prog)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return sierra.Print(f, prog)
}

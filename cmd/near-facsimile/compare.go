// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/msuchane/near-facsimile/internal/compare"
	"github.com/msuchane/near-facsimile/internal/corpus"
	"github.com/msuchane/near-facsimile/internal/logging"
	"github.com/msuchane/near-facsimile/internal/progress"
	"github.com/msuchane/near-facsimile/internal/report"
	"github.com/msuchane/near-facsimile/internal/similarity"
	"github.com/msuchane/near-facsimile/pkg/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare all files in a directory and report the similar pairs",
	Long: `Compare loads every text file under --path, compares each pair of files,
and reports the pairs whose similarity is above --threshold percent.

Each pair is first scored with a cheap trigram similarity. Pairs far below
the threshold are dropped; the rest are scored with the precise metric.
Pass --fast once to use Jaro instead of Levenshtein, or twice to report the
trigram score directly.

Without an output file, the similar pairs are printed as a table.`,
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	loadCfg, outCfg, logCfg, err := compareConfigs(cmd)
	if err != nil {
		return err
	}

	logger, closer := logging.Setup(logCfg)
	defer closer.Close()

	opts := compare.Options{
		Config: types.CompareConfig{
			Threshold:      viper.GetFloat64("threshold") / 100,
			Fast:           viper.GetInt("fast"),
			PrefilterRatio: viper.GetFloat64("prefilter-ratio"),
			Workers:        viper.GetInt("jobs"),
			Verbosity:      logCfg.Verbosity,
		},
		Logger: logger,
	}
	if viper.GetBool("progress") {
		opts.Progress = progress.New(os.Stderr, clockwork.NewRealClock())
	}

	// The configuration is checked before any file is read.
	collector, err := compare.NewCollector(opts)
	if err != nil {
		return err
	}

	units, summary, err := corpus.Load(afero.NewOsFs(), loadCfg, logger)
	if err != nil {
		return err
	}

	started := time.Now()
	res, err := collector.Collect(units)
	if err != nil {
		return err
	}

	rows, err := report.Rows(res.Comparisons, loadCfg.Root)
	if err != nil {
		return err
	}

	run := report.RunInfo{
		Root:      loadCfg.Root,
		Threshold: opts.Config.Threshold,
		Metric:    similarity.LevelFromCount(opts.Config.Fast).String(),
		Files:     summary.Loaded,
		Pairs:     res.Pairs,
		StartedAt: started,
		Duration:  time.Since(started).Seconds(),
	}
	return writeOutputs(cmd, outCfg, run, rows, logger)
}

// compareConfigs reads the loader, output and logging settings from viper.
// Repeatable flags given on the command line are read from the flag set so
// that values containing commas stay intact.
func compareConfigs(cmd *cobra.Command) (types.LoadConfig, types.OutputConfig, types.LogConfig, error) {
	var (
		loadCfg types.LoadConfig
		outCfg  types.OutputConfig
		logCfg  types.LogConfig
	)
	for _, target := range []any{&loadCfg, &outCfg, &logCfg} {
		if err := viper.Unmarshal(target); err != nil {
			return loadCfg, outCfg, logCfg, fmt.Errorf("reading configuration: %w", err)
		}
	}

	loadCfg.IgnoreFiles = stringList(cmd, "ignore-file", loadCfg.IgnoreFiles)
	loadCfg.IgnoreExts = stringList(cmd, "ignore-ext", loadCfg.IgnoreExts)
	loadCfg.RequireFiles = stringList(cmd, "require-file", loadCfg.RequireFiles)
	loadCfg.RequireExts = stringList(cmd, "require-ext", loadCfg.RequireExts)
	loadCfg.SkipLines = stringList(cmd, "skip-lines", loadCfg.SkipLines)

	if loadCfg.Root == "" {
		loadCfg.Root = "."
	}
	return loadCfg, outCfg, logCfg, nil
}

func stringList(cmd *cobra.Command, name string, fallback []string) []string {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	values, _ := cmd.Flags().GetStringArray(name)
	return values
}

func writeOutputs(cmd *cobra.Command, cfg types.OutputConfig, run report.RunInfo, rows []report.Row, logger zerolog.Logger) error {
	if cfg.IsEmpty() {
		report.WriteTable(cmd.OutOrStdout(), rows)
		return nil
	}

	files := []struct {
		path  string
		write func(w io.Writer, rows []report.Row) error
	}{
		{cfg.CSV, report.WriteCSV},
		{cfg.JSON, report.WriteJSON},
		{cfg.YAML, report.WriteYAML},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := report.SaveFile(f.path, rows, f.write); err != nil {
			return err
		}
		logger.Info().Str("path", f.path).Int("rows", len(rows)).Msg("Saved the report")
	}

	if cfg.DB != "" {
		return saveRun(cmd.Context(), cfg.DB, run, rows, logger)
	}
	return nil
}

func saveRun(ctx context.Context, path string, run report.RunInfo, rows []report.Row, logger zerolog.Logger) error {
	store, err := report.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, run, rows)
	if err != nil {
		return err
	}
	logger.Info().Str("path", path).Int64("run", id).Msg("Saved the run to the report database")
	return nil
}

func init() {
	f := compareCmd.Flags()
	f.StringP("path", "p", ".", "directory to search for files recursively")
	f.Float64P("threshold", "t", 85.0, "similarity percentage a pair must exceed to be reported")
	f.CountP("fast", "f", "use a faster, less precise metric (-f Jaro, -ff trigram only)")
	f.CountP("verbose", "v", "log more detail (-v info, -vv debug)")
	f.StringP("csv", "c", "", "save the report as CSV to this file")
	f.StringP("json", "j", "", "save the report as JSON to this file")
	f.String("yaml", "", "save the report as YAML to this file")
	f.String("db", "", "append the run to this SQLite report database")
	f.StringArray("skip-lines", nil, "remove lines matching this regular expression before comparing (repeatable)")
	f.BoolP("progress", "P", false, "show a progress bar")
	f.StringArray("ignore-file", nil, "never compare files with this name (repeatable)")
	f.StringArray("ignore-ext", nil, "never compare files with this extension (repeatable)")
	f.StringArray("require-file", nil, "only compare files with this name (repeatable)")
	f.StringArray("require-ext", nil, "only compare files with this extension (repeatable)")
	f.Float64("prefilter-ratio", types.DefaultPrefilterRatio, "drop pairs whose trigram similarity is below threshold times this ratio")
	f.Int("jobs", 0, "number of comparison workers (0 uses one per CPU)")
	f.String("log-file", "", "also write the log to this file")

	compareCmd.MarkFlagsMutuallyExclusive("ignore-ext", "require-file")
	compareCmd.MarkFlagsMutuallyExclusive("ignore-ext", "require-ext")
	compareCmd.MarkFlagsMutuallyExclusive("ignore-file", "require-file")

	rootCmd.AddCommand(compareCmd)
}

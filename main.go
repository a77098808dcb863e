package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/julianpalladino/football-tracking/input"
	"github.com/julianpalladino/football-tracking/recording"
	"github.com/julianpalladino/football-tracking/report"
	"github.com/julianpalladino/football-tracking/store"
	"github.com/julianpalladino/football-tracking/tracking"
	"github.com/julianpalladino/football-tracking/types"
	"github.com/julianpalladino/football-tracking/utils"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(2)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "track":
		handleTrack(args)
	case "convert":
		handleConvert(args)
	case "history":
		handleHistory(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Printf(`football-tracking - multi-object tracking on football videos

Usage:
  football-tracking track [options] <input_video.mp4> <input_bbox.json> <method> <output_video.mp4>
  football-tracking convert <folder>
  football-tracking history -db <path> [-limit N]

Tracking methods: %v

Track options:
  -quiet           Only log warnings and errors
  -snapshot PATH   Save the annotated first frame as an image
  -chart PATH      Write an HTML chart of the success rates
  -db PATH         Record the run in a SQLite history database
  -workers N       Run the trackers of one frame on N goroutines
`, tracking.Methods())
}

// newLogger builds the development logger used by every command
func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}

func handleTrack(args []string) {
	fs := flag.NewFlagSet("track", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "Only log warnings and errors")
	snapshot := fs.String("snapshot", "", "Save the annotated first frame to this image")
	chart := fs.String("chart", "", "Write an HTML success-rate chart to this file")
	dbPath := fs.String("db", "", "Record the run in this SQLite database")
	workers := fs.Int("workers", 1, "Number of trackers updated concurrently")
	fs.Usage = printUsage
	fs.Parse(args)

	if fs.NArg() != 4 {
		printUsage()
		os.Exit(2)
	}

	cfg := types.DefaultTrackingConfig()
	cfg.InputPath = fs.Arg(0)
	cfg.ConditionsPath = fs.Arg(1)
	cfg.Method = fs.Arg(2)
	cfg.OutputPath = fs.Arg(3)
	cfg.SnapshotPath = *snapshot
	cfg.Workers = *workers
	cfg.Verbose = !*quiet

	logger := newLogger(cfg.Verbose)
	defer logger.Sync()

	if err := track(cfg, *chart, *dbPath, logger); err != nil {
		logger.Errorf("Tracking failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func track(cfg types.TrackingConfig, chartPath, dbPath string, logger *zap.SugaredLogger) error {
	started := time.Now()

	specs, err := input.LoadConditions(cfg.ConditionsPath)
	if err != nil {
		return err
	}

	deps := tracking.DefaultDependencies(types.DefaultVideoConfig(), logger)
	if cfg.Verbose {
		deps.Progress = os.Stderr
	}

	session, err := tracking.NewSession(cfg, specs, deps)
	if err != nil {
		return err
	}
	if _, err := session.Run(); err != nil {
		return err
	}

	stats := session.Stats()
	logger.Infof("Summary: %s", report.Summarize(stats))

	if chartPath != "" {
		if err := writeChart(chartPath, cfg, stats); err != nil {
			return err
		}
		logger.Infof("Chart written to %s", chartPath)
	}

	if dbPath != "" {
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		run := report.NewRun(cfg, stats, started)
		if err := db.RecordRun(run); err != nil {
			return err
		}
		logger.Infof("Run %s recorded in %s", run.ID, dbPath)
	}
	return nil
}

func writeChart(path string, cfg types.TrackingConfig, stats []types.ObjectStats) error {
	if err := utils.EnsureDir(path); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s (%s)", cfg.InputPath, cfg.Method)
	if err := report.RenderChart(f, title, stats); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func handleConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "Only log warnings and errors")
	ext := fs.String("ext", ".mkv", "Extension of the videos to convert")
	fs.Usage = printUsage
	fs.Parse(args)

	if fs.NArg() != 1 {
		printUsage()
		os.Exit(2)
	}

	logger := newLogger(!*quiet)
	defer logger.Sync()

	files, err := utils.FindFiles(fs.Arg(0), *ext)
	if err != nil {
		logger.Errorf("Listing %s: %v", fs.Arg(0), err)
		logger.Sync()
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warnf("No %s files found in %s", *ext, fs.Arg(0))
		return
	}

	video := types.DefaultVideoConfig()
	failed := 0
	for _, src := range files {
		dst := utils.ReplaceExt(src, video.Extension)
		frames, err := recording.Convert(src, dst, video)
		if err != nil {
			logger.Errorf("Converting %s: %v", src, err)
			failed++
			continue
		}
		logger.Infof("Converted %s -> %s (%d frames)", src, dst, frames)
	}

	if failed > 0 {
		logger.Errorf("%d of %d conversions failed", failed, len(files))
		logger.Sync()
		os.Exit(1)
	}
}

func handleHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite database with recorded runs (required)")
	limit := fs.Int("limit", 20, "Number of runs to show")
	fs.Usage = printUsage
	fs.Parse(args)

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -db flag is required")
		os.Exit(2)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := db.RecentRuns(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list runs: %v\n", err)
		os.Exit(1)
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  %s  %s  (%s)\n", run.StartedAt.Local().Format(time.DateTime), run.ID,
			run.Method, run.InputPath, run.Duration().Round(time.Millisecond))
		fmt.Printf("  %s\n", report.Summarize(run.Objects))
		for _, line := range report.Lines(run.Objects) {
			fmt.Printf("  %s\n", line)
		}
	}
}

// temp-report summarizes a folder of <Room>_Day<N>.xlsx temperature logs
// into one colour-coded workbook.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin"
	"kastelo.dev/sheetwork/config"
	"kastelo.dev/sheetwork/excel"
	"kastelo.dev/sheetwork/temperature"
)

func main() {
	dir := kingpin.Flag("dir", "Folder with the temperature logs").Short('d').Envar("TEMP_REPORT_DIR").ExistingDir()
	output := kingpin.Flag("output", "Report file name inside the folder").Short('o').String()
	strict := kingpin.Flag("strict", "Abort when a file name lacks <Room>_Day<N> instead of skipping it").Bool()
	cfgFile := kingpin.Flag("config", "YAML configuration file").Envar("SHEETWORK_CONFIG").ExistingFile()
	verbose := kingpin.Flag("verbose", "Log progress and debug messages").Short('v').Bool()
	kingpin.Parse()

	if *dir == "" {
		kingpin.Fatalf("--dir is required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		slog.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	rep, err := temperature.Aggregate(temperature.Options{
		Dir:    *dir,
		Output: *output,
		Strict: *strict,
		Config: cfg.Temperature,
		Progress: func(p temperature.Progress) {
			slog.Debug("Progress", "file", p.Item, "done", p.Done, "total", p.Total, "percent", int(p.Fraction()*100))
		},
	})
	if err != nil {
		slog.Error("Error reading temperature logs", "error", err)
		os.Exit(1)
	}

	bs, err := excel.ReportXLSX(rep.Summaries, cfg.Temperature)
	if err != nil {
		slog.Error("Error creating Excel file", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(rep.Path, bs, 0o644); err != nil {
		slog.Error("Error writing Excel file", "error", err)
		os.Exit(1)
	}

	slog.Info("Wrote report", "path", rep.Path, "rows", len(rep.Summaries), "skipped", len(rep.Skipped()))
}

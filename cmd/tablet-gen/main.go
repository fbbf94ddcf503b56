// tablet-gen fills a memorial tablet template once per row of a
// registration spreadsheet.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kingpin"
	"kastelo.dev/sheetwork/config"
	"kastelo.dev/sheetwork/tablet"
)

func main() {
	input := kingpin.Flag("input", "Registration spreadsheet (.xlsx)").Short('i').Envar("TABLET_INPUT").ExistingFile()
	template := kingpin.Flag("template", "Tablet template (.docx)").Short('t').Envar("TABLET_TEMPLATE").ExistingFile()
	date := kingpin.Flag("date", "Ceremony date, YYYY-MM-DD").Short('d').Default(time.Now().Format("2006-01-02")).String()
	output := kingpin.Flag("output", "Output directory (default: Output next to the input)").Short('o').String()
	cfgFile := kingpin.Flag("config", "YAML configuration file").Envar("SHEETWORK_CONFIG").ExistingFile()
	verbose := kingpin.Flag("verbose", "Log progress and debug messages").Short('v').Bool()
	kingpin.Parse()

	if *input == "" || *template == "" {
		kingpin.Fatalf("--input and --template are required")
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

	res, err := tablet.Generate(tablet.Options{
		Input:     *input,
		Template:  *template,
		Date:      *date,
		OutputDir: *output,
		Config:    cfg.Tablet,
		Progress: func(p tablet.Progress) {
			slog.Debug("Progress", "done", p.Done, "total", p.Total, "percent", int(p.Fraction()*100))
		},
	})
	if err != nil {
		slog.Error("Error generating documents", "error", err)
		os.Exit(1)
	}

	failed := res.Failed()
	for _, f := range failed {
		slog.Warn("No document written", "row", f.Row.Name, "line", f.Row.Line, "error", f.Err)
	}
	slog.Info("Finished", "dir", res.OutputDir, "date", res.Date, "written", len(res.Rows)-len(failed), "failed", len(failed))
}

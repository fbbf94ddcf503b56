package tablet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"kastelo.dev/sheetwork/config"
	"kastelo.dev/sheetwork/lunar"
	"kastelo.dev/sheetwork/word"
)

// Options describes one generator run.
type Options struct {
	// Input is the registration spreadsheet.
	Input string
	// Template is the .docx template with placeholders.
	Template string
	// Date is the ceremony date as YYYY-MM-DD.
	Date string
	// OutputDir receives the documents. Empty means a directory named
	// Config.OutputDirName next to Input.
	OutputDir string

	// Config fields left zero take their defaults.
	Config config.Tablet
	Logger *slog.Logger
	// Progress, if set, is called after every row.
	Progress func(Progress)
}

// Progress is reported after each processed item.
type Progress struct {
	Done, Total int
	Item        string
	Err         error
}

// Fraction returns the completed share of the run, from 0 to 1.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

// RowResult is the outcome for one row. Path is empty when Err is set.
type RowResult struct {
	Row  SourceRow
	Path string
	Err  error
}

// Result summarizes a run.
type Result struct {
	OutputDir string
	// Date is the label printed on every document, possibly
	// lunar.Placeholder.
	Date string
	Rows []RowResult
}

// Failed returns the rows that produced no document.
func (r *Result) Failed() []RowResult {
	var res []RowResult
	for _, row := range r.Rows {
		if row.Err != nil {
			res = append(res, row)
		}
	}
	return res
}

// Generate renders one document per usable row of the input. Problems with
// the input, the output directory or the template abort the run; a failure
// on a single row is recorded in the result and the run carries on.
func Generate(opts Options) (*Result, error) {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	cfg := opts.Config
	if err := mergo.Merge(&cfg, config.Default().Tablet); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	date, err := lunar.Convert(opts.Date)
	if err != nil {
		l.Warn("Using placeholder date", "date", opts.Date, "error", err)
		date = lunar.Placeholder
	}

	rows, err := ReadRowsFile(opts.Input, cfg.Columns, cfg.HeaderRow)
	if err != nil {
		return nil, err
	}
	l.Debug("Read input", "file", opts.Input, "rows", len(rows))

	outDir := opts.OutputDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(opts.Input), cfg.OutputDirName)
	}
	if err := prepareOutputDir(outDir); err != nil {
		return nil, err
	}

	tpl, err := word.OpenTemplate(opts.Template)
	if err != nil {
		return nil, err
	}

	style := word.Style{
		Font:        cfg.Font,
		LineSpacing: cfg.LineSpacing,
		Margin:      cfg.MarginInches,
	}
	sizing := SizingFrom(cfg)

	res := &Result{OutputDir: outDir, Date: date}
	for i, row := range rows {
		rc := NewRenderContext(row, date, sizing)
		st := style
		st.Size = rc.FontSize

		path := filepath.Join(outDir, FileName(row.Name))
		err := tpl.RenderFile(path, rc.Values(cfg.Tokens), st)
		if err != nil {
			l.Error("Failed to render document", "row", row.Name, "line", row.Line, "error", err)
			path = ""
		} else {
			l.Info("Wrote document", "row", row.Name, "path", path, "size", rc.FontSize)
		}
		res.Rows = append(res.Rows, RowResult{Row: row, Path: path, Err: err})

		if opts.Progress != nil {
			opts.Progress(Progress{Done: i + 1, Total: len(rows), Item: row.Name, Err: err})
		}
	}

	return res, nil
}

// prepareOutputDir creates dir if needed and checks that files can be
// created in it.
func prepareOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	fd, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	fd.Close()
	return os.Remove(fd.Name())
}

// FileName returns the document file name for a person, with characters
// that are not allowed in file names replaced.
func FileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '_'
		}
		return r
	}, name)
	clean = strings.TrimRight(strings.TrimSpace(clean), ". ")
	if clean == "" {
		clean = "_"
	}
	return clean + ".docx"
}

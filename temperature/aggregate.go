package temperature

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"kastelo.dev/sheetwork/config"
)

// Options describes one aggregation run over a folder.
type Options struct {
	Dir string
	// Output is the report file name inside Dir. Empty means
	// Config.ReportName. The report is never read as input.
	Output string
	// Strict refuses to run when any candidate file is badly named, instead
	// of skipping those files.
	Strict bool

	// Config fields left zero take their defaults.
	Config config.Temperature
	Logger *slog.Logger
	// Progress, if set, is called after every candidate file.
	Progress func(Progress)
}

// Progress is reported after each processed file.
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

// FileResult is the outcome for one candidate file. Key is zero when the
// name did not parse.
type FileResult struct {
	Name string
	Key  Key
	Err  error
}

// Report is the outcome of a run.
type Report struct {
	// Path is where the summary workbook belongs.
	Path      string
	Summaries []Summary
	Files     []FileResult
}

// Skipped returns the files that contributed nothing.
func (r *Report) Skipped() []FileResult {
	var res []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			res = append(res, f)
		}
	}
	return res
}

// InvalidNamesError is returned by a strict run that found badly named
// files.
type InvalidNamesError struct {
	Files []string
}

func (e *InvalidNamesError) Error() string {
	return fmt.Sprintf("file names lack <Room>_Day<N>: %s", strings.Join(e.Files, ", "))
}

// Candidates lists the workbooks in dir that are input to a run, sorted by
// name. The report itself and Office lock files are left out.
func Candidates(dir, report string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var res []string
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
		case !strings.EqualFold(filepath.Ext(name), ".xlsx"):
		case name == report:
		case strings.HasPrefix(name, "~$"):
		default:
			res = append(res, name)
		}
	}
	return res, nil
}

// Aggregate summarizes every candidate file in opts.Dir. Only an unreadable
// directory (or, in strict mode, bad file names) fails the run; problems
// with single files are recorded in the report and logged.
func Aggregate(opts Options) (*Report, error) {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	cfg := opts.Config
	if err := mergo.Merge(&cfg, config.Default().Temperature); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	output := opts.Output
	if output == "" {
		output = cfg.ReportName
	}

	files, err := Candidates(opts.Dir, output)
	if err != nil {
		return nil, err
	}
	parser := NewNameParser(cfg.Rooms)

	if opts.Strict {
		var invalid []string
		for _, name := range files {
			if !parser.Valid(name) {
				invalid = append(invalid, name)
			}
		}
		if len(invalid) > 0 {
			return nil, &InvalidNamesError{Files: invalid}
		}
	}

	rep := &Report{Path: filepath.Join(opts.Dir, output)}
	seen := make(map[Key]int)
	for i, name := range files {
		key, st, err := summarizeCandidate(parser, filepath.Join(opts.Dir, name), cfg.Sheet)

		switch {
		case err == nil:
			if j, ok := seen[key]; ok {
				l.Warn("Duplicate room and day, keeping later file", "key", key.String(), "file", name, "replaces", rep.Files[j].Name)
				for s := range rep.Summaries {
					if rep.Summaries[s].Key == key {
						rep.Summaries[s].Stats = st
					}
				}
			} else {
				rep.Summaries = append(rep.Summaries, Summary{Key: key, Stats: st})
			}
			seen[key] = i
			l.Info("Summarized file", "file", name, "key", key.String(), "count", st.Count)
		case errors.Is(err, ErrNoData):
			l.Warn("Skipping file without data", "file", name, "room", key.Room)
		default:
			l.Error("Skipping file", "file", name, "error", err)
		}

		rep.Files = append(rep.Files, FileResult{Name: name, Key: key, Err: err})
		if opts.Progress != nil {
			opts.Progress(Progress{Done: i + 1, Total: len(files), Item: name, Err: err})
		}
	}

	SortSummaries(rep.Summaries)
	return rep, nil
}

func summarizeCandidate(parser *NameParser, path, sheet string) (Key, Stats, error) {
	key, err := parser.Parse(path)
	if err != nil {
		return Key{}, Stats{}, err
	}
	st, err := SummarizeFile(path, key.Room, sheet)
	if err != nil {
		return key, Stats{}, err
	}
	return key, st, nil
}

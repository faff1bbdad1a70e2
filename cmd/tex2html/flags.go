package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Values accepted by --field.
const (
	fieldText   = "text"
	fieldAnswer = "answer"
	fieldBoth   = "both"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config     string
	staticRoot string
	db         string
	pandoc     string
	backends   []string
	timeout    string
	quiet      bool
	verbose    bool
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common commonFlags
	output string
	strict bool
}

// problemFlags holds flags for the problem command.
type problemFlags struct {
	common commonFlags
	field  string
	random bool
	topic  string
	output string
}

// batchFlags holds flags for the batch command.
type batchFlags struct {
	common  commonFlags
	outDir  string
	topic   string
	workers int
}

// commentGraphicsFlags holds flags for the comment-graphics command.
type commentGraphicsFlags struct {
	common   commonFlags
	dryRun   bool
	noBackup bool
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// cssFlags holds flags for the css command.
type cssFlags struct {
	common commonFlags
	style  string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.staticRoot, "static-root", "", "directory holding figures and macros.tex")
	fs.StringVar(&f.db, "db", "", "problem bank (SQLite file)")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc binary name or path")
	fs.StringSliceVarP(&f.backends, "backend", "b", nil, "backends to try in order: native, pandoc")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "pandoc timeout (e.g., 30s, 2m; 0 disables)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show backend attempts and timing")
}

// newFlagSet creates a FlagSet writing errors and usage to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseArgs runs fs.Parse and maps parse failures to ErrInvalidArgs.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return fs.Args(), nil
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", w, printRenderUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.BoolVar(&f.strict, "strict", false, "fail when every backend fails")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseProblemFlags parses problem command flags and returns positional args.
func parseProblemFlags(args []string, w io.Writer) (*problemFlags, []string, error) {
	f := &problemFlags{}
	fs := newFlagSet("problem", w, printProblemUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVar(&f.field, "field", fieldText, "field to render: text, answer, both")
	fs.BoolVar(&f.random, "random", false, "pick a random problem")
	fs.StringVar(&f.topic, "topic", "", "restrict --random to a topic")
	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	switch f.field {
	case fieldText, fieldAnswer, fieldBoth:
	default:
		return nil, nil, fmt.Errorf("%w: --field must be text, answer or both, got %q", ErrInvalidArgs, f.field)
	}
	return f, rest, nil
}

// parseBatchFlags parses batch command flags.
func parseBatchFlags(args []string, w io.Writer) (*batchFlags, []string, error) {
	f := &batchFlags{}
	fs := newFlagSet("batch", w, printBatchUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.outDir, "out", "o", "", "output directory (default batch.outDir)")
	fs.StringVar(&f.topic, "topic", "", "only render problems tagged with this topic")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	if f.workers < 0 {
		return nil, nil, fmt.Errorf("%w: --workers must be >= 0, got %d", ErrInvalidArgs, f.workers)
	}
	return f, rest, nil
}

// parseCommentGraphicsFlags parses comment-graphics command flags.
func parseCommentGraphicsFlags(args []string, w io.Writer) (*commentGraphicsFlags, []string, error) {
	f := &commentGraphicsFlags{}
	fs := newFlagSet("comment-graphics", w, printCommentGraphicsUsage)
	addCommonFlags(fs, &f.common)
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "list affected problems without writing")
	fs.BoolVar(&f.noBackup, "no-backup", false, "skip the database copy made before writing")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, w io.Writer) (*doctorFlags, []string, error) {
	f := &doctorFlags{}
	fs := newFlagSet("doctor", w, printDoctorUsage)
	addCommonFlags(fs, &f.common)
	fs.BoolVar(&f.json, "json", false, "output as JSON")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

// parseCSSFlags parses css command flags.
func parseCSSFlags(args []string, w io.Writer) (*cssFlags, []string, error) {
	f := &cssFlags{}
	fs := newFlagSet("css", w, printCSSUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVar(&f.style, "style", "", "chroma style (default highlight.style)")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return nil, nil, err
	}
	return f, rest, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/hints"
	"github.com/alnah/go-tex2html/internal/store"
	"github.com/alnah/go-tex2html/internal/yamlutil"
)

// manifestName is written next to the rendered pages.
const manifestName = "manifest.yaml"

// BatchResult holds the outcome of rendering a single problem.
type BatchResult struct {
	ID         int64
	OutputPath string
	Backends   []string // text backend, then answer backend when present
	Fallback   bool
	Err        error
	Duration   time.Duration
}

// manifest describes one batch run.
type manifest struct {
	RunID     string          `yaml:"runId"`
	StartedAt string          `yaml:"startedAt"`
	Duration  string          `yaml:"duration"`
	Topic     string          `yaml:"topic,omitempty"`
	Backends  []string        `yaml:"backends"`
	Succeeded int             `yaml:"succeeded"`
	Failed    int             `yaml:"failed"`
	Problems  []manifestEntry `yaml:"problems"`
}

// manifestEntry is one problem in the manifest.
type manifestEntry struct {
	ID       int64    `yaml:"id"`
	File     string   `yaml:"file,omitempty"`
	Backends []string `yaml:"backends,omitempty"`
	Fallback bool     `yaml:"fallback,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}

// runBatch renders every problem of the bank, optionally filtered by
// topic, into <out>/<id>.html and records the run in manifest.yaml.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseBatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: batch takes no arguments, got %v", ErrInvalidArgs, positional)
	}

	a, err := newApp(&f.common, env)
	if err != nil {
		return err
	}
	if f.outDir != "" {
		a.cfg.Batch.OutDir = f.outDir
	}
	if f.workers > 0 {
		a.cfg.Batch.Workers = f.workers
	}

	r, err := a.newRenderer()
	if err != nil {
		return err
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	problems, err := st.List(ctx, f.topic)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	if len(problems) == 0 {
		if !a.quiet {
			fmt.Fprintln(env.Stdout, "No problems to render")
		}
		return nil
	}

	outDir := a.cfg.Batch.OutDir
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}

	started := env.Now()
	workers := tex2html.ResolveWorkers(a.cfg.Batch.Workers)
	a.logger.Debug("batch start", "problems", len(problems), "workers", workers, "outDir", outDir)

	results := renderBatch(ctx, r, problems, outDir, workers)

	m := buildManifest(env.NewRunID(), started, env.Now().Sub(started), f.topic, r.Backends(), results)
	manifestPath := filepath.Join(outDir, manifestName)
	if err := writeManifest(manifestPath, m); err != nil {
		return err
	}

	failed := printBatchResults(results, a.quiet, f.common.verbose, env)
	if f.common.verbose {
		fmt.Fprintf(env.Stdout, "Manifest: %s (run %s)\n", manifestPath, m.RunID)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d problems", ErrBatchFailed, failed, len(results))
	}
	return nil
}

// renderBatch renders problems concurrently. The Renderer is shared: it is
// safe for concurrent use.
func renderBatch(ctx context.Context, r *tex2html.Renderer, problems []*store.Problem, outDir string, workers int) []BatchResult {
	if len(problems) == 0 {
		return nil
	}

	concurrency := min(workers, len(problems))
	results := make([]BatchResult, len(problems))
	jobs := make(chan int, len(problems))

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = BatchResult{ID: problems[idx].ID, Err: ctx.Err()}
					continue
				}
				results[idx] = renderProblemFile(ctx, r, problems[idx], outDir)
			}
		}()
	}

	for i := range problems {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// renderProblemFile renders p and writes its page to outDir.
func renderProblemFile(ctx context.Context, r *tex2html.Renderer, p *store.Problem, outDir string) BatchResult {
	start := time.Now()
	result := BatchResult{
		ID:         p.ID,
		OutputPath: filepath.Join(outDir, strconv.FormatInt(p.ID, 10)+".html"),
	}

	rendered := renderProblem(ctx, r, p, fieldBoth)
	for _, res := range []tex2html.Result{rendered.text, rendered.answer} {
		if res.HTML != nil {
			result.Backends = append(result.Backends, res.Backend)
		}
	}
	result.Fallback = rendered.fallback()

	if err := fileutil.WriteFileAtomic(result.OutputPath, []byte(rendered.page()), filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	result.Duration = time.Since(start)
	return result
}

// buildManifest summarizes a batch run.
func buildManifest(runID string, started time.Time, elapsed time.Duration, topic string, backends []string, results []BatchResult) *manifest {
	m := &manifest{
		RunID:     runID,
		StartedAt: started.UTC().Format(time.RFC3339),
		Duration:  elapsed.Round(time.Millisecond).String(),
		Topic:     topic,
		Backends:  backends,
		Problems:  make([]manifestEntry, 0, len(results)),
	}

	for _, res := range results {
		entry := manifestEntry{
			ID:       res.ID,
			Backends: res.Backends,
			Fallback: res.Fallback,
		}
		if res.Err != nil {
			entry.Error = res.Err.Error()
			m.Failed++
		} else {
			entry.File = filepath.Base(res.OutputPath)
			m.Succeeded++
		}
		m.Problems = append(m.Problems, entry)
	}
	return m
}

// writeManifest marshals m to YAML at path.
func writeManifest(path string, m *manifest) error {
	data, err := yamlutil.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// printBatchResults outputs per-problem results and returns the failure count.
func printBatchResults(results []BatchResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED problem %d: %v\n", r.ID, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		switch {
		case verbose:
			fmt.Fprintf(env.Stdout, "problem %d -> %s (%v, %v)\n", r.ID, r.OutputPath, r.Backends, r.Duration.Round(time.Millisecond))
		case r.Fallback:
			fmt.Fprintf(env.Stdout, "Created %s (plain-text fallback)\n", r.OutputPath)
		default:
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}

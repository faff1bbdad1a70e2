package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/config"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/hints"
	"github.com/alnah/go-tex2html/internal/pipeline"
	"github.com/alnah/go-tex2html/internal/store"
)

// envContainer forces container detection on.
const envContainer = "TEX2HTML_CONTAINER"

// pandocProbeTimeout bounds the pandoc --version call.
const pandocProbeTimeout = 5 * time.Second

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult is the doctor report, printed as text or JSON.
type doctorResult struct {
	Status   string       `json:"status"`
	Backends []string     `json:"backends"`
	Pandoc   pandocInfo   `json:"pandoc"`
	Macros   macrosInfo   `json:"macros"`
	Database databaseInfo `json:"database"`
	Env      envInfo      `json:"environment"`
	System   systemInfo   `json:"system"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// pandocInfo holds pandoc detection results.
type pandocInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// macrosInfo holds macro preamble detection results.
type macrosInfo struct {
	Source string `json:"source"`
	Path   string `json:"path,omitempty"`
	Found  bool   `json:"found"`
}

// databaseInfo holds problem bank detection results.
type databaseInfo struct {
	Path     string `json:"path"`
	Found    bool   `json:"found"`
	Problems int    `json:"problems"`
	Topics   int    `json:"topics"`
}

// envInfo describes the host environment.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

// systemInfo holds the host checks.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd parses doctor flags, prints the report and maps its status
// to an exit code.
// Warnings still exit 0; any error exits 1.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, _, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		return reportError(err, env)
	}
	a, err := newApp(&f.common, env)
	if err != nil {
		return reportError(err, env)
	}

	result := runDoctor(ctx, a)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor runs every check against the resolved config.
func runDoctor(ctx context.Context, a *app) *doctorResult {
	result := &doctorResult{
		Status:   statusReady,
		Backends: a.cfg.Backends,
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	checkPandoc(ctx, a, result)
	checkMacros(a, result)
	checkDatabase(ctx, a, result)
	checkEnvironment(a.env, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkPandoc locates pandoc and reads its version. A missing pandoc is an
// error only when it is the sole backend.
func checkPandoc(ctx context.Context, a *app, result *doctorResult) {
	if !slices.Contains(a.cfg.Backends, config.BackendPandoc) {
		return
	}

	path, ok := pipeline.LookupPandoc(a.cfg.Pandoc.Path)
	if !ok {
		msg := fmt.Sprintf("pandoc not found (%s)", a.cfg.Pandoc.Path)
		if slices.Contains(a.cfg.Backends, config.BackendNative) {
			result.Warnings = append(result.Warnings, msg+"; only the native backend will render")
		} else {
			result.Errors = append(result.Errors, msg+"; no backend can render")
		}
		return
	}

	result.Pandoc.Found = true
	result.Pandoc.Path = path

	if a.env.Runner == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, pandocProbeTimeout)
	defer cancel()
	stdout, _, err := a.env.Runner.Run(probeCtx, nil, path, "--version")
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not get pandoc version: %v", err))
		return
	}
	first, _, _ := strings.Cut(stdout, "\n")
	result.Pandoc.Version = strings.TrimSpace(first)
}

// checkMacros reports whether the configured macro preamble is available.
func checkMacros(a *app, result *doctorResult) {
	source := a.cfg.Macros.Source
	if source == "" {
		source = tex2html.MacroSourceFile
	}
	result.Macros.Source = source

	switch source {
	case tex2html.MacroSourceNone:
		result.Macros.Found = true
	case tex2html.MacroSourceBuiltin:
		set := a.cfg.Macros.Set
		if set == "" {
			set = tex2html.DefaultMacroSet
		}
		result.Macros.Path = "builtin:" + set
		if _, err := tex2html.ReadMacroSet(set); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("macro set %q not found; available: %s",
				set, strings.Join(tex2html.MacroSets(), ", ")))
			return
		}
		result.Macros.Found = true
	default:
		if !fileutil.DirExists(a.cfg.Static.Root) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("static root %s is not a directory; figures and macro files cannot be found", a.cfg.Static.Root))
		}
		path := a.macroFilePath()
		result.Macros.Path = path
		result.Macros.Found = fileutil.FileExists(path)
		if !result.Macros.Found && source == tex2html.MacroSourceFile {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("macro file not found at %s; rendering without macros", path))
		}
	}
}

// checkDatabase opens the problem bank and counts its rows. The bank is
// only needed by problem, batch and comment-graphics, so failures warn.
func checkDatabase(ctx context.Context, a *app, result *doctorResult) {
	path := a.cfg.Database.Path
	result.Database.Path = path

	st, err := store.Open(ctx, path)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("problem bank unavailable: %v", err))
		return
	}
	defer func() { _ = st.Close() }()
	result.Database.Found = true

	problems, err := st.List(ctx, "")
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("cannot list problems: %v", err))
		return
	}
	result.Database.Problems = len(problems)

	topics, err := st.Topics(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("cannot list topics: %v", err))
		return
	}
	result.Database.Topics = len(topics)
}

// checkEnvironment records whether we run in a container or on CI.
func checkEnvironment(env *Environment, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	for _, v := range hints.CIVars {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer reports whether the process looks containerized.
// The hint names the signal that matched.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv(envContainer) == "1" {
		return true, envContainer + "=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies that batch and backup writes can succeed.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "tex2html-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult writes the report as sectioned text.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "tex2html doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Backends: %s\n", strings.Join(r.Backends, ", "))
	fmt.Fprintln(w)

	if slices.Contains(r.Backends, config.BackendPandoc) {
		fmt.Fprintln(w, "Pandoc")
		if r.Pandoc.Found {
			fmt.Fprintf(w, "  [OK] Found at %s\n", r.Pandoc.Path)
			if r.Pandoc.Version != "" {
				fmt.Fprintf(w, "  [OK] Version: %s\n", r.Pandoc.Version)
			}
		} else {
			fmt.Fprintln(w, "  [WARN] Not found")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Macros")
	switch {
	case r.Macros.Source == tex2html.MacroSourceNone:
		fmt.Fprintln(w, "  [OK] Disabled")
	case r.Macros.Found:
		fmt.Fprintf(w, "  [OK] %s (%s)\n", r.Macros.Path, r.Macros.Source)
	case r.Macros.Source == tex2html.MacroSourceAuto:
		fmt.Fprintf(w, "  [OK] Built-in set (%s missing)\n", r.Macros.Path)
	default:
		fmt.Fprintf(w, "  [WARN] Missing: %s\n", r.Macros.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Problem bank")
	if r.Database.Found {
		fmt.Fprintf(w, "  [OK] %s: %d problems, %d topics\n", r.Database.Path, r.Database.Problems, r.Database.Topics)
	} else {
		fmt.Fprintf(w, "  [WARN] Unavailable: %s\n", r.Database.Path)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to render")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-tex2html/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// CIVars lists variables set by common CI providers.
var CIVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// InCI reports whether a common CI environment variable is set.
func InCI() bool {
	for _, v := range CIVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForPandocMissing returns hints for a pandoc binary that cannot be started.
func ForPandocMissing() string {
	var hints []string

	if InCI() || IsInContainer() {
		hints = append(hints, "install pandoc in the image (apt-get install pandoc)")
	} else {
		hints = append(hints, "install pandoc from https://pandoc.org/installing.html")
	}
	if os.Getenv("TEX2HTML_PANDOC") == "" {
		hints = append(hints, "set TEX2HTML_PANDOC to a custom binary")
	}
	hints = append(hints, "or use --backend native")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the converter timeout.
func ForTimeout() string {
	return format("for long problems, raise --timeout or pandoc.timeout")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-tex2html/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-tex2html") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForMacroSetNotFound returns hints listing the built-in macro sets.
func ForMacroSetNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForDatabase returns hints for a question bank that cannot be opened.
func ForDatabase(path string) string {
	if path == "" {
		return format("pass --db or set TEX2HTML_DB")
	}
	if !fileutil.FileExists(path) {
		return format("no file at " + path + "; pass --db or set TEX2HTML_DB")
	}
	return format("check that " + path + " is a SQLite file with a problems table")
}

// ForUnsupportedSyntax returns a hint for input the native converter rejects.
func ForUnsupportedSyntax() string {
	return format("add pandoc to --backend to render constructs outside the native subset")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}

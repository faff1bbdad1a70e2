package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileLoader reads the macro preamble from a file on disk.
// Implements MacroLoader and MacroReader.
type FileLoader struct {
	path   string
	logger *slog.Logger
}

// NewFileLoader creates a FileLoader for path. A nil logger discards the
// debug message written when the file cannot be read.
func NewFileLoader(path string, logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileLoader{path: path, logger: logger}
}

// NewStaticFileLoader creates a FileLoader for name inside staticRoot.
// Returns ErrInvalidBasePath if staticRoot is not a readable directory and
// ErrPathTraversal if name resolves outside it. An absolute name is used
// as is.
func NewStaticFileLoader(staticRoot, name string, logger *slog.Logger) (*FileLoader, error) {
	if name == "" {
		name = DefaultMacroFile
	}
	if filepath.IsAbs(name) {
		return NewFileLoader(filepath.Clean(name), logger), nil
	}

	root, err := resolveRoot(staticRoot)
	if err != nil {
		return nil, err
	}
	filePath := filepath.Join(root, name)
	if err := verifyPathContainment(root, filePath); err != nil {
		return nil, err
	}
	return NewFileLoader(filePath, logger), nil
}

// Path returns the file the loader reads.
func (f *FileLoader) Path() string { return f.path }

// ReadMacros reads the file. Returns ErrMacrosNotFound if it does not exist
// and ErrAssetRead for other I/O failures.
func (f *FileLoader) ReadMacros() (string, error) {
	content, err := os.ReadFile(f.path) // #nosec G304 -- operator-configured path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMacrosNotFound, f.path)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// LoadMacros reads the file, returning "" when it is missing or unreadable.
func (f *FileLoader) LoadMacros() string {
	content, err := f.ReadMacros()
	if err != nil {
		f.logger.Debug("macro file unavailable, rendering without macros", "path", f.path, "error", err)
		return ""
	}
	return content
}

func resolveRoot(staticRoot string) (string, error) {
	if staticRoot == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(staticRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	// Containment checks compare resolved paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}
	return absPath, nil
}

// verifyPathContainment ensures filePath, with symlinks resolved, stays
// inside root.
func verifyPathContainment(root, filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}
	// A file that does not exist yet keeps its lexical path.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	if !strings.HasPrefix(absFilePath, root+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes %s", ErrPathTraversal, filePath, root)
	}
	return nil
}

// Compile-time interface checks.
var (
	_ MacroLoader = (*FileLoader)(nil)
	_ MacroReader = (*FileLoader)(nil)
)

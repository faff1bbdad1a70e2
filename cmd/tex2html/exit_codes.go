package main

import (
	"errors"
	"os"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/assets"
	"github.com/alnah/go-tex2html/internal/config"
	"github.com/alnah/go-tex2html/internal/dateutil"
	"github.com/alnah/go-tex2html/internal/fileutil"
	"github.com/alnah/go-tex2html/internal/store"
)

// Exit codes for the tex2html CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Command completed
	ExitGeneral  = 1 // General/unexpected error, failed batch items
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitDatabase = 4 // Problem bank missing, malformed or lacking a row
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Database errors (exit 4) are checked first: opening a bank can
	// wrap an os.ErrNotExist.
	if errors.Is(err, ErrDatabase) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrNoProblems) ||
		errors.Is(err, store.ErrNoTopics) ||
		errors.Is(err, store.ErrInvalidPath) {
		return ExitDatabase
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrBackup) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrInvalidArgs) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, fileutil.ErrExtensionEmpty) ||
		errors.Is(err, fileutil.ErrExtensionPathTraversal) ||
		errors.Is(err, tex2html.ErrNoBackends) ||
		errors.Is(err, tex2html.ErrInvalidOption) ||
		errors.Is(err, tex2html.ErrMacroSetNotFound) ||
		errors.Is(err, tex2html.ErrUnknownMacroSource) {
		return ExitUsage
	}

	return ExitGeneral
}

package tex2html

import (
	"errors"

	"github.com/alnah/go-tex2html/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrNoBackends    = pipeline.ErrNoBackends
	ErrInvalidOption = errors.New("invalid renderer option")

	// Macro loading errors.
	ErrMacroSetNotFound   = errors.New("macro set not found")
	ErrInvalidMacroPath   = errors.New("invalid macro path")
	ErrUnknownMacroSource = errors.New("unknown macro source")
)

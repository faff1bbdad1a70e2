package assets

import "errors"

// Sentinel errors for macro loading.
var (
	// ErrMacrosNotFound indicates the macro file or built-in set does not exist.
	ErrMacrosNotFound = errors.New("macros not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured static root is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading a macro file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to access files outside the static root.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrUnknownSource indicates an unsupported macro source kind.
	ErrUnknownSource = errors.New("unknown macro source")
)

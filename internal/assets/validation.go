package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that a built-in macro set name is safe to use as
// a file name. Returns ErrInvalidAssetName if the name is empty or contains
// path separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

package assets

import "sync"

// OnceLoader caches the result of the first LoadMacros call for the life of
// the process. There is no invalidation.
type OnceLoader struct {
	once   sync.Once
	loader MacroLoader
	macros string
}

// NewOnceLoader wraps loader so it is consulted at most once.
func NewOnceLoader(loader MacroLoader) *OnceLoader {
	return &OnceLoader{loader: loader}
}

// LoadMacros implements MacroLoader. It is safe for concurrent use.
func (o *OnceLoader) LoadMacros() string {
	o.once.Do(func() {
		if o.loader != nil {
			o.macros = o.loader.LoadMacros()
		}
	})
	return o.macros
}

// Compile-time interface check.
var _ MacroLoader = (*OnceLoader)(nil)

package main

import (
	"fmt"

	"github.com/alnah/go-tex2html/internal/pipeline"
)

// runCSS writes the stylesheet for the classes emitted by highlighted code
// listings.
func runCSS(args []string, env *Environment) error {
	f, positional, err := parseCSSFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: css takes no arguments, got %v", ErrInvalidArgs, positional)
	}

	style := f.style
	if style == "" {
		a, err := newApp(&f.common, env)
		if err != nil {
			return err
		}
		style = a.cfg.Highlight.Style
	}

	if err := pipeline.NewHighlighter(style).WriteCSS(env.Stdout); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

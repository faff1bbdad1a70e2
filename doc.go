// Package tex2html renders stored LaTeX problem text as HTML fragments with
// MathML math.
//
// # Quick Start
//
// Load the macro preamble once, build a renderer and share it:
//
//	macros := tex2html.LoadMacros("static")
//
//	r, err := tex2html.New(tex2html.WithMacros(macros))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	html := r.RenderString(ctx, `Let $X \sim \mathrm{Bin}(n, p)$.`)
//
// Render never fails: when no backend can convert the source, the cleaned
// LaTeX comes back HTML-escaped inside a <pre> block.
//
// # Rendering Pipeline
//
//  1. Cleanup (full-line comments, \textnormal, leading \noindent,
//     \displaylimits, figure extensions)
//  2. Macro preamble prepended
//  3. Backends tried in order: the in-process native converter, then pandoc
//  4. <img src> values pointed at the static figure layout
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r, err := tex2html.New(
//	    tex2html.WithMacros(macros),
//	    tex2html.WithPandoc(tex2html.PandocOptions{Timeout: 30 * time.Second}),
//	    tex2html.WithImages(tex2html.ImageOptions{URLPrefix: "/assets/fig"}),
//	    tex2html.WithLogger(slog.Default()),
//	)
//
// Custom converters implement Backend and replace the default chain:
//
//	r, err := tex2html.New(tex2html.WithBackends(myBackend))
//
// RenderDetailed reports which backend produced the output and every
// failed attempt before it.
//
// # Concurrency
//
// A Renderer is immutable after New and safe for concurrent use. Batch
// callers size their worker set with ResolveWorkers.
package tex2html

// Package pipeline implements the LaTeX-to-HTML rendering stages.
//
// The stages run in this order for every render:
//   - LaTeX cleanup (comment stripping, command normalization, figure extensions)
//   - conversion through a ranked Chain of backends, the in-process
//     NativeBackend first and the pandoc executable second
//   - image path rewriting of the converter output
//
// When every backend fails, PlainTextFallback keeps the cleaned source
// readable. Macro loading lives in the assets package and orchestration in
// the root tex2html package.
package pipeline

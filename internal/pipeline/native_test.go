package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func convertNative(t *testing.T, src string) string {
	t.Helper()

	got, err := NewNativeBackend().Convert(context.Background(), src)
	if err != nil {
		t.Fatalf("Convert(%q) unexpected error: %v", src, err)
	}
	return got
}

// ---------------------------------------------------------------------------
// TestNativeBackend_Convert - exact output
// ---------------------------------------------------------------------------

func TestNativeBackend_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain paragraph", "Hello world", "<p>Hello world</p>"},
		{"two paragraphs", "a\n\nb", "<p>a</p>\n<p>b</p>"},
		{"single newline joins", "a\nb", "<p>a b</p>"},
		{"bold", `Hello \textbf{world}`, "<p>Hello <strong>world</strong></p>"},
		{"emphasis", `\emph{a}`, "<p><em>a</em></p>"},
		{"font declaration in group", `{\bf bold} normal`, "<p><strong>bold</strong> normal</p>"},
		{"small caps", `\textsc{Abc}`, `<p><span class="smallcaps">Abc</span></p>`},
		{"unwrapped text command", `\textrm{a}b`, "<p>ab</p>"},
		{"tie", "a~b", "<p>a\u00a0b</p>"},
		{"dashes", "1--2 a---b c-d", "<p>1–2 a—b c-d</p>"},
		{"quotes", "``hi'' `x'", "<p>“hi” ‘x’</p>"},
		{"escaped specials", `50\% \& \$5`, "<p>50% &amp; $5</p>"},
		{"accent", `caf\'e`, "<p>cafe\u0301</p>"},
		{"line break", `a\\b`, "<p>a<br/>b</p>"},
		{"comment dropped", "a % note\nb", "<p>a b</p>"},
		{"verb", `\verb|a_b|`, "<p><code>a_b</code></p>"},
		{"url", `\url{https://example.com}`, `<p><a href="https://example.com">https://example.com</a></p>`},
		{"href", `\href{https://example.com}{\emph{site}}`, `<p><a href="https://example.com"><em>site</em></a></p>`},
		{"section", `\section{Intro}text`, "<h3>Intro</h3>\n<p>text</p>"},
		{"ignored commands", `\noindent\label{x}Text\vspace{1em}`, "<p>Text</p>"},
		{
			"image with width",
			`\includegraphics[width=0.5\textwidth]{figures/a.png}`,
			`<p><img src="figures/a.png" style="width:50%"/></p>`,
		},
		{
			"itemize",
			"\\begin{itemize}\n\\item one\n\\item two\n\\end{itemize}",
			"<ul><li>one</li><li>two</li></ul>",
		},
		{
			"enumerate",
			"\\begin{enumerate}\n\\item one\n\\end{enumerate}",
			"<ol><li>one</li></ol>",
		},
		{
			"description",
			"\\begin{description}\n\\item[Term] def\n\\end{description}",
			"<dl><dt>Term</dt><dd>def</dd></dl>",
		},
		{
			"list spacing lead ignored",
			"\\begin{itemize}\\setlength{\\itemsep}{0pt}\n\\item one\n\\end{itemize}",
			"<ul><li>one</li></ul>",
		},
		{
			"verbatim",
			"\\begin{verbatim}\nx < y\n\\end{verbatim}",
			"<pre><code>x &lt; y\n</code></pre>",
		},
		{
			"listing without known language",
			"\\begin{lstlisting}[language=NoSuchLanguage]\nx = 1\n\\end{lstlisting}",
			"<pre><code>x = 1\n</code></pre>",
		},
		{
			"quote",
			"\\begin{quote}Quoted\\end{quote}",
			"<blockquote><p>Quoted</p></blockquote>",
		},
		{
			"center flattened",
			"\\begin{center}Mid\\end{center}",
			"<p>Mid</p>",
		},
		{
			"tabular",
			"\\begin{tabular}{lc}\na & b\\\\\n\\hline\nc & d\n\\end{tabular}",
			`<table><tbody><tr><td>a</td><td style="text-align: center;">b</td></tr>` +
				`<tr><td>c</td><td style="text-align: center;">d</td></tr></tbody></table>`,
		},
		{
			"tabular multicolumn",
			"\\begin{tabular}{|l|l|}\n\\multicolumn{2}{r}{wide}\\\\\n\\end{tabular}",
			`<table><tbody><tr><td colspan="2" style="text-align: right;">wide</td></tr></tbody></table>`,
		},
		{
			"tabular cell starting with bracket",
			"\\begin{tabular}{ll}\nx & y\\\\\n[0,1] & z\n\\end{tabular}",
			`<table><tbody><tr><td>x</td><td>y</td></tr><tr><td>[0,1]</td><td>z</td></tr></tbody></table>`,
		},
		{
			"figure",
			"\\begin{figure}[h]\n\\centering\n\\includegraphics{figures/a.png}\n\\caption{A graph}\n\\end{figure}",
			`<figure><img src="figures/a.png"/><figcaption>A graph</figcaption></figure>`,
		},
		{"empty input", "", ""},
		{"whitespace only", " \n\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := convertNative(t, tt.input); got != tt.want {
				t.Errorf("Convert(%q)\n got %q\nwant %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNativeBackend_Math - fragment checks
// ---------------------------------------------------------------------------

func TestNativeBackend_Math(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "inline dollars",
			input: `Let $x^2$ be`,
			want:  []string{`<p>Let <math`, `display="inline"`, `xmlns="http://www.w3.org/1998/Math/MathML"`, `<msup`, `</math> be</p>`},
		},
		{
			name:  "inline parens",
			input: `\(a\)`,
			want:  []string{`display="inline"`, `>a</mi>`},
		},
		{
			name:  "display brackets",
			input: `\[ x \]`,
			want:  []string{`<p><math`, `display="block"`},
		},
		{
			name:  "display dollars",
			input: `$$\frac{1}{2}$$`,
			want:  []string{`display="block"`, `<mfrac`},
		},
		{
			name:  "equation environment",
			input: `\begin{equation} E=mc^2 \end{equation}`,
			want:  []string{`display="block"`, `>E</mi>`, `<msup`},
		},
		{
			name:  "align environment",
			input: "\\begin{align*}\na &= b\\\\\nc &= d\n\\end{align*}",
			want:  []string{`display="block"`, `<mtable`},
		},
		{
			name:  "macros expanded",
			input: `\newcommand{\R}{\mathbb{R}}$x\in\R$`,
			want:  []string{`<math`, `∈`},
		},
		{
			name:  "macro with argument in text",
			input: `\newcommand{\strong}[1]{\textbf{#1}}\strong{hi}`,
			want:  []string{`<p><strong>hi</strong></p>`},
		},
		{
			name:  "math inside list item",
			input: "\\begin{itemize}\\item $x$\\end{itemize}",
			want:  []string{`<ul><li><math`, `display="inline"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := convertNative(t, tt.input)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Convert(%q)\n got %s\nmissing %s", tt.input, got, want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestNativeBackend_Highlighting
// ---------------------------------------------------------------------------

func TestNativeBackend_Highlighting(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"lstlisting": "\\begin{lstlisting}[language=python]\nprint(1)\n\\end{lstlisting}",
		"minted":     "\\begin{minted}{go}\nfunc main() {}\n\\end{minted}",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := convertNative(t, input)
			if !strings.Contains(got, `class="chroma"`) {
				t.Errorf("expected chroma markup, got %s", got)
			}
			if strings.HasPrefix(got, "<p>") {
				t.Errorf("listing wrapped in a paragraph: %s", got)
			}
		})
	}

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		got, err := NewNativeBackend(WithHighlighter(nil)).Convert(context.Background(), inputs["lstlisting"])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "<pre><code>print(1)\n</code></pre>" {
			t.Errorf("got %q, want plain listing", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestNativeBackend_Unsupported
// ---------------------------------------------------------------------------

func TestNativeBackend_Unsupported(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`\footnote{x}`,
		`\unknowncommand`,
		"\\begin{tikzpicture}\\draw (0,0);\\end{tikzpicture}",
		`a & b`,
		`x_1`,
		`$x`,
		`{unclosed`,
		`stray}`,
		`\caption{outside}`,
		"\\begin{itemize}\n\\item a",
		`\textbf{\begin{itemize}\item a\end{itemize}}`,
		`\newcommand{\a}[x]{y}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, err := NewNativeBackend().Convert(context.Background(), input)
			if !errors.Is(err, ErrUnsupportedSyntax) {
				t.Errorf("Convert(%q) error = %v, want ErrUnsupportedSyntax", input, err)
			}
		})
	}
}

func TestNativeBackend_NestingLimit(t *testing.T) {
	t.Parallel()

	input := strings.Repeat("{", maxNesting+1) + "x" + strings.Repeat("}", maxNesting+1)
	_, err := NewNativeBackend().Convert(context.Background(), input)
	if !errors.Is(err, ErrUnsupportedSyntax) {
		t.Errorf("error = %v, want ErrUnsupportedSyntax", err)
	}
}

func TestNativeBackend_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNativeBackend().Convert(ctx, "text")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNativeBackend_Name(t *testing.T) {
	t.Parallel()

	if got := NewNativeBackend().Name(); got != NativeBackendName {
		t.Errorf("Name() = %q, want %q", got, NativeBackendName)
	}
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/store"
	"golang.org/x/net/html"
)

// runProblem renders one problem from the bank, by id or at random.
func runProblem(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseProblemFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	var id int64
	switch {
	case f.random && len(positional) > 0:
		return fmt.Errorf("%w: --random takes no problem id", ErrInvalidArgs)
	case !f.random && len(positional) != 1:
		return fmt.Errorf("%w: expected one problem id (or --random)", ErrInvalidArgs)
	case !f.random:
		id, err = strconv.ParseInt(positional[0], 10, 64)
		if err != nil || id < 0 {
			return fmt.Errorf("%w: problem id must be a non-negative integer, got %q", ErrInvalidArgs, positional[0])
		}
	}
	if f.topic != "" && !f.random {
		return fmt.Errorf("%w: --topic only applies with --random", ErrInvalidArgs)
	}

	a, err := newApp(&f.common, env)
	if err != nil {
		return err
	}
	r, err := a.newRenderer()
	if err != nil {
		return err
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var p *store.Problem
	if f.random {
		p, err = st.Random(ctx, f.topic)
	} else {
		p, err = st.Get(ctx, id)
	}
	if err != nil {
		return err
	}

	rendered := renderProblem(ctx, r, p, f.field)
	logAttempts(a, problemLabel(p.ID), rendered.text)
	logAttempts(a, problemLabel(p.ID), rendered.answer)

	out := rendered.fragment(f.field)
	if out == "" {
		a.logger.Warn("problem has no content for field", "id", p.ID, "field", f.field)
		return nil
	}
	return writeOutput(f.output, out, env)
}

// renderedProblem holds the render results for one problem. A field that
// was not requested, or is NULL in the bank, has a nil HTML.
type renderedProblem struct {
	problem *store.Problem
	text    tex2html.Result
	answer  tex2html.Result
}

// renderProblem renders the fields of p selected by field.
func renderProblem(ctx context.Context, r *tex2html.Renderer, p *store.Problem, field string) renderedProblem {
	out := renderedProblem{problem: p}
	if field != fieldAnswer {
		out.text = r.RenderDetailed(ctx, p.Text)
	}
	if field != fieldText {
		out.answer = r.RenderDetailed(ctx, p.Answer)
	}
	return out
}

// fallback reports whether any rendered field fell back to plain text.
func (rp renderedProblem) fallback() bool {
	return rp.text.Fallback() || rp.answer.Fallback()
}

// fragment returns the HTML for field. A single field is returned as is;
// both fields are wrapped in classed divs.
func (rp renderedProblem) fragment(field string) string {
	switch field {
	case fieldText:
		return deref(rp.text.HTML)
	case fieldAnswer:
		return deref(rp.answer.HTML)
	}

	var b strings.Builder
	if rp.text.HTML != nil {
		fmt.Fprintf(&b, "<div class=\"problem-text\">\n%s\n</div>\n", strings.TrimSpace(*rp.text.HTML))
	}
	if rp.answer.HTML != nil {
		fmt.Fprintf(&b, "<div class=\"problem-answer\">\n%s\n</div>\n", strings.TrimSpace(*rp.answer.HTML))
	}
	return b.String()
}

// page returns a standalone article for the batch output.
func (rp renderedProblem) page() string {
	p := rp.problem

	var b strings.Builder
	fmt.Fprintf(&b, "<article class=\"problem\" id=\"problem-%d\">\n", p.ID)
	if p.Title != "" {
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(p.Title))
	}
	if p.Year != nil && *p.Year != "" {
		fmt.Fprintf(&b, "<p class=\"problem-year\">%s</p>\n", html.EscapeString(*p.Year))
	}
	if len(p.Topics) > 0 {
		fmt.Fprintf(&b, "<p class=\"problem-topics\">%s</p>\n", html.EscapeString(strings.Join(p.Topics, ", ")))
	}
	b.WriteString(rp.fragment(fieldBoth))
	b.WriteString("</article>\n")
	return b.String()
}

func problemLabel(id int64) string {
	return "problem " + strconv.FormatInt(id, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

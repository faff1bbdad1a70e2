package tex2html_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-tex2html"
)

// Example renders a short problem with the in-process converter only.
func Example() {
	r, err := tex2html.New(tex2html.WithoutPandoc())
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	html := r.RenderString(context.Background(), `\noindent Find $x^2$.`)
	fmt.Println(strings.Contains(html, "<msup"))
	// Output: true
}

// Example_fallback shows the plain-text block returned when every backend fails.
func Example_fallback() {
	failing := failingBackend{}
	r, err := tex2html.New(tex2html.WithBackends(failing))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	src := `if $a < b$ then \unknown`
	res := r.RenderDetailed(context.Background(), &src)
	fmt.Println(res.Backend)
	fmt.Println(*res.HTML)
	// Output:
	// fallback
	// <pre>if $a &lt; b$ then \unknown</pre>
}

// Example_nil shows that absent text stays absent.
func Example_nil() {
	r, _ := tex2html.New(tex2html.WithoutPandoc())
	fmt.Println(r.Render(context.Background(), nil) == nil)
	// Output: true
}

type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }

func (failingBackend) Convert(context.Context, string) (string, error) {
	return "", fmt.Errorf("not today")
}

// Package preview renders Markdown to an HTML fragment for the web form.
//
// The preview applies the same text preprocessing as a real conversion and
// maps the pandoc highlight style onto the closest chroma style, so what the
// browser shows is close to what pandoc will produce. It does not run pandoc.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/alnah/go-mdconv/internal/preprocess"
)

// ErrRender indicates HTML rendering failed.
var ErrRender = errors.New("preview rendering failed")

// chromaStyles maps pandoc highlight styles to chroma styles. pandoc's
// pygments and tango exist in chroma; the others get a look-alike.
var chromaStyles = map[string]string{
	"pygments":   "pygments",
	"tango":      "tango",
	"espresso":   "monokai",
	"zenburn":    "native",
	"kate":       "vs",
	"monochrome": "bw",
	"breezedark": "dracula",
	"haddock":    "friendly",
}

// defaultChromaStyle is used for empty or unknown highlight styles.
const defaultChromaStyle = "pygments"

// ChromaStyle returns the chroma style name for a pandoc highlight style.
func ChromaStyle(highlightStyle string) string {
	if s, ok := chromaStyles[highlightStyle]; ok {
		return s
	}
	return defaultChromaStyle
}

// Options selects the preprocessing and highlighting of one preview.
type Options struct {
	HighlightStyle string
	NumberSections bool
	TOC            bool
}

// Result is a rendered preview.
type Result struct {
	Title string // Set when TOC moved the first heading into the title
	HTML  string // Body fragment, without the title
	CSS   string // Code highlighting rules for HTML
}

// Fragment returns the style block, the title and the body as one HTML
// fragment ready to insert into a page.
func (r *Result) Fragment() string {
	var b strings.Builder
	if r.CSS != "" {
		b.WriteString("<style>")
		b.WriteString(r.CSS)
		b.WriteString("</style>\n")
	}
	if r.Title != "" {
		b.WriteString(`<h1 class="title">`)
		b.WriteString(html.EscapeString(r.Title))
		b.WriteString("</h1>\n")
	}
	b.WriteString(r.HTML)
	return b.String()
}

// Renderer converts Markdown with goldmark. One goldmark instance and one
// stylesheet are built per chroma style on first use.
// A Renderer is safe for concurrent use.
type Renderer struct {
	mu      sync.Mutex
	engines map[string]goldmark.Markdown
	css     map[string]string
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{
		engines: make(map[string]goldmark.Markdown),
		css:     make(map[string]string),
	}
}

// Render preprocesses markdown like a conversion would and renders it.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (r *Renderer) Render(ctx context.Context, markdown string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := preprocess.FixBulletSpacing(preprocess.NormalizeLineEndings(markdown))
	if opts.NumberSections {
		content = preprocess.StripHeadingNumbers(content)
	}
	var title string
	if opts.TOC {
		if t, body, ok := preprocess.ExtractTitle(content); ok {
			title, content = t, body
		}
	}

	style := ChromaStyle(opts.HighlightStyle)
	md, css, err := r.engine(style)
	if err != nil {
		return nil, err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return &Result{Title: title, HTML: res.html, CSS: css}, nil
	}
}

// engine returns the cached goldmark instance and stylesheet for style.
func (r *Renderer) engine(style string) (goldmark.Markdown, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if md, ok := r.engines[style]; ok {
		return md, r.css[style], nil
	}

	css, err := StyleSheet(style)
	if err != nil {
		return nil, "", err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // pandoc supports [^1] footnotes too
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		// Raw HTML is not rendered: previews display untrusted uploads.
	)

	r.engines[style] = md
	r.css[style] = css
	return md, css, nil
}

// StyleSheet returns the CSS rules for code highlighted with classes in
// the given chroma style. Unknown names use chroma's fallback style.
func StyleSheet(style string) (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return "", fmt.Errorf("%w: stylesheet for %q: %v", ErrRender, style, err)
	}
	return buf.String(), nil
}

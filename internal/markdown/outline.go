package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-content-sync/content"
)

// OutlineExtractor walks the Markdown AST and collects the document's
// heading structure. It is an explicitly constructed dependency, not a
// package-level singleton, so callers control its lifetime.
type OutlineExtractor struct {
	engine goldmark.Markdown
}

// NewOutlineExtractor builds an extractor backed by a GFM-configured
// goldmark engine. The extractor is stateless and safe for concurrent use.
func NewOutlineExtractor() *OutlineExtractor {
	return &OutlineExtractor{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// Extract returns one entry per heading level 1 through 6, in document
// order, each with its display text and a normalized anchor slug.
func (e *OutlineExtractor) Extract(source []byte) []content.Heading {
	doc := e.engine.Parser().Parse(text.NewReader(source))

	var outline []content.Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		display := string(heading.Text(source))
		outline = append(outline, content.Heading{
			Level: heading.Level,
			Text:  display,
			Slug:  content.Slugify(display),
		})
		return ast.WalkSkipChildren, nil
	})

	return outline
}

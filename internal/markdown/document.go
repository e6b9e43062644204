package markdown

import (
	"path"
	"strings"
	"unicode"

	"github.com/goliatone/go-content-sync/content"
)

// ParserConfig carries the parser's collaborators. The outline extractor is
// handed in at construction instead of living in package-level state.
type ParserConfig struct {
	Outline *OutlineExtractor
	// ContentRoot is the repository directory slugs are derived relative
	// to (default: contents).
	ContentRoot string
}

// Parser turns raw article files into content documents: front-matter split
// and validation, slug resolution, and derived reading metrics.
type Parser struct {
	outline *OutlineExtractor
	root    string
}

// NewParser builds a Parser from the supplied configuration.
func NewParser(cfg ParserConfig) *Parser {
	outline := cfg.Outline
	if outline == nil {
		outline = NewOutlineExtractor()
	}
	return &Parser{outline: outline, root: cfg.ContentRoot}
}

// ParseDocument parses one article file. An explicit front-matter slug wins
// over the path-derived one; title and description fall back to
// filename-derived defaults when the front-matter leaves them empty.
func (p *Parser) ParseDocument(sourcePath string, raw []byte) (*content.Document, error) {
	fm, body, err := ParseFrontMatter(sourcePath, raw)
	if err != nil {
		return nil, err
	}

	slug := content.DeriveSlug(p.root, sourcePath)
	if fm.Slug != "" {
		if normalized, err := content.NormalizeSlug(fm.Slug); err == nil && normalized != "" {
			slug = normalized
		}
	}

	title := fm.Title
	if title == "" {
		title = fallbackTitle(sourcePath)
	}

	words := CountWords(string(body))

	doc := &content.Document{
		SourcePath:  sourcePath,
		Slug:        slug,
		Title:       title,
		Description: fm.Description,
		Body:        string(body),
		Metadata:    fm.Raw,
		Status:      fm.Status,
		AccessLevel: fm.AccessLevel,
		Tags:        fm.Tags,
		Date:        fm.Date,
		Featured:    fm.Featured,
		WordCount:   words,
		ReadingTime: ReadingTime(words),
		Headings:    p.outline.Extract(body),
	}
	return doc, nil
}

// fallbackTitle derives a display title from the file name: extension
// stripped, separators spaced, words capitalized.
func fallbackTitle(sourcePath string) string {
	name := path.Base(sourcePath)
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" || name == "." || name == "/" {
		return "Untitled"
	}

	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")

	fields := strings.Fields(name)
	for i, field := range fields {
		runes := []rune(field)
		runes[0] = unicode.ToUpper(runes[0])
		fields[i] = string(runes)
	}
	if len(fields) == 0 {
		return "Untitled"
	}
	return strings.Join(fields, " ")
}

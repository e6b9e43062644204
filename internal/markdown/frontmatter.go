package markdown

import (
	"bytes"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-content-sync/content"
)

// frontMatterEnvelope captures the recognized front-matter fields; everything
// else flows through the inline map untouched. The metadata contract is open,
// not closed.
type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Slug        string         `yaml:"slug"`
	Status      string         `yaml:"status"`
	AccessLevel string         `yaml:"accessLevel"`
	Tags        []string       `yaml:"tags"`
	Date        any            `yaml:"date"`
	Featured    bool           `yaml:"featured"`
	Custom      map[string]any `yaml:",inline"`
}

// FrontMatter is the validated front-matter of one article file. Raw holds
// the full serialized form, recognized and unrecognized fields alike.
type FrontMatter struct {
	Title       string
	Description string
	Slug        string
	Status      content.Status
	AccessLevel content.AccessLevel
	Tags        []string
	Date        *time.Time
	Featured    bool
	Raw         map[string]any
}

// ParseFrontMatter splits source into a validated metadata block and the
// Markdown body without delimiters. A file with no front-matter fence is
// valid and yields empty metadata; a malformed fence fails with ParseError.
func ParseFrontMatter(path string, source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return FrontMatter{}, nil, &content.ParseError{Path: path, Err: err}
	}

	return envelopeToFrontMatter(meta), body, nil
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+8)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Description != "" {
		raw["description"] = env.Description
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Status != "" {
		raw["status"] = env.Status
	}
	if env.AccessLevel != "" {
		raw["accessLevel"] = env.AccessLevel
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Date != nil {
		raw["date"] = env.Date
	}
	if env.Featured {
		raw["featured"] = env.Featured
	}

	fm := FrontMatter{
		Title:       strings.TrimSpace(env.Title),
		Description: strings.TrimSpace(env.Description),
		Slug:        strings.TrimSpace(env.Slug),
		Tags:        append([]string(nil), env.Tags...),
		Date:        coerceDate(env.Date),
		Featured:    env.Featured,
		Raw:         raw,
	}

	// Values outside the enum are dropped from the validated result, never
	// fatal; the raw map still carries what the author wrote.
	if content.ValidStatus(env.Status) {
		fm.Status = content.Status(env.Status)
	}
	if content.ValidAccessLevel(env.AccessLevel) {
		fm.AccessLevel = content.AccessLevel(env.AccessLevel)
	}

	return fm
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func coerceDate(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return &parsed
			}
		}
		return nil
	default:
		return nil
	}
}

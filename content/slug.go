package content

import (
	"path"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
)

// SlugNormalizer exposes the go-slug normalizer interface to callers that
// need custom normalization rules.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the normalizer the sync pipeline uses.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules. Used for
// explicit front-matter slugs before they override the path-derived value.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether the value already satisfies the default slug
// rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// DeriveSlug maps a repository file path to its article slug: the content
// root is dropped, the extension stripped, a trailing /index collapsed, and
// directory separators preserved. An empty root means "contents"; an empty
// result becomes "index". The function is pure; the same inputs always yield
// the same slug.
func DeriveSlug(root, filePath string) string {
	root = strings.Trim(strings.TrimSpace(root), "/")
	if root == "" {
		root = "contents"
	}

	p := strings.TrimPrefix(path.Clean(strings.TrimSpace(filePath)), "/")
	if rest, ok := strings.CutPrefix(p, root+"/"); ok {
		p = rest
	} else if p == root {
		p = ""
	}

	ext := path.Ext(p)
	p = strings.TrimSuffix(p, ext)
	p = strings.TrimSuffix(p, "/index")
	p = strings.Trim(p, "/")

	if p == "" || p == "index" || p == "." {
		return "index"
	}
	return p
}

// Slugify converts free text into a URL anchor: lowercased, characters that
// are neither alphanumeric nor spaces stripped, whitespace runs collapsed to
// single hyphens, edge hyphens trimmed.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Trim(strings.Join(strings.Fields(b.String()), "-"), "-")
}

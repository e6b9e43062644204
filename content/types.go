package content

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status enumerates article lifecycle states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ValidStatus reports whether the value is a recognized status.
func ValidStatus(value string) bool {
	switch Status(value) {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// AccessLevel enumerates article visibility tiers.
type AccessLevel string

const (
	AccessPublic  AccessLevel = "public"
	AccessPrivate AccessLevel = "private"
	AccessPremium AccessLevel = "premium"
)

// ValidAccessLevel reports whether the value is a recognized access level.
func ValidAccessLevel(value string) bool {
	switch AccessLevel(value) {
	case AccessPublic, AccessPrivate, AccessPremium:
		return true
	}
	return false
}

// Heading is a single entry in an article's heading outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

// Article is the canonical stored record for a synced article. Slug is the
// sole upsert key; UpdatedAt is refreshed on every upsert while CreatedAt is
// never overwritten after insert.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID          uuid.UUID      `bun:",pk,type:uuid"                 json:"id"`
	Slug        string         `bun:"slug,notnull,unique"           json:"slug"`
	Title       string         `bun:"title,notnull"                 json:"title"`
	Description string         `bun:"description"                   json:"description"`
	Body        string         `bun:"body,notnull"                  json:"body"`
	Metadata    map[string]any `bun:"metadata,type:jsonb"           json:"metadata,omitempty"`
	Status      Status         `bun:"status,notnull,default:'draft'" json:"status"`
	AccessLevel AccessLevel    `bun:"access_level,notnull,default:'public'" json:"access_level"`
	SourcePath  string         `bun:"source_path,notnull"           json:"source_path"`
	SourceSHA   string         `bun:"source_sha,notnull"            json:"source_sha"`
	WordCount   int            `bun:"word_count,notnull,default:0"  json:"word_count"`
	ReadingTime int            `bun:"reading_time,notnull,default:0" json:"reading_time"`
	Headings    []Heading      `bun:"headings,type:jsonb"           json:"headings,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Setting is a keyed JSON settings payload. The value is opaque beyond JSON
// round-trip validity; objects, arrays, and scalars are all stored verbatim.
type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	ID         uuid.UUID       `bun:",pk,type:uuid"       json:"id"`
	Key        string          `bun:"key,notnull,unique"  json:"key"`
	Value      json.RawMessage `bun:"value,type:jsonb"    json:"value"`
	SourcePath string          `bun:"source_path,notnull" json:"source_path"`
	SourceSHA  string          `bun:"source_sha,notnull"  json:"source_sha"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Document is a parsed article file: validated front-matter plus the body
// and derived metrics, ready to be mapped onto an Article record.
type Document struct {
	SourcePath  string
	Slug        string
	Title       string
	Description string
	Body        string
	Metadata    map[string]any
	Status      Status
	AccessLevel AccessLevel
	Tags        []string
	Date        *time.Time
	Featured    bool
	WordCount   int
	ReadingTime int
	Headings    []Heading
}

// SettingDocument is a parsed settings file keyed by its filename. Value
// holds the raw JSON exactly as it appeared in the repository.
type SettingDocument struct {
	SourcePath string
	Key        string
	Value      json.RawMessage
}

// Fingerprints maps source paths to the content SHA stored at last sync.
// The change detector compares these against remote listings in full-scan
// mode.
type Fingerprints map[string]string

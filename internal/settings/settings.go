// Package settings parses keyed JSON settings files. The key is the file
// name minus its extension; the value is opaque beyond JSON validity and an
// optional per-key schema check.
package settings

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-content-sync/content"
)

// ParserConfig configures the settings parser. Schemas maps a settings key
// to a JSON Schema document; keys without a schema skip validation.
type ParserConfig struct {
	Schemas map[string]string
}

// Parser decodes settings files and validates them against registered
// schemas.
type Parser struct {
	schemas map[string]*jsonschema.Schema
}

// NewParser compiles the configured schemas up front so malformed schema
// documents fail at construction, not mid-sync.
func NewParser(cfg ParserConfig) (*Parser, error) {
	compiled := make(map[string]*jsonschema.Schema, len(cfg.Schemas))
	for key, schemaJSON := range cfg.Schemas {
		schema, err := jsonschema.CompileString(key+".schema.json", schemaJSON)
		if err != nil {
			return nil, fmt.Errorf("settings: compile schema for %q: %w", key, err)
		}
		compiled[key] = schema
	}
	return &Parser{schemas: compiled}, nil
}

// KeyFromPath derives the settings key from a file path: the base name minus
// its extension.
func KeyFromPath(sourcePath string) string {
	name := path.Base(strings.TrimSpace(sourcePath))
	return strings.TrimSuffix(name, path.Ext(name))
}

// Parse decodes one settings file. Invalid JSON or a schema violation is a
// ParseError, fatal for that single item only.
func (p *Parser) Parse(sourcePath string, raw []byte) (*content.SettingDocument, error) {
	key := KeyFromPath(sourcePath)
	if key == "" {
		return nil, &content.ParseError{Path: sourcePath, Err: content.ErrKeyRequired}
	}

	// Any valid JSON value passes: objects, arrays, and bare scalars alike.
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &content.ParseError{Path: sourcePath, Err: err}
	}

	if schema, ok := p.schemas[key]; ok {
		if err := schema.Validate(decoded); err != nil {
			return nil, &content.ParseError{Path: sourcePath, Err: err}
		}
	}

	return &content.SettingDocument{
		SourcePath: sourcePath,
		Key:        key,
		Value:      json.RawMessage(raw),
	}, nil
}

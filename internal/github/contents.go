package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-content-sync/content"
)

const listPageSize = 100

// Entry describes one item in a repository directory listing. SHA is the
// blob fingerprint used for change detection.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
}

// IsDir reports whether the entry is a subdirectory.
func (e Entry) IsDir() bool { return e.Type == "dir" }

type contentEnvelope struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// ListDirectory returns the entries directly under dir, in API order,
// following pagination until the listing is complete. Directories are not
// recursed into; callers walk the tree themselves.
func (c *Client) ListDirectory(ctx context.Context, dir string) ([]Entry, error) {
	reqPath := c.contentsPath(dir)

	var entries []Entry
	page := 1
	for {
		query := url.Values{}
		query.Set("per_page", fmt.Sprint(listPageSize))
		query.Set("page", fmt.Sprint(page))
		if c.cfg.Ref != "" {
			query.Set("ref", c.cfg.Ref)
		}

		resp, err := c.get(ctx, reqPath, query)
		if err != nil {
			return nil, err
		}

		var pageEntries []Entry
		if err := resp.JSON(&pageEntries); err != nil {
			// A single object means the path is a file, not a directory.
			var single contentEnvelope
			if err := resp.JSON(&single); err == nil && single.Type == "file" {
				return []Entry{{Name: single.Name, Path: single.Path, Type: single.Type, SHA: single.SHA}}, nil
			}
			return nil, fmt.Errorf("github: decode listing for %s: %w", dir, err)
		}

		entries = append(entries, pageEntries...)
		if len(pageEntries) < listPageSize {
			return entries, nil
		}
		page++
	}
}

// File is a fetched repository file: decoded content plus the blob SHA used
// as the sync fingerprint.
type File struct {
	Path    string
	SHA     string
	Content string
}

// FetchFile retrieves and decodes a single file. The contents API wraps
// payloads in a base64 envelope; "none" encoding falls through as-is.
func (c *Client) FetchFile(ctx context.Context, path string) (*File, error) {
	query := url.Values{}
	if c.cfg.Ref != "" {
		query.Set("ref", c.cfg.Ref)
	}

	resp, err := c.get(ctx, c.contentsPath(path), query)
	if err != nil {
		return nil, err
	}

	var envelope contentEnvelope
	if err := resp.JSON(&envelope); err != nil {
		return nil, fmt.Errorf("github: decode content for %s: %w", path, err)
	}
	if envelope.Type != "" && envelope.Type != "file" {
		return nil, &content.NotFoundError{Resource: "github file", Key: path}
	}

	file := &File{Path: envelope.Path, SHA: envelope.SHA}
	if file.Path == "" {
		file.Path = path
	}

	switch envelope.Encoding {
	case "", "none":
		file.Content = envelope.Content
	case "base64":
		// The API embeds newlines in the base64 payload.
		raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(envelope.Content, "\n", ""))
		if err != nil {
			return nil, fmt.Errorf("github: base64 decode %s: %w", path, err)
		}
		file.Content = string(raw)
	default:
		return nil, fmt.Errorf("github: unsupported content encoding %q for %s", envelope.Encoding, path)
	}
	return file, nil
}

func (c *Client) contentsPath(p string) string {
	return fmt.Sprintf("/repos/%s/%s/contents/%s", c.cfg.Owner, c.cfg.Repo, strings.TrimPrefix(p, "/"))
}

package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-content-sync/content"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(ClientConfig{
		BaseURL:     server.URL,
		Token:       "test-token",
		Owner:       "acme",
		Repo:        "site",
		Ref:         "main",
		RateLimit:   1000,
		RateBurst:   1000,
		BackoffBase: time.Millisecond,
		ResetBuffer: time.Millisecond,
	})
	return client, server
}

func TestListDirectory(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/site/contents/contents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("expected ref=main, got %q", got)
		}
		json.NewEncoder(w).Encode([]Entry{
			{Name: "about.mdx", Path: "contents/about.mdx", Type: "file", SHA: "abc"},
			{Name: "blog", Path: "contents/blog", Type: "dir", SHA: "def"},
		})
	}))

	entries, err := client.ListDirectory(context.Background(), "contents")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].SHA != "abc" || entries[1].IsDir() != true {
		t.Fatalf("unexpected entries: %#v", entries)
	}
}

func TestListDirectoryPaginates(t *testing.T) {
	var pages atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages.Add(1)
		if page == "1" {
			full := make([]Entry, listPageSize)
			for i := range full {
				full[i] = Entry{Name: fmt.Sprintf("f%d.mdx", i), Type: "file"}
			}
			json.NewEncoder(w).Encode(full)
			return
		}
		json.NewEncoder(w).Encode([]Entry{{Name: "last.mdx", Type: "file"}})
	}))

	entries, err := client.ListDirectory(context.Background(), "contents")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}
	if len(entries) != listPageSize+1 {
		t.Fatalf("expected %d entries, got %d", listPageSize+1, len(entries))
	}
	if pages.Load() != 2 {
		t.Fatalf("expected 2 page fetches, got %d", pages.Load())
	}
}

func TestFetchFileDecodesBase64(t *testing.T) {
	raw := "---\ntitle: Home\n---\n# Hello\n"
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"name":     "index.mdx",
			"path":     "contents/index.mdx",
			"type":     "file",
			"sha":      "abc",
			"encoding": "base64",
			// The API splits base64 payloads with embedded newlines.
			"content": base64.StdEncoding.EncodeToString([]byte(raw))[:8] + "\n" + base64.StdEncoding.EncodeToString([]byte(raw))[8:],
		})
	}))

	got, err := client.FetchFile(context.Background(), "contents/index.mdx")
	if err != nil {
		t.Fatalf("FetchFile: %v", err)
	}
	if got.Content != raw {
		t.Fatalf("decoded content mismatch: %q", got.Content)
	}
	if got.SHA != "abc" {
		t.Fatalf("expected blob sha abc, got %q", got.SHA)
	}
}

func TestFetchFileNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchFile(context.Background(), "contents/missing.mdx")
	var nf *content.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAuthErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.FetchFile(context.Background(), "contents/index.mdx")
	var authErr *content.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("auth failures must not retry, got %d calls", calls.Load())
	}
}

func TestServerErrorRetriedWithBackoff(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode([]Entry{{Name: "a.mdx", Type: "file"}})
	}))

	entries, err := client.ListDirectory(context.Background(), "contents")
	if err != nil {
		t.Fatalf("expected recovery after retries: %v", err)
	}
	if len(entries) != 1 || calls.Load() != 3 {
		t.Fatalf("unexpected retry behavior: %d calls, %d entries", calls.Load(), len(entries))
	}
}

func TestRateLimitHonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode([]Entry{{Name: "a.mdx", Type: "file"}})
	}))

	if _, err := client.ListDirectory(context.Background(), "contents"); err != nil {
		t.Fatalf("expected retry after rate limit: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestRateLimitExhaustionSurfaces(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.ListDirectory(context.Background(), "contents")
	var limited *content.RateLimitedError
	if !errors.As(err, &limited) {
		t.Fatalf("expected RateLimitedError after exhaustion, got %v", err)
	}
}

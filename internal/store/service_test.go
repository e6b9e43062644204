package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/store"
	"github.com/goliatone/go-content-sync/pkg/testsupport"
)

func newBunDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	if err := store.EnsureSchema(context.Background(), bunDB); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return bunDB
}

func newService(t *testing.T, clock func() time.Time) *store.Service {
	t.Helper()
	db := newBunDB(t)
	return store.NewService(store.ServiceConfig{
		Articles: store.NewBunArticleRepository(db),
		Settings: store.NewBunSettingRepository(db),
		Clock:    clock,
	})
}

func TestUpsertArticleInsertsThenUpdates(t *testing.T) {
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	calls := 0
	svc := newService(t, func() time.Time {
		now := times[calls%len(times)]
		calls++
		return now
	})

	first, err := svc.UpsertArticle(ctx, &content.Article{
		Slug:       "about",
		Title:      "About",
		Body:       "# About\n",
		SourcePath: "contents/about.mdx",
		SourceSHA:  "sha-1",
		Status:     content.StatusPublished,
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.CreatedAt != times[0] || first.UpdatedAt != times[0] {
		t.Fatalf("insert timestamps wrong: %v / %v", first.CreatedAt, first.UpdatedAt)
	}

	second, err := svc.UpsertArticle(ctx, &content.Article{
		Slug:       "about",
		Title:      "About v2",
		Body:       "# About v2\n",
		SourcePath: "contents/about.mdx",
		SourceSHA:  "sha-2",
		Status:     content.StatusPublished,
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("upsert must target the same row: %s != %s", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(times[0]) {
		t.Fatalf("CreatedAt must survive updates, got %v", second.CreatedAt)
	}
	if !second.UpdatedAt.Equal(times[1]) {
		t.Fatalf("UpdatedAt must reflect the second application, got %v", second.UpdatedAt)
	}
	if second.Title != "About v2" || second.SourceSHA != "sha-2" {
		t.Fatalf("syncable fields not overwritten: %#v", second)
	}

	stored, err := svc.GetArticle(ctx, "about")
	if err != nil {
		t.Fatalf("get article: %v", err)
	}
	if stored.Title != "About v2" {
		t.Fatalf("store returned stale record: %q", stored.Title)
	}
}

func TestUpsertArticleIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	record := func() *content.Article {
		return &content.Article{
			Slug:       "blog/post",
			Title:      "Post",
			Body:       "text",
			SourcePath: "contents/blog/post.mdx",
			SourceSHA:  "sha",
		}
	}

	if _, err := svc.UpsertArticle(ctx, record()); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.UpsertArticle(ctx, record()); err != nil {
		t.Fatalf("second: %v", err)
	}

	prints, err := svc.Fingerprints(ctx)
	if err != nil {
		t.Fatalf("fingerprints: %v", err)
	}
	if len(prints) != 1 || prints["contents/blog/post.mdx"] != "sha" {
		t.Fatalf("expected a single fingerprint, got %#v", prints)
	}
}

func TestUpsertSettingRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	if _, err := svc.UpsertSetting(ctx, &content.Setting{
		Key:        "site",
		Value:      json.RawMessage(`{"name":"X"}`),
		SourcePath: "settings/site.json",
		SourceSHA:  "sha",
	}); err != nil {
		t.Fatalf("upsert setting: %v", err)
	}

	stored, err := svc.GetSetting(ctx, "site")
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	var value map[string]any
	if err := json.Unmarshal(stored.Value, &value); err != nil {
		t.Fatalf("decode stored value: %v", err)
	}
	if value["name"] != "X" {
		t.Fatalf("setting value did not round-trip: %s", stored.Value)
	}
}

func TestUpsertSettingNonObjectValue(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	if _, err := svc.UpsertSetting(ctx, &content.Setting{
		Key:        "nav",
		Value:      json.RawMessage(`["home","about"]`),
		SourcePath: "settings/nav.json",
		SourceSHA:  "sha",
	}); err != nil {
		t.Fatalf("upsert setting: %v", err)
	}

	stored, err := svc.GetSetting(ctx, "nav")
	if err != nil {
		t.Fatalf("get setting: %v", err)
	}
	var items []string
	if err := json.Unmarshal(stored.Value, &items); err != nil {
		t.Fatalf("decode stored value: %v", err)
	}
	if len(items) != 2 || items[0] != "home" {
		t.Fatalf("array value did not round-trip: %s", stored.Value)
	}
}

func TestCreateConvergesOnUniqueConflict(t *testing.T) {
	ctx := context.Background()
	db := newBunDB(t)
	articles := store.NewBunArticleRepository(db)

	record := func(title, sha string) *content.Article {
		return &content.Article{
			Slug:       "about",
			Title:      title,
			Body:       "body",
			SourcePath: "contents/about.mdx",
			SourceSHA:  sha,
			Status:     content.StatusPublished,
		}
	}

	if _, err := articles.Create(ctx, record("About", "sha-1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// A second writer that lost the lookup race inserts the same slug; that
	// must land as an overwrite, not a constraint failure.
	if _, err := articles.Create(ctx, record("About v2", "sha-2")); err != nil {
		t.Fatalf("conflicting create: %v", err)
	}

	stored, err := articles.GetBySlug(ctx, "about")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "About v2" || stored.SourceSHA != "sha-2" {
		t.Fatalf("conflicting create did not win: %+v", stored)
	}

	settings := store.NewBunSettingRepository(db)
	seed := func(raw string) *content.Setting {
		return &content.Setting{
			Key:        "site",
			Value:      json.RawMessage(raw),
			SourcePath: "settings/site.json",
			SourceSHA:  "sha",
		}
	}
	if _, err := settings.Create(ctx, seed(`{"v":1}`)); err != nil {
		t.Fatalf("first setting create: %v", err)
	}
	if _, err := settings.Create(ctx, seed(`{"v":2}`)); err != nil {
		t.Fatalf("conflicting setting create: %v", err)
	}
}

func TestUpsertRequiresKey(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	if _, err := svc.UpsertArticle(ctx, &content.Article{}); !errors.Is(err, content.ErrSlugRequired) {
		t.Fatalf("expected ErrSlugRequired, got %v", err)
	}
	if _, err := svc.UpsertSetting(ctx, &content.Setting{}); !errors.Is(err, content.ErrKeyRequired) {
		t.Fatalf("expected ErrKeyRequired, got %v", err)
	}
}

func TestUpsertRejectsInvalidEnums(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	_, err := svc.UpsertArticle(ctx, &content.Article{Slug: "a", Status: "scheduled"})
	if !errors.Is(err, content.ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}

	_, err = svc.UpsertArticle(ctx, &content.Article{Slug: "a", Status: content.StatusDraft, AccessLevel: "vip"})
	if !errors.Is(err, content.ErrAccessInvalid) {
		t.Fatalf("expected ErrAccessInvalid, got %v", err)
	}
}

func TestGetArticleNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	_, err := svc.GetArticle(ctx, "missing")
	if !content.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

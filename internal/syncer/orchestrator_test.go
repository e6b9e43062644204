package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/github"
	"github.com/goliatone/go-content-sync/internal/store"
)

type fakeFetcher struct {
	files map[string]*github.File
	calls atomic.Int32
}

func (f *fakeFetcher) FetchFile(_ context.Context, path string) (*github.File, error) {
	f.calls.Add(1)
	file, ok := f.files[path]
	if !ok {
		return nil, &content.NotFoundError{Resource: "github file", Key: path}
	}
	return file, nil
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	fetcher      *fakeFetcher
	articles     *store.MemoryArticleRepository
	settings     *store.MemorySettingRepository
	service      *store.Service
}

func newFixture(t *testing.T, lister Lister, files map[string]*github.File) *orchestratorFixture {
	t.Helper()

	articles := store.NewMemoryArticleRepository()
	settings := store.NewMemorySettingRepository()
	service := store.NewService(store.ServiceConfig{Articles: articles, Settings: settings})

	fetcher := &fakeFetcher{files: files}
	detector := NewDetector(DetectorConfig{Lister: lister, Fingerprints: service})

	return &orchestratorFixture{
		orchestrator: NewOrchestrator(OrchestratorConfig{
			Detector: detector,
			Fetcher:  fetcher,
			Store:    service,
			Workers:  2,
		}),
		fetcher:  fetcher,
		articles: articles,
		settings: settings,
		service:  service,
	}
}

func mdxFile(path, body string) *github.File {
	return &github.File{Path: path, SHA: "sha-" + path, Content: body}
}

func TestRunProcessesPushEvent(t *testing.T) {
	fx := newFixture(t, nil, map[string]*github.File{
		"contents/index.mdx":      mdxFile("contents/index.mdx", "---\ntitle: Home\n---\n# Hello\n"),
		"contents/blog/first.mdx": mdxFile("contents/blog/first.mdx", "First post body.\n"),
		"settings/site.json":      mdxFile("settings/site.json", `{"name":"Example"}`),
	})

	trigger := pushTrigger(Commit{Added: []string{
		"contents/index.mdx",
		"contents/blog/first.mdx",
		"settings/site.json",
	}})

	summary, err := fx.orchestrator.Run(context.Background(), trigger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 3 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	article, err := fx.service.GetArticle(context.Background(), "index")
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if article.Title != "Home" || article.SourceSHA != "sha-contents/index.mdx" {
		t.Fatalf("unexpected article: %+v", article)
	}
	if article.Status != content.StatusPublished {
		t.Fatalf("bulk sync should publish by default, got %s", article.Status)
	}

	setting, err := fx.service.GetSetting(context.Background(), "site")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	var value map[string]any
	if err := json.Unmarshal(setting.Value, &value); err != nil {
		t.Fatalf("decode setting value: %v", err)
	}
	if value["name"] != "Example" {
		t.Fatalf("unexpected setting value: %s", setting.Value)
	}
}

func TestRunIsolatesItemFailures(t *testing.T) {
	fx := newFixture(t, nil, map[string]*github.File{
		"contents/good.mdx":   mdxFile("contents/good.mdx", "---\ntitle: Good\n---\nbody\n"),
		"contents/broken.mdx": mdxFile("contents/broken.mdx", "---\ntitle: [unclosed\n---\nbody\n"),
		"contents/other.mdx":  mdxFile("contents/other.mdx", "plain body\n"),
	})

	trigger := pushTrigger(Commit{Added: []string{
		"contents/good.mdx",
		"contents/broken.mdx",
		"contents/other.mdx",
	}})

	summary, err := fx.orchestrator.Run(context.Background(), trigger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Path != "contents/broken.mdx" {
		t.Fatalf("unexpected errors: %+v", summary.Errors)
	}
	if fx.articles.Len() != 2 {
		t.Fatalf("expected 2 stored articles, got %d", fx.articles.Len())
	}
}

func TestRunSkipsOffBranchPush(t *testing.T) {
	fx := newFixture(t, nil, nil)

	trigger := Trigger{
		Kind: TriggerPush,
		Push: &PushInfo{Ref: "refs/heads/feature", Commits: []Commit{
			{Added: []string{"contents/index.mdx"}},
		}},
	}

	summary, err := fx.orchestrator.Run(context.Background(), trigger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 0 {
		t.Fatalf("off-branch push must be a no-op, got %+v", summary)
	}
	if fx.fetcher.calls.Load() != 0 {
		t.Fatalf("off-branch push must not touch the network, got %d fetches", fx.fetcher.calls.Load())
	}
}

func TestRunSkipsRemovedFiles(t *testing.T) {
	fx := newFixture(t, nil, nil)

	trigger := pushTrigger(Commit{Removed: []string{"contents/old.mdx"}})

	summary, err := fx.orchestrator.Run(context.Background(), trigger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Failed != 0 {
		t.Fatalf("removal should be a logged skip, got %+v", summary)
	}
	if fx.fetcher.calls.Load() != 0 {
		t.Fatalf("removals must not be fetched, got %d fetches", fx.fetcher.calls.Load())
	}
}

func TestRunSkipsVanishedFiles(t *testing.T) {
	// Listed in the event but gone by fetch time.
	fx := newFixture(t, nil, map[string]*github.File{})

	trigger := pushTrigger(Commit{Added: []string{"contents/gone.mdx"}})

	summary, err := fx.orchestrator.Run(context.Background(), trigger)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Failed != 0 {
		t.Fatalf("vanished file should be a logged skip, got %+v", summary)
	}
}

func TestRunAbortsOnUnavailableStore(t *testing.T) {
	files := map[string]*github.File{}
	paths := []string{}
	for _, name := range []string{"a", "b", "c", "d"} {
		p := "contents/" + name + ".mdx"
		files[p] = mdxFile(p, "body\n")
		paths = append(paths, p)
	}

	fx := newFixture(t, nil, files)
	fx.articles.FailWith(&content.StoreError{Op: "create", Err: errors.New("database is closed"), Unavailable: true})

	summary, err := fx.orchestrator.Run(context.Background(), pushTrigger(Commit{Added: paths}))
	if err == nil {
		t.Fatal("expected an error when the store is unavailable")
	}
	if !content.IsStoreUnavailable(err) {
		t.Fatalf("expected store-unavailable error, got %v", err)
	}
	if summary.Failed == 0 {
		t.Fatalf("summary should record the failure, got %+v", summary)
	}
	if summary.Processed == len(paths) && summary.Failed != len(paths) {
		t.Fatalf("remaining items should have been cancelled or failed, got %+v", summary)
	}
}

func TestRunManualTriggerFullScans(t *testing.T) {
	lister := &fakeLister{dirs: map[string][]github.Entry{
		"contents": {
			{Name: "index.mdx", Path: "contents/index.mdx", Type: "file", SHA: "v1"},
		},
		"settings": {
			{Name: "site.json", Path: "settings/site.json", Type: "file", SHA: "v1"},
		},
	}}
	fx := newFixture(t, lister, map[string]*github.File{
		"contents/index.mdx": {Path: "contents/index.mdx", SHA: "v1", Content: "---\ntitle: Home\n---\n# Hello\n"},
		"settings/site.json": {Path: "settings/site.json", SHA: "v1", Content: `{"name":"Example"}`},
	})

	manual := Trigger{Kind: TriggerManual}

	summary, err := fx.orchestrator.Run(context.Background(), manual)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// Second scan sees matching fingerprints and does nothing.
	again, err := fx.orchestrator.Run(context.Background(), manual)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if again.Processed != 0 {
		t.Fatalf("unchanged tree should be a no-op, got %+v", again)
	}
	if fx.fetcher.calls.Load() != 2 {
		t.Fatalf("expected no additional fetches on second scan, got %d", fx.fetcher.calls.Load())
	}
}

func TestRunPingIsNoOp(t *testing.T) {
	fx := newFixture(t, nil, nil)

	summary, err := fx.orchestrator.Run(context.Background(), Trigger{Kind: TriggerPing})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Processed != 0 {
		t.Fatalf("ping must be acknowledged without work, got %+v", summary)
	}
}

package syncer

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/github"
	"github.com/goliatone/go-content-sync/internal/logging"
	"github.com/goliatone/go-content-sync/internal/markdown"
	"github.com/goliatone/go-content-sync/internal/settings"
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

const defaultWorkers = 4

// Fetcher is the remote file retrieval capability the orchestrator needs.
type Fetcher interface {
	FetchFile(ctx context.Context, path string) (*github.File, error)
}

// Store is the persistence surface the orchestrator writes through.
type Store interface {
	UpsertArticle(ctx context.Context, record *content.Article) (*content.Article, error)
	UpsertSetting(ctx context.Context, record *content.Setting) (*content.Setting, error)
}

// OrchestratorConfig carries the sync pipeline's collaborators.
type OrchestratorConfig struct {
	Detector *Detector
	Fetcher  Fetcher
	Articles *markdown.Parser
	Settings *settings.Parser
	Store    Store
	// DefaultBranch gates push and merged pull-request triggers when the
	// event payload does not declare the repository's default branch.
	DefaultBranch string
	// Workers bounds concurrent item processing.
	Workers int
	Logger  interfaces.Logger
}

// Orchestrator runs one sync invocation end to end: branch filter, change
// detection, per-item fetch/parse/upsert with failure isolation, summary.
// Overlapping invocations in the same process are serialized.
type Orchestrator struct {
	detector *Detector
	fetcher  Fetcher
	articles *markdown.Parser
	settings *settings.Parser
	store    Store
	branch   string
	workers  int
	logger   interfaces.Logger

	mu sync.Mutex
}

// NewOrchestrator builds an Orchestrator, applying defaults for unset
// fields.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.DefaultBranch == "" {
		cfg.DefaultBranch = "main"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	articles := cfg.Articles
	if articles == nil {
		articles = markdown.NewParser(markdown.ParserConfig{})
	}
	settingsParser := cfg.Settings
	if settingsParser == nil {
		settingsParser, _ = settings.NewParser(settings.ParserConfig{})
	}

	return &Orchestrator{
		detector: cfg.Detector,
		fetcher:  cfg.Fetcher,
		articles: articles,
		settings: settingsParser,
		store:    cfg.Store,
		branch:   cfg.DefaultBranch,
		workers:  cfg.Workers,
		logger:   logger,
	}
}

// Run executes one sync invocation. Triggers that fail the branch filter
// return an empty summary without any remote calls. Item failures are
// recorded in the summary and never abort the batch; the one exception is
// an unavailable store, which cancels the remaining items and surfaces the
// error alongside the partial summary.
func (o *Orchestrator) Run(ctx context.Context, trigger Trigger) (*Summary, error) {
	// One sync at a time per process; a second trigger waits its turn and
	// then sees the first run's fingerprints.
	o.mu.Lock()
	defer o.mu.Unlock()

	summary := &Summary{}

	if !trigger.ShouldSync(o.branch) {
		o.logger.Info("sync.skipped", "kind", trigger.Kind, "branch", o.branch)
		return summary, nil
	}

	items, err := o.resolve(ctx, trigger)
	if err != nil {
		return summary, err
	}
	if len(items) == 0 {
		o.logger.Info("sync.no_changes", "kind", trigger.Kind)
		return summary, nil
	}

	o.logger.Info("sync.start", "kind", trigger.Kind, "items", len(items))

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.workers)

	for _, item := range items {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return nil
			}

			key, err := o.process(groupCtx, item)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && key == "":
				summary.addSkip()
			case err == nil:
				summary.addSuccess(key)
			default:
				o.logger.Error("sync.item.failed", "path", item.Path, "error", err)
				summary.addFailure(item.Path, err)
				if content.IsStoreUnavailable(err) {
					// Every remaining item would hit the same wall.
					return err
				}
			}
			return nil
		})
	}

	runErr := group.Wait()
	summary.finalize()

	o.logger.Info("sync.done",
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, runErr
}

// resolve picks the detection mode. Push events carry flat commit file
// lists and are diffed directly; manual and merged pull-request triggers
// have no file lists and fall back to a full fingerprint scan.
func (o *Orchestrator) resolve(ctx context.Context, trigger Trigger) ([]WorkItem, error) {
	if trigger.Kind == TriggerPush {
		return o.detector.FromEvent(trigger), nil
	}
	return o.detector.FullScan(ctx)
}

// process handles a single work item. It returns the stored key on success
// and an empty key for logged skips.
func (o *Orchestrator) process(ctx context.Context, item WorkItem) (string, error) {
	if item.Removed {
		// Deletions are not propagated to the store; the stale record stays
		// until a matching file reappears.
		o.logger.Warn("sync.item.removed", "path", item.Path)
		return "", nil
	}

	file, err := o.fetcher.FetchFile(ctx, item.Path)
	if err != nil {
		if content.IsNotFound(err) {
			// The file vanished between detection and fetch.
			o.logger.Warn("sync.item.vanished", "path", item.Path)
			return "", nil
		}
		return "", err
	}

	switch item.Kind {
	case KindSetting:
		return o.applySetting(ctx, file)
	default:
		return o.applyArticle(ctx, file)
	}
}

func (o *Orchestrator) applyArticle(ctx context.Context, file *github.File) (string, error) {
	doc, err := o.articles.ParseDocument(file.Path, []byte(file.Content))
	if err != nil {
		return "", err
	}

	record := articleFromDocument(doc, file.SHA)
	if _, err := o.store.UpsertArticle(ctx, record); err != nil {
		return "", err
	}
	return record.Slug, nil
}

func (o *Orchestrator) applySetting(ctx context.Context, file *github.File) (string, error) {
	doc, err := o.settings.Parse(file.Path, []byte(file.Content))
	if err != nil {
		return "", err
	}

	record := &content.Setting{
		Key:        doc.Key,
		Value:      doc.Value,
		SourcePath: doc.SourcePath,
		SourceSHA:  file.SHA,
	}
	if _, err := o.store.UpsertSetting(ctx, record); err != nil {
		return "", err
	}
	return record.Key, nil
}

// articleFromDocument maps a parsed document onto the stored record. Bulk
// sync publishes by default; front-matter that names a status keeps it.
func articleFromDocument(doc *content.Document, sha string) *content.Article {
	status := doc.Status
	if status == "" {
		status = content.StatusPublished
	}
	access := doc.AccessLevel
	if access == "" {
		access = content.AccessPublic
	}

	return &content.Article{
		Slug:        doc.Slug,
		Title:       doc.Title,
		Description: doc.Description,
		Body:        doc.Body,
		Metadata:    doc.Metadata,
		Status:      status,
		AccessLevel: access,
		SourcePath:  doc.SourcePath,
		SourceSHA:   sha,
		WordCount:   doc.WordCount,
		ReadingTime: doc.ReadingTime,
		Headings:    doc.Headings,
	}
}

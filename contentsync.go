// Package contentsync wires a GitHub-to-store content synchronization
// engine: webhook-triggered change detection, MDX article and JSON settings
// parsing, and idempotent upserts into a bun-backed store.
package contentsync

import (
	"context"
	"net/http"

	cache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-content-sync/commands"
	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/github"
	"github.com/goliatone/go-content-sync/internal/logging"
	"github.com/goliatone/go-content-sync/internal/logging/gologger"
	"github.com/goliatone/go-content-sync/internal/markdown"
	"github.com/goliatone/go-content-sync/internal/settings"
	"github.com/goliatone/go-content-sync/internal/store"
	"github.com/goliatone/go-content-sync/internal/syncer"
	"github.com/goliatone/go-content-sync/internal/webhook"
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

// Re-exported engine types so callers never import internal packages.
type (
	Summary   = syncer.Summary
	ItemError = syncer.ItemError
	Trigger   = syncer.Trigger
)

// Option customizes engine construction.
type Option func(*Engine)

// WithDB injects an already opened bun database. Without it the engine
// opens one from Config.Store.DSN.
func WithDB(db *bun.DB) Option {
	return func(e *Engine) { e.db = db }
}

// WithLoggerProvider overrides the default go-logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(e *Engine) { e.logs = provider }
}

// WithTransport overrides the GitHub client's HTTP transport; tests point
// it at httptest servers.
func WithTransport(transport http.RoundTripper) Option {
	return func(e *Engine) { e.transport = transport }
}

// WithCache supplies the read-through repository cache used when
// Config.Store.Cache is set.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) Option {
	return func(e *Engine) {
		e.cacheService = service
		e.cacheSerializer = serializer
	}
}

// Engine owns the assembled sync pipeline.
type Engine struct {
	cfg  Config
	db   *bun.DB
	logs interfaces.LoggerProvider

	transport       http.RoundTripper
	cacheService    cache.CacheService
	cacheSerializer cache.KeySerializer

	client       *github.Client
	storeService *store.Service
	orchestrator *syncer.Orchestrator
	hooks        *webhook.Handler

	syncHandler   *commands.SyncHandler
	rescanHandler *commands.RescanHandler
}

// New validates the configuration and wires the engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}

	if e.logs == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		e.logs = provider
	}

	if e.db == nil {
		db, err := store.OpenDB(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		e.db = db
	}

	e.client = github.New(github.ClientConfig{
		BaseURL:    cfg.GitHub.BaseURL,
		Token:      cfg.GitHub.Token,
		Owner:      cfg.GitHub.Owner,
		Repo:       cfg.GitHub.Repo,
		Ref:        cfg.GitHub.Ref,
		Timeout:    cfg.GitHub.Timeout,
		MaxRetries: cfg.GitHub.MaxRetries,
		RateLimit:  cfg.GitHub.RateLimit,
		RateBurst:  cfg.GitHub.RateBurst,
		Transport:  e.transport,
		Logger:     logging.ModuleLogger(e.logs, logging.GitHubModule),
	})

	var articles store.ArticleRepository = store.NewBunArticleRepository(e.db)
	var settingsRepo store.SettingRepository = store.NewBunSettingRepository(e.db)
	if cfg.Store.Cache && e.cacheService != nil {
		articles = store.NewBunArticleRepositoryWithCache(e.db, e.cacheService, e.cacheSerializer)
		settingsRepo = store.NewBunSettingRepositoryWithCache(e.db, e.cacheService, e.cacheSerializer)
	}

	e.storeService = store.NewService(store.ServiceConfig{
		Articles: articles,
		Settings: settingsRepo,
		Logger:   logging.ModuleLogger(e.logs, logging.StoreModule),
	})

	settingsParser, err := settings.NewParser(settings.ParserConfig{
		Schemas: cfg.Sync.SettingSchemas,
	})
	if err != nil {
		return nil, err
	}

	detector := syncer.NewDetector(syncer.DetectorConfig{
		Lister:            e.client,
		Fingerprints:      e.storeService,
		ContentDir:        cfg.Sync.ContentDir,
		SettingsDir:       cfg.Sync.SettingsDir,
		ArticleExtensions: cfg.Sync.ArticleExtensions,
		Logger:            logging.ModuleLogger(e.logs, logging.RootModule),
	})

	e.orchestrator = syncer.NewOrchestrator(syncer.OrchestratorConfig{
		Detector:      detector,
		Fetcher:       e.client,
		Articles:      markdown.NewParser(markdown.ParserConfig{ContentRoot: cfg.Sync.ContentDir}),
		Settings:      settingsParser,
		Store:         e.storeService,
		DefaultBranch: cfg.Sync.DefaultBranch,
		Workers:       cfg.Sync.Workers,
		Logger:        logging.ModuleLogger(e.logs, logging.RootModule),
	})

	e.hooks = webhook.NewHandler(webhook.HandlerConfig{
		Secret: cfg.Webhook.Secret,
		Tenant: cfg.Webhook.Tenant,
		Runner: e.orchestrator,
		Logger: logging.ModuleLogger(e.logs, logging.WebhookModule),
	})

	logger := logging.ModuleLogger(e.logs, logging.RootModule)
	e.syncHandler = commands.NewSyncHandler(e.orchestrator, logger)
	e.rescanHandler = commands.NewRescanHandler(e.orchestrator, logger)

	return e, nil
}

// EnsureSchema creates the articles and settings tables if they do not
// exist.
func (e *Engine) EnsureSchema(ctx context.Context) error {
	return store.EnsureSchema(ctx, e.db)
}

// Sync runs one sync invocation for an already resolved trigger.
func (e *Engine) Sync(ctx context.Context, trigger Trigger) (*Summary, error) {
	return e.orchestrator.Run(ctx, trigger)
}

// Rescan runs a full fingerprint scan regardless of recent events.
func (e *Engine) Rescan(ctx context.Context) (*Summary, error) {
	return e.orchestrator.Run(ctx, Trigger{Kind: syncer.TriggerManual})
}

// Handler returns the HTTP surface: the signed webhook endpoint and the
// manual trigger route.
func (e *Engine) Handler() http.Handler {
	return e.hooks.Routes()
}

// SyncCommand returns the command handler for dispatching resolved
// triggers.
func (e *Engine) SyncCommand() *commands.SyncHandler { return e.syncHandler }

// RescanCommand returns the command handler for full rescans.
func (e *Engine) RescanCommand() *commands.RescanHandler { return e.rescanHandler }

// Article returns the stored article for slug.
func (e *Engine) Article(ctx context.Context, slug string) (*content.Article, error) {
	return e.storeService.GetArticle(ctx, slug)
}

// Setting returns the stored setting for key.
func (e *Engine) Setting(ctx context.Context, key string) (*content.Setting, error) {
	return e.storeService.GetSetting(ctx, key)
}

// DB exposes the underlying database, mainly for host-managed shutdown.
func (e *Engine) DB() *bun.DB { return e.db }

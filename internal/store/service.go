package store

import (
	"context"
	"time"

	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/identity"
	"github.com/goliatone/go-content-sync/internal/logging"
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

// ServiceConfig carries the store service dependencies.
type ServiceConfig struct {
	Articles ArticleRepository
	Settings SettingRepository
	Logger   interfaces.Logger
	Clock    func() time.Time
}

// Service owns upsert semantics on top of the repositories: insert when the
// key is absent, otherwise overwrite every syncable field and refresh
// UpdatedAt while the original CreatedAt survives. Record IDs are derived
// deterministically from the key so concurrent first-writes converge on the
// same row.
type Service struct {
	articles ArticleRepository
	settings SettingRepository
	logger   interfaces.Logger
	now      func() time.Time
}

// NewService builds the store service from the supplied configuration.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	now := cfg.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		articles: cfg.Articles,
		settings: cfg.Settings,
		logger:   logger,
		now:      now,
	}
}

// UpsertArticle applies one parsed document to the articles table.
func (s *Service) UpsertArticle(ctx context.Context, record *content.Article) (*content.Article, error) {
	if record == nil || record.Slug == "" {
		return nil, content.ErrSlugRequired
	}
	if record.Status != "" && !content.ValidStatus(string(record.Status)) {
		return nil, content.ErrStatusInvalid
	}
	if record.AccessLevel != "" && !content.ValidAccessLevel(string(record.AccessLevel)) {
		return nil, content.ErrAccessInvalid
	}

	now := s.now()
	existing, err := s.articles.GetBySlug(ctx, record.Slug)
	if err != nil {
		if !content.IsNotFound(err) {
			return nil, storeError("lookup", record.Slug, err)
		}

		record.ID = identity.ArticleUUID(record.Slug)
		record.CreatedAt = now
		record.UpdatedAt = now
		created, err := s.articles.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("store.article.created", "slug", created.Slug)
		return created, nil
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = now
	updated, err := s.articles.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("store.article.updated", "slug", updated.Slug)
	return updated, nil
}

// UpsertSetting applies one parsed settings document to the settings table.
func (s *Service) UpsertSetting(ctx context.Context, record *content.Setting) (*content.Setting, error) {
	if record == nil || record.Key == "" {
		return nil, content.ErrKeyRequired
	}

	now := s.now()
	existing, err := s.settings.GetByKey(ctx, record.Key)
	if err != nil {
		if !content.IsNotFound(err) {
			return nil, storeError("lookup", record.Key, err)
		}

		record.ID = identity.SettingUUID(record.Key)
		record.CreatedAt = now
		record.UpdatedAt = now
		created, err := s.settings.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("store.setting.created", "key", created.Key)
		return created, nil
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = now
	updated, err := s.settings.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("store.setting.updated", "key", updated.Key)
	return updated, nil
}

// GetArticle returns the article stored under slug.
func (s *Service) GetArticle(ctx context.Context, slug string) (*content.Article, error) {
	return s.articles.GetBySlug(ctx, slug)
}

// GetSetting returns the setting stored under key.
func (s *Service) GetSetting(ctx context.Context, key string) (*content.Setting, error) {
	return s.settings.GetByKey(ctx, key)
}

// Fingerprints returns the stored path-to-SHA map across both tables, used
// by the change detector's full-scan mode.
func (s *Service) Fingerprints(ctx context.Context) (content.Fingerprints, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, storeError("list", "articles", err)
	}
	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, storeError("list", "settings", err)
	}

	prints := make(content.Fingerprints, len(articles)+len(settings))
	for _, a := range articles {
		if a.SourcePath != "" {
			prints[a.SourcePath] = a.SourceSHA
		}
	}
	for _, st := range settings {
		if st.SourcePath != "" {
			prints[st.SourcePath] = st.SourceSHA
		}
	}
	return prints, nil
}

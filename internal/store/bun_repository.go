package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-content-sync/content"
)

// ArticleRepository is the article persistence contract consumed by the
// orchestrator. The sync engine owns the write path exclusively; serving
// layers only read.
type ArticleRepository interface {
	GetBySlug(ctx context.Context, slug string) (*content.Article, error)
	List(ctx context.Context) ([]*content.Article, error)
	Create(ctx context.Context, record *content.Article) (*content.Article, error)
	Update(ctx context.Context, record *content.Article) (*content.Article, error)
}

// SettingRepository is the settings persistence contract.
type SettingRepository interface {
	GetByKey(ctx context.Context, key string) (*content.Setting, error)
	List(ctx context.Context) ([]*content.Setting, error)
	Create(ctx context.Context, record *content.Setting) (*content.Setting, error)
	Update(ctx context.Context, record *content.Setting) (*content.Setting, error)
}

type BunArticleRepository struct {
	repo repository.Repository[*content.Article]
}

func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return NewBunArticleRepositoryWithCache(db, nil, nil)
}

// NewBunArticleRepositoryWithCache constructs an ArticleRepository with an
// optional read-through cache.
func NewBunArticleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunArticleRepository {
	base := NewArticleRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunArticleRepository{repo: wrapped}
}

func (r *BunArticleRepository) GetBySlug(ctx context.Context, slug string) (*content.Article, error) {
	result, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "article", slug)
	}
	return result, nil
}

func (r *BunArticleRepository) List(ctx context.Context) ([]*content.Article, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "article", "")
	}
	return records, nil
}

func (r *BunArticleRepository) Create(ctx context.Context, record *content.Article) (*content.Article, error) {
	// Two processes can race the lookup and both decide to insert; the
	// conflict clause turns the loser's insert into last-write-wins.
	created, err := r.repo.Create(ctx, record, repository.InsertOnConflictUpdate("slug"))
	if err != nil {
		return nil, storeError("create", record.Slug, err)
	}
	return created, nil
}

func (r *BunArticleRepository) Update(ctx context.Context, record *content.Article) (*content.Article, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, storeError("update", record.Slug, err)
	}
	return updated, nil
}

type BunSettingRepository struct {
	repo repository.Repository[*content.Setting]
}

func NewBunSettingRepository(db *bun.DB) *BunSettingRepository {
	return NewBunSettingRepositoryWithCache(db, nil, nil)
}

func NewBunSettingRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunSettingRepository {
	base := NewSettingRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunSettingRepository{repo: wrapped}
}

func (r *BunSettingRepository) GetByKey(ctx context.Context, key string) (*content.Setting, error) {
	result, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "setting", key)
	}
	return result, nil
}

func (r *BunSettingRepository) List(ctx context.Context) ([]*content.Setting, error) {
	records, _, err := r.repo.List(ctx)
	if err != nil {
		return nil, mapRepositoryError(err, "setting", "")
	}
	return records, nil
}

func (r *BunSettingRepository) Create(ctx context.Context, record *content.Setting) (*content.Setting, error) {
	created, err := r.repo.Create(ctx, record, repository.InsertOnConflictUpdate("key"))
	if err != nil {
		return nil, storeError("create", record.Key, err)
	}
	return created, nil
}

func (r *BunSettingRepository) Update(ctx context.Context, record *content.Setting) (*content.Setting, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, storeError("update", record.Key, err)
	}
	return updated, nil
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &content.NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func storeError(op, key string, err error) error {
	return &content.StoreError{
		Op:          op,
		Key:         key,
		Err:         err,
		Unavailable: isUnavailable(err),
	}
}

// isUnavailable distinguishes connectivity-class failures from per-record
// ones; the orchestrator aborts a batch on the former.
func isUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if content.IsStoreUnavailable(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "bad connection")
}

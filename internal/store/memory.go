package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/goliatone/go-content-sync/content"
)

// MemoryArticleRepository is an in-memory ArticleRepository for scaffolding
// and tests.
type MemoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]*content.Article
	failWith error
}

// NewMemoryArticleRepository creates an empty in-memory article repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{articles: make(map[string]*content.Article)}
}

// FailWith forces every subsequent call to return err. Used to exercise
// store-unavailable paths.
func (m *MemoryArticleRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *MemoryArticleRepository) GetBySlug(_ context.Context, slug string) (*content.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	rec, ok := m.articles[slug]
	if !ok {
		return nil, &content.NotFoundError{Resource: "article", Key: slug}
	}
	return cloneArticle(rec), nil
}

func (m *MemoryArticleRepository) List(_ context.Context) ([]*content.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]*content.Article, 0, len(m.articles))
	for _, rec := range m.articles {
		out = append(out, cloneArticle(rec))
	}
	return out, nil
}

func (m *MemoryArticleRepository) Create(_ context.Context, record *content.Article) (*content.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	copied := cloneArticle(record)
	m.articles[copied.Slug] = copied
	return cloneArticle(copied), nil
}

func (m *MemoryArticleRepository) Update(_ context.Context, record *content.Article) (*content.Article, error) {
	return m.Create(context.Background(), record)
}

// Len reports the number of stored articles.
func (m *MemoryArticleRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.articles)
}

// MemorySettingRepository is an in-memory SettingRepository.
type MemorySettingRepository struct {
	mu       sync.RWMutex
	settings map[string]*content.Setting
	failWith error
}

// NewMemorySettingRepository creates an empty in-memory setting repository.
func NewMemorySettingRepository() *MemorySettingRepository {
	return &MemorySettingRepository{settings: make(map[string]*content.Setting)}
}

func (m *MemorySettingRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *MemorySettingRepository) GetByKey(_ context.Context, key string) (*content.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	rec, ok := m.settings[key]
	if !ok {
		return nil, &content.NotFoundError{Resource: "setting", Key: key}
	}
	return cloneSetting(rec), nil
}

func (m *MemorySettingRepository) List(_ context.Context) ([]*content.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]*content.Setting, 0, len(m.settings))
	for _, rec := range m.settings {
		out = append(out, cloneSetting(rec))
	}
	return out, nil
}

func (m *MemorySettingRepository) Create(_ context.Context, record *content.Setting) (*content.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	copied := cloneSetting(record)
	m.settings[copied.Key] = copied
	return cloneSetting(copied), nil
}

func (m *MemorySettingRepository) Update(_ context.Context, record *content.Setting) (*content.Setting, error) {
	return m.Create(context.Background(), record)
}

func (m *MemorySettingRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.settings)
}

func cloneArticle(a *content.Article) *content.Article {
	if a == nil {
		return nil
	}
	copied := *a
	copied.Metadata = cloneMap(a.Metadata)
	copied.Headings = append([]content.Heading(nil), a.Headings...)
	return &copied
}

func cloneSetting(s *content.Setting) *content.Setting {
	if s == nil {
		return nil
	}
	copied := *s
	copied.Value = append(json.RawMessage(nil), s.Value...)
	return &copied
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package store

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-content-sync/content"
)

func NewArticleRepository(db *bun.DB) repository.Repository[*content.Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*content.Article]{
		NewRecord: func() *content.Article { return &content.Article{} },
		GetID: func(a *content.Article) uuid.UUID {
			return a.ID
		},
		SetID: func(a *content.Article, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(a *content.Article) string {
			return a.Slug
		},
	})
}

func NewSettingRepository(db *bun.DB) repository.Repository[*content.Setting] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*content.Setting]{
		NewRecord: func() *content.Setting { return &content.Setting{} },
		GetID: func(s *content.Setting) uuid.UUID {
			return s.ID
		},
		SetID: func(s *content.Setting, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "key"
		},
		GetIdentifierValue: func(s *content.Setting) string {
			return s.Key
		},
	})
}

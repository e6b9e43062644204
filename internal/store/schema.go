package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-content-sync/content"
)

// EnsureSchema creates the articles and settings tables when absent. The
// engine only ever mutates through upserts, so no migration machinery beyond
// idempotent table creation is required here.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*content.Article)(nil),
		(*content.Setting)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("store: create table for %T: %w", model, err)
		}
	}
	return nil
}

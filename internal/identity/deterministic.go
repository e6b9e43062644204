package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArticleUUID returns the stable identifier for an article slug. Upserts
// across sync runs always target the same row regardless of which invocation
// first created it.
func ArticleUUID(slug string) uuid.UUID {
	return UUID("go-content-sync:article:" + strings.TrimSpace(slug))
}

// SettingUUID returns the stable identifier for a settings key.
func SettingUUID(key string) uuid.UUID {
	return UUID("go-content-sync:setting:" + strings.ToLower(strings.TrimSpace(key)))
}

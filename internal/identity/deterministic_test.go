package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestArticleUUIDStable(t *testing.T) {
	first := ArticleUUID("blog/post")
	second := ArticleUUID("blog/post")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected stable uuid, got %s and %s", first, second)
	}
}

func TestEntityNamespacesDoNotCollide(t *testing.T) {
	if ArticleUUID("site") == SettingUUID("site") {
		t.Fatal("article and setting namespaces collided")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected uuid.Nil for blank key")
	}
}

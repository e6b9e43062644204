package markdown

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-content-sync/content"
)

func TestExtractOutline(t *testing.T) {
	source := []byte(`# Getting Started

Intro paragraph.

## Install & Run

### Step 1

Text with a # hash mid-line that is not a heading.

###### Fine Print
`)

	outline := NewOutlineExtractor().Extract(source)

	want := []content.Heading{
		{Level: 1, Text: "Getting Started", Slug: "getting-started"},
		{Level: 2, Text: "Install & Run", Slug: "install-run"},
		{Level: 3, Text: "Step 1", Slug: "step-1"},
		{Level: 6, Text: "Fine Print", Slug: "fine-print"},
	}
	if !reflect.DeepEqual(outline, want) {
		t.Fatalf("outline mismatch:\n got %#v\nwant %#v", outline, want)
	}
}

func TestExtractOutlineEmptyBody(t *testing.T) {
	if outline := NewOutlineExtractor().Extract([]byte("plain text, no headings")); len(outline) != 0 {
		t.Fatalf("expected empty outline, got %#v", outline)
	}
}

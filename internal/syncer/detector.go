package syncer

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-content-sync/content"
	"github.com/goliatone/go-content-sync/internal/github"
	"github.com/goliatone/go-content-sync/internal/logging"
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

// ItemKind classifies a work item by target table.
type ItemKind string

const (
	KindArticle ItemKind = "article"
	KindSetting ItemKind = "setting"
)

// WorkItem is one candidate file to (re)process. It is created by the
// detector, consumed once by the orchestrator, and discarded.
type WorkItem struct {
	Path    string
	SHA     string
	Kind    ItemKind
	Removed bool
}

// Lister is the remote listing capability the detector needs.
type Lister interface {
	ListDirectory(ctx context.Context, dir string) ([]github.Entry, error)
}

// FingerprintSource supplies the locally stored path-to-SHA map.
type FingerprintSource interface {
	Fingerprints(ctx context.Context) (content.Fingerprints, error)
}

// DetectorConfig carries the detector's collaborators and path filters.
type DetectorConfig struct {
	Lister       Lister
	Fingerprints FingerprintSource
	// ContentDir and SettingsDir are the only directories sync looks at.
	ContentDir  string
	SettingsDir string
	// ArticleExtensions filters article files (default: .mdx, .md).
	ArticleExtensions []string
	Logger            interfaces.Logger
}

// Detector resolves the minimal candidate set for one sync invocation,
// either by diffing an event's commit lists or by a full remote scan with
// fingerprint comparison.
type Detector struct {
	lister       Lister
	fingerprints FingerprintSource
	contentDir   string
	settingsDir  string
	articleExts  map[string]struct{}
	logger       interfaces.Logger
}

// NewDetector builds a Detector, applying defaults for unset fields.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.ContentDir == "" {
		cfg.ContentDir = "contents"
	}
	if cfg.SettingsDir == "" {
		cfg.SettingsDir = "settings"
	}
	if len(cfg.ArticleExtensions) == 0 {
		cfg.ArticleExtensions = []string{".mdx", ".md"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	exts := make(map[string]struct{}, len(cfg.ArticleExtensions))
	for _, ext := range cfg.ArticleExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	return &Detector{
		lister:       cfg.Lister,
		fingerprints: cfg.Fingerprints,
		contentDir:   strings.Trim(cfg.ContentDir, "/"),
		settingsDir:  strings.Trim(cfg.SettingsDir, "/"),
		articleExts:  exts,
		logger:       logger,
	}
}

// FromEvent diffs the event's flat commit file lists: the union of added,
// modified, and removed paths, filtered to the target directories and
// deduplicated. The event's file list is trusted as-is; no recursion and no
// network calls happen here.
func (d *Detector) FromEvent(trigger Trigger) []WorkItem {
	if trigger.Push == nil {
		return nil
	}

	touched := map[string]bool{} // path -> net removed
	order := []string{}

	record := func(paths []string, removed bool) {
		for _, p := range paths {
			p = strings.TrimPrefix(path.Clean(p), "/")
			if _, seen := touched[p]; !seen {
				order = append(order, p)
			}
			touched[p] = removed
		}
	}

	for _, commit := range trigger.Push.Commits {
		record(commit.Added, false)
		record(commit.Modified, false)
		record(commit.Removed, true)
	}

	var items []WorkItem
	for _, p := range order {
		kind, ok := d.classify(p)
		if !ok {
			// Files outside the target directories or with foreign
			// extensions are ignored silently.
			continue
		}
		items = append(items, WorkItem{Path: p, Kind: kind, Removed: touched[p]})
	}
	return items
}

// FullScan recursively lists the target directories and keeps files whose
// remote fingerprint differs from the stored one or is unknown locally.
func (d *Detector) FullScan(ctx context.Context) ([]WorkItem, error) {
	known := content.Fingerprints{}
	if d.fingerprints != nil {
		prints, err := d.fingerprints.Fingerprints(ctx)
		if err != nil {
			return nil, err
		}
		known = prints
	}

	var items []WorkItem
	for _, dir := range []string{d.contentDir, d.settingsDir} {
		if err := d.walk(ctx, dir, known, &items); err != nil {
			if content.IsNotFound(err) {
				// A missing target directory is not an error; the repo may
				// not carry settings at all.
				d.logger.Warn("syncer.scan.dir_missing", "dir", dir)
				continue
			}
			return nil, err
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

func (d *Detector) walk(ctx context.Context, dir string, known content.Fingerprints, items *[]WorkItem) error {
	entries, err := d.lister.ListDirectory(ctx, dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if err := d.walk(ctx, entry.Path, known, items); err != nil {
				return err
			}
			continue
		}

		kind, ok := d.classify(entry.Path)
		if !ok {
			continue
		}
		if stored, seen := known[entry.Path]; seen && stored == entry.SHA {
			continue
		}
		*items = append(*items, WorkItem{Path: entry.Path, SHA: entry.SHA, Kind: kind})
	}
	return nil
}

func (d *Detector) classify(p string) (ItemKind, bool) {
	ext := strings.ToLower(path.Ext(p))
	switch {
	case strings.HasPrefix(p, d.contentDir+"/"):
		if _, ok := d.articleExts[ext]; ok {
			return KindArticle, true
		}
	case strings.HasPrefix(p, d.settingsDir+"/"):
		if ext == ".json" {
			return KindSetting, true
		}
	}
	return "", false
}

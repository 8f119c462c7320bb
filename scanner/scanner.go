// Package scanner walks configured directories, classifies each file,
// extracts lightweight metadata, and builds the MediaLibrary consumed
// by the rest of the server. The first scan runs synchronously at
// startup, before HTTP listeners open; cmd/udlnad scans again when the
// watched roots change.
package scanner

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"

	"github.com/udlna/udlna/log"
	"github.com/udlna/udlna/media"
	"github.com/udlna/udlna/media/metadata"
	"github.com/udlna/udlna/media/mime"
)

// excludeGlobs are skipped during the walk — dotfiles and a handful of
// directories that are never media (version control, thumbnail
// caches). Matched against the path relative to each scan root.
var excludeGlobs = []string{
	"**/.*",
	"**/@eaDir/**",
	"**/.git/**",
}

// Stats summarizes one scan for the startup banner.
type Stats struct {
	Total, Video, Audio, Image int
	TotalBytes                 uint64
	Elapsed                    time.Duration
}

// Scan walks every root and returns a populated Library plus
// statistics. Missing roots are logged as warnings and skipped — never
// fatal. The caller is responsible for treating a zero-item result as
// a fatal startup condition per the spec's exit-code-1 rule.
func Scan(roots []string) (*media.Library, Stats) {
	start := time.Now()
	var items []media.Item
	var warnings *multierror.Error
	var stats Stats

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			log.Warn("scan path does not exist, skipping", "path", root)
			warnings = multierror.Append(warnings, err)
			continue
		}
		walkRoot(root, &items, &stats)
	}

	if warnings != nil {
		log.Debug("scan completed with warnings", "count", warnings.Len())
	}

	stats.Elapsed = time.Since(start)
	stats.Total = len(items)
	lib := media.NewLibrary()
	lib.Replace(items)

	log.Info("scan finished",
		"total", stats.Total,
		"video", stats.Video,
		"audio", stats.Audio,
		"image", stats.Image,
		"bytes", humanize.Bytes(stats.TotalBytes),
		"elapsed", stats.Elapsed,
	)
	return lib, stats
}

func walkRoot(root string, items *[]media.Item, stats *Stats) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn("cannot access entry", "path", path, "error", err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if excluded(root, path) {
			return nil
		}
		processFile(path, items, stats)
		return nil
	})
}

func excluded(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, pattern := range excludeGlobs {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			return true
		}
	}
	return false
}

func processFile(path string, items *[]media.Item, stats *Stats) {
	kind, mimeType, ok := mime.Classify(path)
	if !ok {
		return
	}
	if kind == media.KindSubtitle {
		log.Debug("subtitle recognized but excluded from library", "path", path)
		return
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		log.Warn("cannot canonicalize", "path", path, "error", err)
		return
	}

	info, err := os.Stat(canonical)
	if err != nil {
		log.Warn("cannot stat", "path", canonical, "error", err)
		return
	}

	meta, ok := metadata.Extract(canonical, kind, mimeType)
	if !ok {
		log.Warn("skipping — metadata extraction failed", "path", canonical)
		return
	}

	item := media.Item{
		ID:       metadata.ItemID(canonical),
		Path:     canonical,
		FileSize: uint64(info.Size()),
		MIME:     mimeType,
		Kind:     kind,
		Meta:     meta,
	}

	switch kind {
	case media.KindVideo:
		stats.Video++
	case media.KindAudio:
		stats.Audio++
	case media.KindImage:
		stats.Image++
	}
	stats.TotalBytes += item.FileSize

	log.Debug("indexed", "id", item.ID, "path", item.Path)
	*items = append(*items, item)
}

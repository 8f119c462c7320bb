package scanner

import (
	"github.com/rjeczalik/notify"

	"github.com/udlna/udlna/log"
)

// Watcher observes filesystem change events under a set of roots using
// platform-native notification APIs (inotify, FSEvents, ReadDirectoryChanges).
// It does not itself trigger a rescan — Events is exposed for a caller
// to debounce and act on; cmd/udlnad consumes it to coalesce bursts of
// changes into a single Scan.
type Watcher struct {
	Events chan notify.EventInfo
	roots  []string
}

// NewWatcher registers recursive watches on each root and returns a
// Watcher ready to receive events on Events. Roots that fail to watch
// are logged and skipped, mirroring Scan's tolerance of bad paths.
func NewWatcher(roots []string) *Watcher {
	w := &Watcher{
		Events: make(chan notify.EventInfo, 64),
		roots:  roots,
	}
	for _, root := range roots {
		if err := notify.Watch(root+"/...", w.Events, notify.Create, notify.Remove, notify.Rename, notify.Write); err != nil {
			log.Warn("cannot watch path for changes", "path", root, "error", err)
		}
	}
	return w
}

// Close stops watching and releases the underlying OS resources.
func (w *Watcher) Close() {
	notify.Stop(w.Events)
}

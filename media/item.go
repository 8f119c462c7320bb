// Package media defines the in-memory media library: the immutable
// item records the scanner produces and the read-mostly collection the
// HTTP and Content Directory layers query.
package media

import (
	"sync"

	"github.com/google/uuid"
)

// Kind classifies a discovered file. Subtitle is recognized during
// classification but MUST NOT appear in a Library's Items.
type Kind string

const (
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindImage    Kind = "image"
	KindSubtitle Kind = "subtitle"
)

// Meta holds optional, format-derived attributes. A nil field means
// "could not be determined" and MUST be omitted from the wire
// representation rather than rendered as a zero value.
type Meta struct {
	Duration    *string
	Resolution  *string
	Bitrate     *uint32
	DLNAProfile *string
}

// Item is an immutable record of one discovered media file.
type Item struct {
	ID       uuid.UUID
	Path     string // canonicalized absolute path
	FileSize uint64
	MIME     string
	Kind     Kind
	Meta     Meta
}

// Library is a read-mostly, insertion-ordered collection of Items,
// safe for concurrent use. It is populated at startup and thereafter
// treated as an immutable snapshot by readers; the rescan loop in
// cmd/udlnad, its only writer, calls Replace to swap the entire
// snapshot atomically.
type Library struct {
	mu    sync.RWMutex
	items []Item
}

// NewLibrary returns an empty Library.
func NewLibrary() *Library {
	return &Library{}
}

// Replace atomically swaps the library's contents. Existing Item
// values already copied out by readers remain valid and unaffected.
func (l *Library) Replace(items []Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = items
}

// Snapshot returns a copy of the current item slice. Safe to retain
// and iterate without holding any lock.
func (l *Library) Snapshot() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the current item count.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Find returns the item with the given id and whether it was found.
// The lock is held only for the duration of the lookup; the returned
// Item is a copy, safe to use during subsequent suspending I/O.
func (l *Library) Find(id uuid.UUID) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ByKind returns a copy of every item of the given kind, preserving
// insertion order.
func (l *Library) ByKind(kind Kind) []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Item
	for _, it := range l.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

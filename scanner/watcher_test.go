package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWatcherOnValidRoot(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher([]string{dir})
	defer w.Close()
	assert.NotNil(t, w.Events)
}

func TestNewWatcherSkipsBadRootWithoutPanicking(t *testing.T) {
	w := NewWatcher([]string{"/this/path/does/not/exist"})
	defer w.Close()
	assert.NotNil(t, w.Events)
}

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanMissingRootIsSkippedNotFatal(t *testing.T) {
	lib, stats := Scan([]string{"/this/path/does/not/exist"})
	require.NotNil(t, lib)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, lib.Len())
}

func TestScanExcludesSubtitlesAndDotfiles(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "movie.srt"), "1\n00:00:00,000 --> 00:00:01,000\nhi\n")
	write(t, filepath.Join(dir, ".hidden.jpg"), "not-really-a-jpeg")
	write(t, filepath.Join(dir, "unknown.xyz"), "nope")

	lib, stats := Scan([]string{dir})
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, lib.Len())
}

func TestScanSkipsFileOnMetadataExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	// A .jpg whose contents aren't a decodable image: image.DecodeConfig
	// fails, so Extract returns ok=false and the file is skipped entirely.
	write(t, filepath.Join(dir, "broken.jpg"), "this is not an image")

	lib, stats := Scan([]string{dir})
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, lib.Len())
	assert.Equal(t, uint64(0), stats.TotalBytes)
}

func TestScanHandlesSymlinkedFilesWithoutCrashing(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(realDir, 0o755))
	realPath := filepath.Join(realDir, "broken.jpg")
	write(t, realPath, "still not an image")

	linkPath := filepath.Join(dir, "link.jpg")
	require.NoError(t, os.Symlink(realPath, linkPath))

	// Both paths fail metadata extraction identically (not a real
	// image), so this just exercises canonicalization not crashing on
	// a symlinked entry reachable during the walk.
	lib, _ := Scan([]string{dir})
	assert.Equal(t, 0, lib.Len())
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	cfg := Resolve(nil, CLIArgs{Paths: []string{"/media"}})
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.False(t, cfg.Localhost)
	assert.Equal(t, []string{"/media"}, cfg.Paths)
}

func TestResolveFileOverridesDefaultArgsOverrideFile(t *testing.T) {
	filePort := 9000
	fileName := "Living Room"
	file := &FileConfig{Port: &filePort, Name: &fileName}

	cfg := Resolve(file, CLIArgs{Paths: []string{"/media"}})
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "Living Room", cfg.Name)

	argPort := 9500
	cfg = Resolve(file, CLIArgs{Paths: []string{"/media"}, Port: &argPort})
	assert.Equal(t, 9500, cfg.Port, "CLI must override file")
}

func TestLoadFileIgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "udlna.toml")
	content := []byte("port = 9100\nname = \"Test\"\nsome_unknown_key = true\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	fc, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, fc.Port)
	assert.Equal(t, 9100, *fc.Port)
	require.NotNil(t, fc.Name)
	assert.Equal(t, "Test", *fc.Name)
}

func TestFindConfigFileExplicitWins(t *testing.T) {
	path, ok := FindConfigFile("/some/explicit/path.toml")
	assert.True(t, ok)
	assert.Equal(t, "/some/explicit/path.toml", path)
}

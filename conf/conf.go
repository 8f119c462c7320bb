// Package conf resolves the server's runtime configuration from
// defaults, a TOML file, and CLI flags, in that increasing order of
// precedence, via viper for layering and pelletier/go-toml/v2 for the
// actual file decode.
package conf

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const DefaultPort = 8200

// FileConfig is the shape of udlna.toml. Unknown keys are ignored by
// go-toml's default decode behavior.
type FileConfig struct {
	Port      *int    `toml:"port"`
	Name      *string `toml:"name"`
	Localhost *bool   `toml:"localhost"`
}

// CLIArgs mirrors the flags bound by cmd's cobra root command.
type CLIArgs struct {
	Paths      []string
	Port       *int
	Name       *string
	ConfigPath string
	Localhost  bool
}

// ServerConfig is the fully resolved configuration the core consumes.
type ServerConfig struct {
	Port      int
	Name      string
	Paths     []string
	Localhost bool
}

// FindConfigFile locates the config file to load: an explicit path if
// given, else ./udlna.toml if present, else $XDG_CONFIG_HOME/udlna/
// config.toml if present. Returns ok=false if none apply.
func FindConfigFile(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if _, err := os.Stat("udlna.toml"); err == nil {
		return "udlna.toml", true
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "udlna", "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// LoadFile reads and decodes a TOML config file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

func defaultName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "udlna"
	}
	return "udlna@" + host
}

// Resolve merges a possibly-absent file config with CLI args: CLI
// overrides file, file overrides built-in defaults. viper provides the
// same precedence chain plus UDLNA_-prefixed environment overrides for
// operators who prefer env vars to flags or a config file.
func Resolve(file *FileConfig, args CLIArgs) ServerConfig {
	v := viper.New()
	v.SetEnvPrefix("UDLNA")
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("name", defaultName())
	v.SetDefault("localhost", false)

	if file != nil {
		if file.Port != nil {
			v.Set("port", *file.Port)
		}
		if file.Name != nil {
			v.Set("name", *file.Name)
		}
		if file.Localhost != nil {
			v.Set("localhost", *file.Localhost)
		}
	}

	if args.Port != nil {
		v.Set("port", *args.Port)
	}
	if args.Name != nil {
		v.Set("name", *args.Name)
	}
	if args.Localhost {
		v.Set("localhost", true)
	}

	return ServerConfig{
		Port:      v.GetInt("port"),
		Name:      v.GetString("name"),
		Paths:     args.Paths,
		Localhost: v.GetBool("localhost"),
	}
}

package marklint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is looked up in the root of the checked path.
const ConfigFileName = ".marklint.toml"

type Config struct {
	// Additional reference URL shown in warnings, replacing the default
	SupportURL string `toml:"support_url"`
	// Extra admonition names claimed on top of [DefaultAdmonitions]
	Admonitions []string `toml:"admonitions"`
	// File extensions considered markdown when walking directories
	Extensions []string `toml:"extensions"`
}

func DefaultConfig() Config {
	return Config{
		SupportURL: DefaultSupportURL,
		Extensions: []string{".md", ".mdx"},
	}
}

// LoadConfig reads .marklint.toml from dir if present, falling back to
// defaults for any field left unset. A missing file is not an error.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("checking config file: %w", err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}

	if cfg.SupportURL == "" {
		cfg.SupportURL = DefaultSupportURL
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultConfig().Extensions
	}
	return cfg, nil
}

package ldifstore

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/Eldar88/openldap/pkg/encoding"
	"github.com/Eldar88/openldap/pkg/ldif"
)

// Config is the backend's recognized configuration surface: the directory
// option (§6) and the suffix. It is loaded from YAML, with an optional .env file
// consulted first so a deployment can pull the directory path (or override
// the suffix) from the environment without editing the checked-in file.
type Config struct {
	// Directory is the absolute base path containing the suffix entry's file
	// and subtree. Required; db_open fails if empty.
	Directory string `yaml:"directory"`
	// Suffix is the presentation-form DN of the root served by this backend.
	Suffix string `yaml:"suffix"`
}

// LoadConfig loads a Config from a YAML file at path. If an ".env" file sits
// alongside it, it is loaded into the process environment first. The
// LDIFSTORE_DIRECTORY and LDIFSTORE_SUFFIX environment variables, whether
// loaded from that file or already set in the process, override the
// corresponding YAML fields, letting a single checked-in config.yaml be
// parameterized per deployment.
func LoadConfig(path string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if loadErr := godotenv.Load(envPath); loadErr != nil {
			return nil, errors.Wrap(loadErr, "unable to load .env file")
		}
	}

	var cfg Config
	if err := encoding.LoadAndUnmarshalYAML(path, &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to load configuration")
	}

	if v := os.Getenv("LDIFSTORE_DIRECTORY"); v != "" {
		cfg.Directory = v
	}
	if v := os.Getenv("LDIFSTORE_SUFFIX"); v != "" {
		cfg.Suffix = v
	}

	if cfg.Directory == "" {
		return nil, errors.New("directory option is required and must not be empty")
	}
	if !filepath.IsAbs(cfg.Directory) {
		return nil, errors.Errorf("directory option must be an absolute path, got %q", cfg.Directory)
	}
	if cfg.Suffix == "" {
		return nil, errors.New("suffix option is required and must not be empty")
	}
	return &cfg, nil
}

// SuffixDN parses the configured suffix into a DN.
func (c *Config) SuffixDN() (ldif.DN, error) {
	return ldif.ParseDN(c.Suffix)
}

// OpenBackend is a convenience that loads a Config and opens a Backend from
// it in one step.
func OpenBackend(path string) (*Backend, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	suffix, err := cfg.SuffixDN()
	if err != nil {
		return nil, errors.Wrap(err, "invalid suffix")
	}
	return Open(suffix, cfg.Directory)
}

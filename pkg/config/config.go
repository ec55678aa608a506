// Package config loads acforge configuration in layers: embedded
// defaults, then the target's .acforge/config.toml, then ACFORGE_*
// environment variables. Later layers win.
package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/acforge/pkg/errors"
	"github.com/arthur-debert/acforge/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf's provider interface over a byte slice.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Preserve controls customization handling during updates.
type Preserve struct {
	// Enabled toggles backing up and restoring .local. files.
	Enabled bool `koanf:"enabled"`
}

// Config is the resolved acforge configuration for one target.
type Config struct {
	Preserve Preserve `koanf:"preserve"`

	// Parameters overrides detected template parameters. Keys are the
	// uppercase parameter names as they appear in templates.
	Parameters map[string]string `koanf:"parameters"`
}

// Load resolves the configuration for a target.
func Load(target *paths.Target) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default config")
	}

	if path := target.ConfigFilePath(); fileExists(path) {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	}

	if err := k.Load(env.Provider("ACFORGE_", ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment config")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode config")
	}
	if cfg.Parameters == nil {
		cfg.Parameters = make(map[string]string)
	}
	return &cfg, nil
}

// envKey maps ACFORGE_SECTION_KEY to "section.key". Keys in the parameters
// section keep their uppercase form, since that is how they appear in
// templates (ACFORGE_PARAMETERS_GITHUB_OWNER -> parameters.GITHUB_OWNER).
func envKey(s string) string {
	s = strings.TrimPrefix(s, "ACFORGE_")
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return strings.ToLower(s)
	}

	section := strings.ToLower(parts[0])
	if section == "parameters" {
		return section + "." + parts[1]
	}
	return section + "." + strings.ToLower(strings.ReplaceAll(parts[1], "_", "."))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

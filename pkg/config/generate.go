package config

import (
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/acforge/pkg/errors"
)

const generatedHeader = `# acforge configuration.
# Uncomment a value to override the detected default.

`

// generatedConfig mirrors Config for TOML output.
type generatedConfig struct {
	Preserve   Preserve          `toml:"preserve"`
	Parameters map[string]string `toml:"parameters"`
}

// GenerateContent renders a starter config.toml with every value commented
// out, seeded with the detected parameters so the user can see what an
// override would look like.
func GenerateContent(params map[string]string) (string, error) {
	cfg := generatedConfig{
		Preserve:   Preserve{Enabled: true},
		Parameters: params,
	}
	if cfg.Parameters == nil {
		cfg.Parameters = make(map[string]string)
	}

	data, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render config")
	}

	return generatedHeader + commentOutValues(string(data)), nil
}

// commentOutValues comments every assignment line, leaving blank lines and
// section headers intact.
func commentOutValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}

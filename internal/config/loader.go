package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} references.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Load reads a YAML configuration file, substitutes ${VAR} and
// ${VAR:-default} references from the environment, decodes it, and applies
// defaults. A reference with no default and no environment value fails the
// load; all missing names are reported in one error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, missing := substituteEnv(raw)
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: %s: unresolved variables: %s", path, strings.Join(missing, ", "))
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.defaults()

	return &cfg, nil
}

// substituteEnv replaces environment references in raw and returns the
// variable names that resolved to nothing, in order of appearance.
func substituteEnv(raw []byte) ([]byte, []string) {
	var out bytes.Buffer
	var missing []string

	last := 0
	for _, m := range envPattern.FindAllSubmatchIndex(raw, -1) {
		out.Write(raw[last:m[0]])
		last = m[1]

		name := string(raw[m[2]:m[3]])
		if value, ok := os.LookupEnv(name); ok {
			out.WriteString(value)
			continue
		}
		if m[4] >= 0 {
			out.Write(raw[m[4]:m[5]])
			continue
		}
		missing = append(missing, name)
	}
	out.Write(raw[last:])

	return out.Bytes(), missing
}

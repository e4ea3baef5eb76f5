package settings

// settings.go — archq configuration loaded from .archq/settings.yaml.
//
// The exclude list names product factors the evaluation must skip. A rule
// is a glob over factor paths, written bare ("secured-*") or wrapped in a
// Factor() verb ("Factor(security/**)"). Every factor is reachable under
// its id and under "<category>/<id>" for each of its catalog categories,
// so "security/**" skips all security factors.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"archq/internal/qualitymodel"
)

// Dir and File locate the settings file relative to a project root.
const (
	Dir  = ".archq"
	File = "settings.yaml"
)

// Settings holds archq configuration from .archq/settings.yaml.
type Settings struct {
	Evaluation Evaluation `yaml:"evaluation"`
	Log        Log        `yaml:"log"`
	Metrics    Metrics    `yaml:"metrics"`
}

// Evaluation controls which factors are evaluated.
type Evaluation struct {
	// Exclude is a list of factor globs.
	// Example: ["Factor(security/**)", "observability"]
	Exclude []string `yaml:"exclude"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Metrics configures the Prometheus textfile written after evaluate.
type Metrics struct {
	Textfile string `yaml:"textfile"`
}

// Load reads .archq/settings.yaml relative to root.
// Returns nil (not an error) if the file does not exist.
func Load(root string) (*Settings, error) {
	path := filepath.Join(root, Dir, File)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return &s, nil
}

// LogLevel returns the configured level, or "" on a nil receiver.
func (s *Settings) LogLevel() string {
	if s == nil {
		return ""
	}
	return s.Log.Level
}

// MetricsTextfile returns the configured textfile path, or "".
func (s *Settings) MetricsTextfile() string {
	if s == nil {
		return ""
	}
	return s.Metrics.Textfile
}

// IsExcluded reports whether factorPath matches any exclude rule. Safe to
// call on a nil *Settings receiver.
func (s *Settings) IsExcluded(factorPath string) bool {
	if s == nil {
		return false
	}
	for _, rule := range s.Evaluation.Exclude {
		if matchPattern(parseExcludeRule(rule), factorPath) {
			return true
		}
	}
	return false
}

// Excluder returns a predicate over factor ids for evaluation.WithExclude.
// A factor is excluded when its id or any "<category>/<id>" path matches.
func (s *Settings) Excluder(qm *qualitymodel.QualityModel) func(factorID string) bool {
	return func(factorID string) bool {
		if s.IsExcluded(factorID) {
			return true
		}
		f, ok := qm.Factor(factorID)
		if !ok {
			return false
		}
		for _, cat := range f.Categories {
			if s.IsExcluded(cat + "/" + factorID) {
				return true
			}
		}
		return false
	}
}

// parseExcludeRule extracts the glob from an exclude rule.
//
//	"Factor(./security/**)" → "security/**"
//	"security/**"           → "security/**"
func parseExcludeRule(rule string) string {
	rule = strings.TrimSpace(rule)
	if strings.HasPrefix(rule, "Factor(") && strings.HasSuffix(rule, ")") {
		rule = rule[len("Factor(") : len(rule)-1]
	}
	return strings.TrimPrefix(rule, "./")
}

// matchPattern reports whether path matches an exclude glob.
//
// "prefix/**" matches the prefix itself and every path beneath it.
// All other patterns use filepath.Match semantics (single * does not cross /).
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}

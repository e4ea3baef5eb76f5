// Package frontmatter reads and writes markdown notes that carry YAML
// frontmatter between --- delimiters.
package frontmatter

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Meta is the frontmatter every generated report note carries.
type Meta struct {
	Tags   []string `yaml:"tags"`
	Run    string   `yaml:"run,omitempty"`
	ID     string   `yaml:"id,omitempty"`
	Result string   `yaml:"result,omitempty"`
}

// Parse splits a markdown document into its frontmatter (raw YAML bytes) and
// body. The document must begin with "---\n"; the closing "---" line ends the
// frontmatter block. One blank line separating the block from the body is
// dropped.
func Parse(data []byte) (frontmatter []byte, body []byte, err error) {
	const delim = "---\n"
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	// An empty block closes immediately.
	if bytes.HasPrefix(rest, []byte("---")) {
		return nil, skipNewline(rest[3:]), nil
	}
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	return rest[:idx], skipNewline(rest[idx+4:]), nil
}

func skipNewline(b []byte) []byte {
	for i := 0; i < 2 && len(b) > 0 && b[0] == '\n'; i++ {
		b = b[1:]
	}
	return b
}

// Decode parses data, unmarshals its frontmatter into v and returns the body.
func Decode(data []byte, v any) ([]byte, error) {
	fm, body, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(fm, v); err != nil {
		return nil, fmt.Errorf("frontmatter: unmarshal: %w", err)
	}
	return body, nil
}

// Write marshals v as YAML frontmatter and concatenates body, returning the
// complete markdown document with --- delimiters.
func Write(v any, body string) ([]byte, error) {
	fm, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
	}
	return buf.Bytes(), nil
}

// Note renders a report note. Tags are sorted and deduplicated so that
// repeated renders are byte-identical.
func Note(meta Meta, body string) (string, error) {
	seen := make(map[string]bool, len(meta.Tags))
	tags := make([]string, 0, len(meta.Tags))
	for _, t := range meta.Tags {
		if t != "" && !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	meta.Tags = tags
	data, err := Write(meta, body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

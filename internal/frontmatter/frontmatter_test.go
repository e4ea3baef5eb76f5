package frontmatter_test

import (
	"strings"
	"testing"

	"archq/internal/frontmatter"
)

func TestParseRoundtrip(t *testing.T) {
	type meta struct {
		Exporter string `yaml:"exporter"`
		Run      string `yaml:"run"`
	}

	m := meta{Exporter: "markdown", Run: "abc123"}
	body := "# Hello\n\nworld\n"

	data, err := frontmatter.Write(m, body)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got meta
	gotBody, err := frontmatter.Decode(data, &got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != m {
		t.Errorf("frontmatter mismatch: got %+v want %+v", got, m)
	}
	if string(gotBody) != body {
		t.Errorf("body mismatch: got %q want %q", gotBody, body)
	}
}

func TestParseMissingOpen(t *testing.T) {
	_, _, err := frontmatter.Parse([]byte("no delimiter"))
	if err == nil {
		t.Fatal("expected error for missing opening delimiter")
	}
}

func TestParseMissingClose(t *testing.T) {
	_, _, err := frontmatter.Parse([]byte("---\nrun: abc\n"))
	if err == nil {
		t.Fatal("expected error for missing closing delimiter")
	}
}

func TestParseEmptyBlock(t *testing.T) {
	fm, body, err := frontmatter.Parse([]byte("---\n---\nbody\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(fm) != 0 {
		t.Errorf("expected empty frontmatter, got %q", fm)
	}
	if string(body) != "body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestNoteSortsTags(t *testing.T) {
	note, err := frontmatter.Note(frontmatter.Meta{
		Tags:   []string{"result/high", "product-factor", "result/high", ""},
		ID:     "service-replication",
		Result: "high",
	}, "# Service Replication\n")
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	want := "---\ntags:\n    - product-factor\n    - result/high\nid: service-replication\nresult: high\n---\n\n# Service Replication\n"
	if note != want {
		t.Errorf("Note() =\n%s\nwant\n%s", note, want)
	}

	var meta frontmatter.Meta
	if _, err := frontmatter.Decode([]byte(note), &meta); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if strings.Join(meta.Tags, ",") != "product-factor,result/high" {
		t.Errorf("tags = %v", meta.Tags)
	}
}

func TestWriteNoBody(t *testing.T) {
	type meta struct {
		X int `yaml:"x"`
	}
	data, err := frontmatter.Write(meta{X: 1}, "")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if string(data) != "---\nx: 1\n---\n" {
		t.Fatalf("unexpected output %q", data)
	}
}

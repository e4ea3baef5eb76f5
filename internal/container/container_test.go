package container_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"archq/internal/container"
)

// withTempHome redirects os.UserHomeDir to a temp directory for the duration of the test.
func withTempHome(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv(container.EnvHome, "")
	return tmp
}

func markdownProject(model string) container.ProjectConfig {
	return container.ProjectConfig{
		Model:     model,
		Exporters: map[string]map[string]string{"markdown": {"title": "Shop"}},
	}
}

func TestInitAndOpen(t *testing.T) {
	tmp := withTempHome(t)

	if err := container.Init("shop"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	dir := filepath.Join(tmp, ".archq", "shop")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("workspace dir not created: %v", err)
	}

	if err := container.Init("shop"); err == nil {
		t.Fatal("expected error on duplicate Init")
	}

	w, err := container.Open("shop")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if w.Dir != dir || w.Name != "shop" {
		t.Errorf("unexpected workspace %+v, want dir %s", w, dir)
	}
}

func TestHomeOverride(t *testing.T) {
	withTempHome(t)
	alt := t.TempDir()
	t.Setenv(container.EnvHome, alt)

	if err := container.Init("ws"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(alt, "ws")); err != nil {
		t.Fatalf("workspace not created under %s: %v", container.EnvHome, err)
	}
}

func TestInvalidNames(t *testing.T) {
	withTempHome(t)
	for _, name := range []string{"", "..", "a/b"} {
		if err := container.Init(name); err == nil {
			t.Errorf("Init(%q): expected error", name)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	withTempHome(t)
	_, err := container.Open("notexist")
	if err == nil {
		t.Fatal("expected error for missing workspace")
	}
	if !strings.Contains(err.Error(), "archq init notexist") {
		t.Errorf("error should suggest init, got: %v", err)
	}
}

func TestAddProjectAndLoad(t *testing.T) {
	withTempHome(t)
	if err := container.Init("w"); err != nil {
		t.Fatal(err)
	}
	w, _ := container.Open("w")

	model := filepath.Join(t.TempDir(), "model.yaml")
	if err := w.AddProject("shop", markdownProject(model)); err != nil {
		t.Fatalf("AddProject: %v", err)
	}

	if err := w.AddProject("shop", markdownProject(model)); err == nil {
		t.Fatal("expected error on duplicate AddProject")
	}

	got, err := w.LoadProject("shop")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if got.Model != model {
		t.Errorf("Model = %q, want %q", got.Model, model)
	}
	if got.Exporters["markdown"]["title"] != "Shop" {
		t.Errorf("unexpected config: %+v", got)
	}
}

func TestAddProject_Invalid(t *testing.T) {
	withTempHome(t)
	if err := container.Init("w"); err != nil {
		t.Fatal(err)
	}
	w, _ := container.Open("w")

	if err := w.AddProject("nomodel", container.ProjectConfig{
		Exporters: map[string]map[string]string{"yaml": {}},
	}); err == nil {
		t.Error("expected error for missing model path")
	}
	if err := w.AddProject("noexporter", container.ProjectConfig{Model: "m.yaml"}); err == nil {
		t.Error("expected error for missing exporters")
	}
}

func TestAddProject_RelativeModel(t *testing.T) {
	withTempHome(t)
	if err := container.Init("w"); err != nil {
		t.Fatal(err)
	}
	w, _ := container.Open("w")

	if err := w.AddProject("rel", markdownProject("models/shop.yaml")); err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	got, err := w.LoadProject("rel")
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if !filepath.IsAbs(got.Model) {
		t.Errorf("Model = %q, want an absolute path", got.Model)
	}
}

func TestListProjects(t *testing.T) {
	withTempHome(t)
	if err := container.Init("w"); err != nil {
		t.Fatal(err)
	}
	w, _ := container.Open("w")

	names, err := w.ListProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("expected 0 projects, got %d", len(names))
	}

	w.AddProject("beta", markdownProject("b.yaml"))
	w.AddProject("alpha", markdownProject("a.yaml"))

	names, err = w.ListProjects()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "alpha,beta" {
		t.Fatalf("expected [alpha beta], got %v", names)
	}
}

func TestRemoveProject(t *testing.T) {
	withTempHome(t)
	if err := container.Init("w"); err != nil {
		t.Fatal(err)
	}
	w, _ := container.Open("w")
	w.AddProject("shop", markdownProject("m.yaml"))
	reports := w.ReportDir("shop", "markdown")
	if err := os.MkdirAll(reports, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := w.RemoveProject("shop"); err != nil {
		t.Fatalf("RemoveProject: %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.Dir, "shop")); !os.IsNotExist(err) {
		t.Errorf("report directory should be removed, stat err = %v", err)
	}
	if err := w.RemoveProject("shop"); err == nil {
		t.Error("expected error removing a missing project")
	}
}

func TestBundle(t *testing.T) {
	withTempHome(t)
	if err := container.Init("w"); err != nil {
		t.Fatal(err)
	}
	w, _ := container.Open("w")
	w.AddProject("shop", markdownProject("m.yaml"))

	reports := w.ReportDir("shop", "markdown")
	if err := os.MkdirAll(filepath.Join(reports, "factors"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(reports, "factors", "data-sharding.md"), []byte("# Data Sharding\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	target, err := w.Bundle(dst, "# Review\n")
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	if target != filepath.Join(dst, ".tmp", "archq-bundle") {
		t.Errorf("target = %s", target)
	}

	data, err := os.ReadFile(filepath.Join(target, "shop-markdown", "factors", "data-sharding.md"))
	if err != nil {
		t.Fatalf("flattened report missing: %v", err)
	}
	if string(data) != "# Data Sharding\n" {
		t.Errorf("copied content = %q", data)
	}
	index, _ := os.ReadFile(filepath.Join(target, "index.md"))
	if string(index) != "# Review\n" {
		t.Errorf("index.md = %q", index)
	}
	if _, err := os.Stat(filepath.Join(target, "shop.yaml")); err == nil {
		t.Error("project configs must not be bundled")
	}

	if _, err := w.Bundle(dst, "again"); err == nil {
		t.Error("expected error when the bundle target exists")
	}
}

func TestListAndRemove(t *testing.T) {
	withTempHome(t)

	names, err := container.List()
	if err != nil || len(names) != 0 {
		t.Fatalf("List on a fresh home = %v, %v", names, err)
	}

	container.Init("b")
	container.Init("a")
	names, _ = container.List()
	if strings.Join(names, ",") != "a,b" {
		t.Fatalf("List() = %v", names)
	}

	if err := container.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := container.Remove("a"); err == nil {
		t.Error("expected error removing a missing workspace")
	}
}

// Package container manages archq workspaces under ~/.archq/.
//
// Directory layout:
//
//	~/.archq/<workspace>/
//	    <project>.yaml             # project config: model path and exporter config
//	    <project>/<exporter>/      # reports written by that exporter
//
// ARCHQ_HOME replaces ~/.archq when set.
package container

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvHome overrides the base directory.
const EnvHome = "ARCHQ_HOME"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Workspace is a named archq workspace directory (~/.archq/<name>/).
type Workspace struct {
	Name string
	Dir  string
}

// ProjectConfig stores the architecture model and per-exporter
// configuration for a project. Exporter keys are exporter names; values
// are config key/value maps.
type ProjectConfig struct {
	Model     string                       `yaml:"model" validate:"required"`
	Exporters map[string]map[string]string `yaml:"exporters" validate:"required,min=1"`
}

// baseDir returns ARCHQ_HOME or ~/.archq.
func baseDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".archq"), nil
}

func checkName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// Init creates ~/.archq/<name>/ and errors if it already exists.
func Init(name string) error {
	if err := checkName("workspace", name); err != nil {
		return err
	}
	base, err := baseDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(base, name)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("workspace %q already exists at %s", name, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

// Open opens an existing workspace directory.
func Open(name string) (*Workspace, error) {
	if err := checkName("workspace", name); err != nil {
		return nil, err
	}
	base, err := baseDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(base, name)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("workspace %q not found (run 'archq init %s' first)", name, name)
	}
	return &Workspace{Name: name, Dir: dir}, nil
}

func (w *Workspace) projectPath(name string) string {
	return filepath.Join(w.Dir, name+".yaml")
}

// ReportDir is where exporter writes the reports of project.
func (w *Workspace) ReportDir(project, exporter string) string {
	return filepath.Join(w.Dir, project, exporter)
}

// AddProject validates and writes a project config file. Errors if it
// already exists. A relative model path is stored as an absolute one.
func (w *Workspace) AddProject(name string, config ProjectConfig) error {
	if err := checkName("project", name); err != nil {
		return err
	}
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("project %q: %w", name, err)
	}
	path := w.projectPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("project %q already exists in workspace", name)
	}
	if abs, err := filepath.Abs(config.Model); err == nil {
		config.Model = abs
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal project config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	return nil
}

// LoadProject reads, parses and validates a project config file.
func (w *Workspace) LoadProject(name string) (*ProjectConfig, error) {
	data, err := os.ReadFile(w.projectPath(name))
	if err != nil {
		return nil, fmt.Errorf("read project %q: %w", name, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse project %q: %w", name, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("project %q: %w", name, err)
	}
	return &cfg, nil
}

// ListProjects returns project names derived from *.yaml files in the
// workspace, sorted.
func (w *Workspace) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("read workspace dir: %w", err)
	}
	var projects []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") {
			projects = append(projects, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// RemoveProject removes a project's config file and report directory.
func (w *Workspace) RemoveProject(name string) error {
	path := w.projectPath(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("project %q not found in workspace", name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove project config: %w", err)
	}
	reports := filepath.Join(w.Dir, name)
	if _, err := os.Stat(reports); err == nil {
		if err := os.RemoveAll(reports); err != nil {
			return fmt.Errorf("remove project reports: %w", err)
		}
	}
	return nil
}

// List returns the names of all workspaces, sorted.
func List() ([]string, error) {
	base, err := baseDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archq dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Bundle writes a flattened copy of the workspace's reports into
// dst/.tmp/archq-bundle/. Project configs are excluded. Each
// <project>/<exporter>/ directory becomes <project>-<exporter>/. The
// description is written to index.md.
//
// Errors if the target directory already exists.
func (w *Workspace) Bundle(dst, description string) (string, error) {
	tmpDir := filepath.Join(dst, ".tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create .tmp dir: %w", err)
	}
	target := filepath.Join(tmpDir, "archq-bundle")
	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("bundle target %q already exists", target)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create bundle dir: %w", err)
	}

	projects, err := w.ListProjects()
	if err != nil {
		return "", err
	}

	for _, proj := range projects {
		projDir := filepath.Join(w.Dir, proj)
		entries, err := os.ReadDir(projDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("read project dir %q: %w", proj, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			flatName := proj + "-" + e.Name()
			if err := copyDir(filepath.Join(projDir, e.Name()), filepath.Join(target, flatName)); err != nil {
				return "", fmt.Errorf("copy %s: %w", flatName, err)
			}
		}
	}

	if err := os.WriteFile(filepath.Join(target, "index.md"), []byte(description), 0o644); err != nil {
		return "", fmt.Errorf("write index.md: %w", err)
	}
	return target, nil
}

// copyDir recursively copies src to dst.
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		return copyFile(path, target)
	})
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// Remove deletes a workspace and all its contents.
func Remove(name string) error {
	if err := checkName("workspace", name); err != nil {
		return err
	}
	base, err := baseDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(base, name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("workspace %q not found", name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	return nil
}

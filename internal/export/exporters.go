package export

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"archq/internal/evaluation"
	"archq/internal/plugin"
	"archq/internal/qualitymodel"
)

// Markdown writes the full report bundle.
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

func (Markdown) Configure() ([]plugin.ConfigQuestion, error) {
	return []plugin.ConfigQuestion{
		{Key: "title", Prompt: "Report title (blank for the system name)", Type: "text"},
	}, nil
}

func (m Markdown) Export(res *evaluation.Result, qm *qualitymodel.QualityModel, config map[string]string, outputDir string) error {
	qs, _ := m.Configure()
	var opts []ReportOption
	if title := plugin.Answer(qs, config, "title"); title != "" {
		opts = append(opts, WithTitle(title))
	}
	bundle, err := GenerateReport(res, qm, opts...)
	if err != nil {
		return err
	}
	return WriteReport(bundle, outputDir)
}

// YAML writes only the machine-readable results file.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Configure() ([]plugin.ConfigQuestion, error) {
	return []plugin.ConfigQuestion{
		{Key: "file", Prompt: "Results file name (blank for results.yaml)", Type: "text", Default: "results.yaml"},
	}, nil
}

func (y YAML) Export(res *evaluation.Result, _ *qualitymodel.QualityModel, config map[string]string, outputDir string) error {
	qs, _ := y.Configure()
	name := plugin.Answer(qs, config, "file")
	if filepath.Base(name) != name {
		return fmt.Errorf("results file %q must be a plain file name", name)
	}
	data, err := yaml.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", outputDir, err)
	}
	return writeNote(filepath.Join(outputDir, name), string(data))
}

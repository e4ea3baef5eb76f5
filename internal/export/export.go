package export

// export.go converts an evaluation Result into a markdown report bundle.
//
// Report layout:
//   index.md             aspects table and links to every factor page
//   factors/<id>.md      one per product factor
//   measures.md          every measure value plus recorded failures
//   graphs/impacts.md    Mermaid LR graph of impacts annotated with results
//   results.yaml         the {id, name, result} and impact-edge contract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"archq/internal/evaluation"
	"archq/internal/frontmatter"
	"archq/internal/measure"
	"archq/internal/qualitymodel"
)

// Bundle holds pre-generated page content (path → content). Paths are
// relative to the output directory, using forward slashes.
type Bundle struct {
	pages map[string]string
	dirs  []string
}

// NewBundle returns an empty bundle that always creates dirs when written.
func NewBundle(dirs ...string) *Bundle {
	return &Bundle{pages: make(map[string]string), dirs: dirs}
}

// Add stores content under path, replacing any earlier page.
func (b *Bundle) Add(path, content string) {
	b.pages[path] = content
}

// Page returns the content stored under path.
func (b *Bundle) Page(path string) (string, bool) {
	p, ok := b.pages[path]
	return p, ok
}

// Paths returns every page path in sorted order.
func (b *Bundle) Paths() []string {
	paths := make([]string, 0, len(b.pages))
	for p := range b.pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type reportConfig struct {
	title string
}

// ReportOption customizes GenerateReport.
type ReportOption func(*reportConfig)

// WithTitle sets the index heading. The default is the system name.
func WithTitle(title string) ReportOption {
	return func(c *reportConfig) { c.title = title }
}

// GenerateReport builds all report pages from res. No files are written.
func GenerateReport(res *evaluation.Result, qm *qualitymodel.QualityModel, opts ...ReportOption) (*Bundle, error) {
	cfg := reportConfig{title: res.System}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.title == "" {
		cfg.title = "Architecture"
	}

	b := NewBundle("factors", "graphs")
	run := res.RunID.String()

	page, err := buildIndexPage(res, cfg.title)
	if err != nil {
		return nil, err
	}
	b.Add("index.md", page)

	for _, f := range res.Factors {
		pf, ok := qm.Factor(f.ID)
		if !ok {
			return nil, fmt.Errorf("factor %q is not in the quality model", f.ID)
		}
		page, err := buildFactorPage(res, qm, pf, f.Result)
		if err != nil {
			return nil, err
		}
		b.Add("factors/"+SanitizeFilename(f.ID)+".md", page)
	}

	if page, err = buildMeasuresPage(res, qm); err != nil {
		return nil, err
	}
	b.Add("measures.md", page)

	if page, err = buildImpactGraph(res, run); err != nil {
		return nil, err
	}
	b.Add("graphs/impacts.md", page)

	data, err := yaml.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	b.Add("results.yaml", string(data))

	return b, nil
}

// WriteReport writes all pages in bundle to outputDir in sorted path order.
// The bundle's directories are created even when they hold no page.
func WriteReport(bundle *Bundle, outputDir string) error {
	for _, sub := range bundle.dirs {
		if err := os.MkdirAll(filepath.Join(outputDir, sub), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", sub, err)
		}
	}
	for _, p := range bundle.Paths() {
		abs := filepath.Join(outputDir, filepath.FromSlash(p))
		if err := writeNote(abs, bundle.pages[p]); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Page builders
// ---------------------------------------------------------------------------

// buildIndexPage builds index.md, the entry point of the report.
func buildIndexPage(res *evaluation.Result, title string) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", title))
	b.WriteString(fmt.Sprintf("- **Run**: `%s`\n", res.RunID))
	if len(res.Errors) > 0 {
		b.WriteString(fmt.Sprintf("- **Failures**: %d (see [[measures|Measures]])\n", len(res.Errors)))
	}
	b.WriteString("\n## Quality Aspects\n\n")
	b.WriteString("| Aspect | Assessment |\n")
	b.WriteString("|--------|------------|\n")
	for _, a := range res.Aspects {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", a.Name, a.Result))
	}

	b.WriteString("\n## Product Factors\n\n")
	for _, f := range res.Factors {
		b.WriteString(fmt.Sprintf("- [[factors/%s|%s]]: %s\n", SanitizeFilename(f.ID), f.Name, f.Result))
	}
	b.WriteString("\nSee also [[measures|Measures]] and [[graphs/impacts|Impact Graph]].\n")

	return frontmatter.Note(frontmatter.Meta{
		Tags: []string{"archq/index"},
		Run:  res.RunID.String(),
	}, b.String())
}

// buildFactorPage builds factors/<id>.md for one product factor.
func buildFactorPage(res *evaluation.Result, qm *qualitymodel.QualityModel, pf *qualitymodel.ProductFactor, v measure.Value) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", pf.Name))
	if pf.Description != "" {
		b.WriteString(pf.Description + "\n\n")
	}
	b.WriteString(fmt.Sprintf("**Result**: %s\n", v))
	if len(pf.Categories) > 0 {
		b.WriteString(fmt.Sprintf("**Categories**: %s\n", strings.Join(pf.Categories, ", ")))
	}

	if ev := pf.Evaluation; ev != nil {
		b.WriteString("\n## Evaluation\n\n")
		b.WriteString(describeEvaluation(ev) + "\n")
		if ev.Kind == qualitymodel.EvalCombination {
			b.WriteString("\n")
			for _, id := range ev.Factors {
				r, _ := res.Factor(id)
				b.WriteString(fmt.Sprintf("- [[factors/%s|%s]]: %s\n", SanitizeFilename(id), id, r))
			}
		}
	}

	if len(pf.Measures) > 0 {
		b.WriteString("\n## Measures\n\n")
		b.WriteString("| Measure | Value |\n")
		b.WriteString("|---------|-------|\n")
		for _, id := range pf.Measures {
			name := id
			if m, ok := qm.Measure(id); ok {
				name = m.Name
			}
			r, _ := res.Measure(id)
			b.WriteString(fmt.Sprintf("| %s | %s |\n", name, r))
		}
	}

	if len(pf.Impacts) > 0 {
		b.WriteString("\n## Impacts\n\n")
		b.WriteString("| Target | Type | Weight | Target Result |\n")
		b.WriteString("|--------|------|--------|---------------|\n")
		for _, imp := range pf.Impacts {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				targetLink(qm, imp.Target), imp.Type, weightLabel(imp.Weight), targetResult(res, imp.Target)))
		}
	}

	var incoming []string
	for _, imp := range qm.ImpactsInto(pf.ID) {
		incoming = append(incoming, fmt.Sprintf("- [[factors/%s|%s]] (%s)\n", SanitizeFilename(imp.Source), imp.Source, imp.Type))
	}
	if len(incoming) > 0 {
		b.WriteString("\n## Impacted By\n\n")
		b.WriteString(strings.Join(incoming, ""))
	}

	return frontmatter.Note(frontmatter.Meta{
		Tags:   []string{"product-factor", resultTag(v)},
		Run:    res.RunID.String(),
		ID:     pf.ID,
		Result: v.String(),
	}, b.String())
}

// buildMeasuresPage builds measures.md with every measure value and the
// failures recorded during evaluation.
func buildMeasuresPage(res *evaluation.Result, qm *qualitymodel.QualityModel) (string, error) {
	var b strings.Builder
	b.WriteString("# Measures\n\n")
	b.WriteString("| Measure | ID | Value |\n")
	b.WriteString("|---------|----|-------|\n")
	for _, m := range res.Measures {
		b.WriteString(fmt.Sprintf("| %s | `%s` | %s |\n", m.Name, m.ID, m.Result))
	}

	b.WriteString("\n## Failures\n\n")
	if len(res.Errors) == 0 {
		b.WriteString("_None._\n")
	} else {
		for _, e := range res.Errors {
			b.WriteString(fmt.Sprintf("- `%s`: %v\n", e.ID, e.Err))
		}
	}

	var calc []string
	for _, m := range res.Measures {
		if cm, ok := qm.Measure(m.ID); ok && cm.Calculation != "" {
			calc = append(calc, fmt.Sprintf("- **%s**: %s\n", cm.Name, strings.TrimSpace(cm.Calculation)))
		}
	}
	if len(calc) > 0 {
		b.WriteString("\n## Calculations\n\n")
		b.WriteString(strings.Join(calc, ""))
	}

	return frontmatter.Note(frontmatter.Meta{
		Tags: []string{"archq/measures"},
		Run:  res.RunID.String(),
	}, b.String())
}

// buildImpactGraph builds graphs/impacts.md, a Mermaid LR graph whose nodes
// are factors and aspects labelled with their results. Negative impacts are
// drawn dotted.
func buildImpactGraph(res *evaluation.Result, run string) (string, error) {
	var b strings.Builder
	b.WriteString("# Impact Graph\n\n")

	if len(res.Impacts) == 0 {
		b.WriteString("_No impacts._\n")
	} else {
		b.WriteString("```mermaid\ngraph LR\n")
		for _, e := range append(append([]evaluation.Entry{}, res.Factors...), res.Aspects...) {
			b.WriteString(fmt.Sprintf("  %s[\"%s<br/>%s\"]\n", nodeID(e.ID), e.Name, e.Result))
		}
		edges := append([]evaluation.ImpactEdge{}, res.Impacts...)
		sort.SliceStable(edges, func(i, j int) bool {
			if edges[i].SourceID != edges[j].SourceID {
				return edges[i].SourceID < edges[j].SourceID
			}
			return edges[i].TargetID < edges[j].TargetID
		})
		for _, e := range edges {
			arrow := "-->"
			if e.Type == string(qualitymodel.ImpactNegative) {
				arrow = "-.->"
			}
			b.WriteString(fmt.Sprintf("  %s %s|%s| %s\n", nodeID(e.SourceID), arrow, e.Weight, nodeID(e.TargetID)))
		}
		b.WriteString("```\n")
	}

	return frontmatter.Note(frontmatter.Meta{
		Tags: []string{"archq/graph"},
		Run:  run,
	}, b.String())
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func describeEvaluation(ev *qualitymodel.EvaluationSpec) string {
	switch ev.Kind {
	case qualitymodel.EvalThreshold:
		dir := "lower is better"
		if ev.HigherIsBetter {
			dir = "higher is better"
		}
		return fmt.Sprintf("Threshold on `%s` (%s): high %g, moderate %g, low %g.",
			ev.Measure, dir, ev.Bounds.High, ev.Bounds.Moderate, ev.Bounds.Low)
	case qualitymodel.EvalMapping:
		keys := make([]string, 0, len(ev.Mapping))
		for k := range ev.Mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + " → " + string(ev.Mapping[k])
		}
		return fmt.Sprintf("Mapping of `%s`: %s.", ev.Measure, strings.Join(pairs, ", "))
	case qualitymodel.EvalNumeric:
		return fmt.Sprintf("Value of `%s`.", ev.Measure)
	case qualitymodel.EvalCombination:
		return fmt.Sprintf("Combination (%s) of:", ev.Operator)
	}
	return string(ev.Kind)
}

func targetLink(qm *qualitymodel.QualityModel, id string) string {
	if _, ok := qm.Factor(id); ok {
		return fmt.Sprintf("[[factors/%s|%s]]", SanitizeFilename(id), id)
	}
	if a, ok := qm.Aspect(id); ok {
		return a.Name
	}
	return id
}

func targetResult(res *evaluation.Result, id string) measure.Value {
	if v, ok := res.Factor(id); ok {
		return v
	}
	v, _ := res.Aspect(id)
	return v
}

func weightLabel(w qualitymodel.ImpactWeight) string {
	if w == "" {
		return string(qualitymodel.WeightNA)
	}
	return string(w)
}

// resultTag maps a factor result to a tag: result/<category>, result/numeric
// or result/n-a.
func resultTag(v measure.Value) string {
	switch {
	case v.IsNumber():
		return "result/numeric"
	case v.IsCategory():
		return "result/" + SanitizeFilename(v.String())
	}
	return "result/n-a"
}

// nodeID turns a catalog id into a Mermaid-safe node identifier.
func nodeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, id)
}

// SanitizeFilename replaces / and . with -, collapses consecutive - to one,
// and trims leading/trailing -.
func SanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, ".", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	return s
}

// writeNote writes content to path, creating parent directories as needed.
func writeNote(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

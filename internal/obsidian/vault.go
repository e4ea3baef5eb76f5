package obsidian

// vault.go — Converts an evaluation Result into an Obsidian vault.
//
// Factors and measures form a bipartite graph: each factor note wiki-links
// to the measures it reads and the aspects it impacts; each measure note
// links back to every factor that uses it. Aspect notes link back to the
// factors impacting them.
//
// Vault layout:
//   index.md              entry point listing aspects and factors
//   aspects/<id>.md       one note per quality aspect
//   factors/<id>.md       one note per product factor
//   measures/<id>.md      one note per measure used by a factor

import (
	"fmt"
	"strings"

	"archq/internal/evaluation"
	"archq/internal/export"
	"archq/internal/frontmatter"
	"archq/internal/plugin"
	"archq/internal/qualitymodel"
)

// measureRole records one factor's use of a measure.
type measureRole struct {
	factorID string
	role     string // "evaluated" | "input"
}

// collectMeasures gathers every measure a factor names, returning
// measure id → roles in factor order. The measure a factor's evaluation
// reads is "evaluated"; other listed measures are "input".
func collectMeasures(factors []*qualitymodel.ProductFactor) (map[string][]measureRole, []string) {
	m := make(map[string][]measureRole)
	var order []string
	add := func(id string, r measureRole) {
		for _, existing := range m[id] {
			if existing.factorID == r.factorID {
				return
			}
		}
		if _, seen := m[id]; !seen {
			order = append(order, id)
		}
		m[id] = append(m[id], r)
	}
	for _, f := range factors {
		if ev := f.Evaluation; ev != nil && ev.Measure != "" {
			add(ev.Measure, measureRole{factorID: f.ID, role: "evaluated"})
		}
		for _, id := range f.Measures {
			add(id, measureRole{factorID: f.ID, role: "input"})
		}
	}
	return m, order
}

// ---------------------------------------------------------------------------
// Public API
// ---------------------------------------------------------------------------

// GenerateVault builds the vault pages for res. Tags are prefixed with
// prefix. No files are written.
func GenerateVault(res *evaluation.Result, qm *qualitymodel.QualityModel, prefix string) (*export.Bundle, error) {
	b := export.NewBundle("aspects", "factors", "measures")
	v := vault{res: res, qm: qm, prefix: prefix, run: res.RunID.String()}

	page, err := v.index()
	if err != nil {
		return nil, err
	}
	b.Add("index.md", page)

	for _, a := range res.Aspects {
		page, err := v.aspectNote(a)
		if err != nil {
			return nil, err
		}
		b.Add("aspects/"+export.SanitizeFilename(a.ID)+".md", page)
	}

	for _, f := range res.Factors {
		pf, ok := qm.Factor(f.ID)
		if !ok {
			return nil, fmt.Errorf("factor %q is not in the quality model", f.ID)
		}
		page, err := v.factorNote(pf, f)
		if err != nil {
			return nil, err
		}
		b.Add("factors/"+export.SanitizeFilename(f.ID)+".md", page)
	}

	roles, order := collectMeasures(qm.Factors)
	for _, id := range order {
		page, err := v.measureNote(id, roles[id])
		if err != nil {
			return nil, err
		}
		b.Add("measures/"+export.SanitizeFilename(id)+".md", page)
	}

	return b, nil
}

// Vault is the obsidian exporter.
type Vault struct{}

func (Vault) Name() string { return "obsidian" }

func (Vault) Configure() ([]plugin.ConfigQuestion, error) {
	return []plugin.ConfigQuestion{
		{Key: "tag_prefix", Prompt: "Tag prefix (blank for archq)", Type: "text", Default: "archq"},
	}, nil
}

func (v Vault) Export(res *evaluation.Result, qm *qualitymodel.QualityModel, config map[string]string, outputDir string) error {
	qs, _ := v.Configure()
	bundle, err := GenerateVault(res, qm, plugin.Answer(qs, config, "tag_prefix"))
	if err != nil {
		return err
	}
	return export.WriteReport(bundle, outputDir)
}

// ---------------------------------------------------------------------------
// Note builders
// ---------------------------------------------------------------------------

type vault struct {
	res    *evaluation.Result
	qm     *qualitymodel.QualityModel
	prefix string
	run    string
}

func (v vault) tag(t string) string {
	if v.prefix == "" {
		return t
	}
	return v.prefix + "/" + t
}

func (v vault) note(id, result string, tags []string, body string) (string, error) {
	prefixed := make([]string, len(tags))
	for i, t := range tags {
		prefixed[i] = v.tag(t)
	}
	return frontmatter.Note(frontmatter.Meta{Tags: prefixed, Run: v.run, ID: id, Result: result}, body)
}

// index builds index.md, the entry point listing all aspects and factors.
func (v vault) index() (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", v.res.System))

	b.WriteString("## Quality Aspects\n\n")
	for _, a := range v.res.Aspects {
		b.WriteString(fmt.Sprintf("- [[aspects/%s|%s]]: %s\n", export.SanitizeFilename(a.ID), a.Name, a.Result))
	}

	b.WriteString("\n## Product Factors\n\n")
	for _, f := range v.res.Factors {
		b.WriteString(fmt.Sprintf("- [[factors/%s|%s]]: %s\n", export.SanitizeFilename(f.ID), f.Name, f.Result))
	}

	return v.note("", "", []string{"index"}, b.String())
}

// aspectNote builds aspects/<id>.md with back-links to impacting factors.
func (v vault) aspectNote(a evaluation.Entry) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", a.Name))
	if qa, ok := v.qm.Aspect(a.ID); ok && qa.Description != "" {
		b.WriteString(qa.Description + "\n\n")
	}
	b.WriteString(fmt.Sprintf("**Assessment**: %s\n", a.Result))

	impacts := v.qm.ImpactsInto(a.ID)
	if len(impacts) > 0 {
		b.WriteString("\n## Impacted By\n\n")
		b.WriteString("| Factor | Type | Weight | Result |\n")
		b.WriteString("|--------|------|--------|--------|\n")
		for _, imp := range impacts {
			r, _ := v.res.Factor(imp.Source)
			weight := string(imp.Weight)
			if weight == "" {
				weight = string(qualitymodel.WeightNA)
			}
			b.WriteString(fmt.Sprintf("| [[factors/%s|%s]] | %s | %s | %s |\n",
				export.SanitizeFilename(imp.Source), imp.Source, imp.Type, weight, r))
		}
	}

	return v.note(a.ID, a.Result.String(), []string{"aspect"}, b.String())
}

// factorNote builds factors/<id>.md. Single-measure factors use a key/value
// layout; factors with several measures use a table.
func (v vault) factorNote(pf *qualitymodel.ProductFactor, f evaluation.Entry) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", pf.Name))
	if pf.Description != "" {
		b.WriteString(pf.Description + "\n\n")
	}
	b.WriteString(fmt.Sprintf("**Result**: %s\n", f.Result))

	tags := []string{"factor"}
	for _, c := range pf.Categories {
		tags = append(tags, "category/"+export.SanitizeFilename(c))
	}

	measures := factorMeasures(pf)
	switch len(measures) {
	case 0:
	case 1:
		r, _ := v.res.Measure(measures[0])
		b.WriteString(fmt.Sprintf("**Measure**: [[measures/%s|%s]] = %s\n", export.SanitizeFilename(measures[0]), measures[0], r))
	default:
		b.WriteString("\n## Measures\n\n")
		b.WriteString("| Measure | Value |\n")
		b.WriteString("|---------|-------|\n")
		for _, id := range measures {
			r, _ := v.res.Measure(id)
			b.WriteString(fmt.Sprintf("| [[measures/%s|%s]] | %s |\n", export.SanitizeFilename(id), id, r))
		}
	}

	if ev := pf.Evaluation; ev != nil && ev.Kind == qualitymodel.EvalCombination {
		b.WriteString(fmt.Sprintf("\n## Combines (%s)\n\n", ev.Operator))
		for _, id := range ev.Factors {
			b.WriteString(fmt.Sprintf("- [[factors/%s|%s]]\n", export.SanitizeFilename(id), id))
		}
	}

	if len(pf.Impacts) > 0 {
		b.WriteString("\n## Impacts\n\n")
		for _, imp := range pf.Impacts {
			dir := "aspects"
			if _, ok := v.qm.Factor(imp.Target); ok {
				dir = "factors"
			}
			b.WriteString(fmt.Sprintf("- [[%s/%s|%s]] (%s)\n", dir, export.SanitizeFilename(imp.Target), imp.Target, imp.Type))
		}
	}

	return v.note(pf.ID, f.Result.String(), tags, b.String())
}

// measureNote builds measures/<id>.md with back-links to every factor using it.
func (v vault) measureNote(id string, roles []measureRole) (string, error) {
	var b strings.Builder
	name := id
	if m, ok := v.qm.Measure(id); ok {
		name = m.Name
	}
	r, _ := v.res.Measure(id)
	b.WriteString(fmt.Sprintf("# %s\n\n", name))
	b.WriteString(fmt.Sprintf("**Value**: %s\n", r))
	if m, ok := v.qm.Measure(id); ok && m.Calculation != "" {
		b.WriteString("\n" + strings.TrimSpace(m.Calculation) + "\n")
	}

	tags := []string{"measure"}
	b.WriteString("\n| Role | Factor |\n")
	b.WriteString("|------|--------|\n")
	for _, mr := range roles {
		tags = append(tags, "factor/"+mr.factorID)
		b.WriteString(fmt.Sprintf("| %s | [[factors/%s|%s]] |\n", mr.role, export.SanitizeFilename(mr.factorID), mr.factorID))
	}

	return v.note(id, r.String(), tags, b.String())
}

// factorMeasures lists the evaluation measure first, then the remaining
// listed measures without duplicates.
func factorMeasures(pf *qualitymodel.ProductFactor) []string {
	var out []string
	seen := make(map[string]bool)
	if ev := pf.Evaluation; ev != nil && ev.Measure != "" {
		out = append(out, ev.Measure)
		seen[ev.Measure] = true
	}
	for _, id := range pf.Measures {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

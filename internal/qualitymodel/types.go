// Package qualitymodel is the catalog of quality aspects, product factors,
// measures and the weighted impacts between them. The catalog is reference
// data: it is loaded once at startup with Load and passed to the
// evaluation engine explicitly.
package qualitymodel

// Category is the categorical result of a product factor.
type Category string

const (
	CategoryNA       Category = "n/a"
	CategoryNone     Category = "none"
	CategoryLow      Category = "low"
	CategoryModerate Category = "moderate"
	CategoryHigh     Category = "high"
)

// Rank orders categories none < low < moderate < high. The second result is
// false for n/a and unknown values.
func (c Category) Rank() (int, bool) {
	switch c {
	case CategoryNone:
		return 0, true
	case CategoryLow:
		return 1, true
	case CategoryModerate:
		return 2, true
	case CategoryHigh:
		return 3, true
	}
	return 0, false
}

// CategoryFromRank is the inverse of Rank, clamping out-of-range values.
func CategoryFromRank(r int) Category {
	switch {
	case r <= 0:
		return CategoryNone
	case r == 1:
		return CategoryLow
	case r == 2:
		return CategoryModerate
	default:
		return CategoryHigh
	}
}

// ImpactType is the direction of an impact.
type ImpactType string

const (
	ImpactPositive ImpactType = "positive"
	ImpactNegative ImpactType = "negative"
)

// ImpactWeight refines an impact's strength. The zero value means the
// catalog does not weigh the impact.
type ImpactWeight string

const (
	WeightNeutral          ImpactWeight = "neutral"
	WeightSlightlyPositive ImpactWeight = "slightly-positive"
	WeightPositive         ImpactWeight = "positive"
	WeightSlightlyNegative ImpactWeight = "slightly-negative"
	WeightNegative         ImpactWeight = "negative"
	WeightNA               ImpactWeight = "n/a"
)

// QualityAspect is a high-level quality goal. Its result is always derived
// from the product factors impacting it.
type QualityAspect struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// Impact is a directed, weighted edge from a product factor to another
// factor or to a quality aspect.
type Impact struct {
	Source string       `yaml:"-"`
	Target string       `yaml:"target" validate:"required"`
	Type   ImpactType   `yaml:"type" validate:"oneof=positive negative"`
	Weight ImpactWeight `yaml:"weight,omitempty" validate:"omitempty,oneof=neutral slightly-positive positive slightly-negative negative n/a"`
}

// EvaluationKind selects how a product factor is evaluated.
type EvaluationKind string

const (
	// EvalThreshold bands one numeric measure into a category.
	EvalThreshold EvaluationKind = "threshold"
	// EvalMapping maps a categorical measure value to a category.
	EvalMapping EvaluationKind = "mapping"
	// EvalNumeric reports the measure's number as the factor result.
	EvalNumeric EvaluationKind = "numeric"
	// EvalCombination folds the results of other factors.
	EvalCombination EvaluationKind = "combination"
)

// Operators for EvalCombination.
const (
	OpMin  = "min"
	OpMax  = "max"
	OpMean = "mean"
)

// Bounds are the three cut points of a threshold evaluation. With
// HigherIsBetter a value >= High is high, >= Moderate moderate, >= Low low
// and anything below none; otherwise the comparisons are <=.
type Bounds struct {
	High     float64 `yaml:"high"`
	Moderate float64 `yaml:"moderate"`
	Low      float64 `yaml:"low"`
}

// EvaluationSpec configures how a product factor turns measures or other
// factors into a result.
type EvaluationSpec struct {
	Kind           EvaluationKind      `yaml:"kind" validate:"oneof=threshold mapping numeric combination"`
	Measure        string              `yaml:"measure,omitempty"`
	HigherIsBetter bool                `yaml:"higherIsBetter,omitempty"`
	Bounds         *Bounds             `yaml:"bounds,omitempty"`
	Mapping        map[string]Category `yaml:"mapping,omitempty" validate:"omitempty,dive,oneof=n/a none low moderate high"`
	Operator       string              `yaml:"operator,omitempty" validate:"omitempty,oneof=min max mean"`
	Factors        []string            `yaml:"factors,omitempty"`
}

// ProductFactor is a qualitative architectural property evaluated from
// measures (or from other factors) and impacting aspects.
type ProductFactor struct {
	ID           string          `yaml:"id" validate:"required"`
	Name         string          `yaml:"name" validate:"required"`
	Description  string          `yaml:"description,omitempty"`
	ApplicableTo []string        `yaml:"applicableTo,omitempty"`
	Categories   []string        `yaml:"categories,omitempty"`
	Sources      []string        `yaml:"sources,omitempty"`
	Measures     []string        `yaml:"measures,omitempty"`
	Evaluation   *EvaluationSpec `yaml:"evaluation,omitempty"`
	Impacts      []Impact        `yaml:"impacts,omitempty" validate:"dive"`
}

// Measure describes a metric computed from the entity graph. The
// implementation lives in package measure under the same id.
type Measure struct {
	ID           string   `yaml:"id" validate:"required"`
	Name         string   `yaml:"name" validate:"required"`
	Calculation  string   `yaml:"calculation,omitempty"`
	ApplicableTo []string `yaml:"applicableTo,omitempty"`
}

// QualityModel is the immutable catalog.
type QualityModel struct {
	Aspects  []*QualityAspect `yaml:"aspects" validate:"required,dive"`
	Factors  []*ProductFactor `yaml:"factors" validate:"required,dive"`
	Measures []*Measure       `yaml:"measures" validate:"dive"`

	aspectByID  map[string]*QualityAspect
	factorByID  map[string]*ProductFactor
	measureByID map[string]*Measure
	impacts     []Impact
	order       []*ProductFactor
}

func (qm *QualityModel) Aspect(id string) (*QualityAspect, bool) {
	a, ok := qm.aspectByID[id]
	return a, ok
}

func (qm *QualityModel) Factor(id string) (*ProductFactor, bool) {
	f, ok := qm.factorByID[id]
	return f, ok
}

func (qm *QualityModel) Measure(id string) (*Measure, bool) {
	m, ok := qm.measureByID[id]
	return m, ok
}

// Impacts returns every impact with its Source filled in, in catalog order.
func (qm *QualityModel) Impacts() []Impact {
	return qm.impacts
}

// ImpactsInto returns the impacts whose target is id.
func (qm *QualityModel) ImpactsInto(id string) []Impact {
	var out []Impact
	for _, imp := range qm.impacts {
		if imp.Target == id {
			out = append(out, imp)
		}
	}
	return out
}

// EvaluationOrder returns all factors ordered so that every factor comes
// after the factors it combines and the factors impacting it. Otherwise
// catalog order is kept.
func (qm *QualityModel) EvaluationOrder() []*ProductFactor {
	return qm.order
}

package evaluation

import (
	"math"

	"archq/internal/measure"
	"archq/internal/qualitymodel"
)

// evaluateFactor returns the result of f given the measure results and the
// results of factors evaluated so far. Factors without an evaluation spec,
// or whose inputs are n/a or of the wrong shape, are n/a.
func evaluateFactor(f *qualitymodel.ProductFactor, measures, factors map[string]measure.Value) measure.Value {
	ev := f.Evaluation
	if ev == nil {
		return measure.NotApplicable()
	}

	switch ev.Kind {
	case qualitymodel.EvalThreshold:
		x, ok := measures[ev.Measure].Float()
		if !ok || ev.Bounds == nil {
			return measure.NotApplicable()
		}
		return categoryValue(band(x, *ev.Bounds, ev.HigherIsBetter))

	case qualitymodel.EvalMapping:
		v := measures[ev.Measure]
		if v.IsNA() {
			return measure.NotApplicable()
		}
		cat, ok := ev.Mapping[v.String()]
		if !ok {
			return measure.NotApplicable()
		}
		return categoryValue(cat)

	case qualitymodel.EvalNumeric:
		if x, ok := measures[ev.Measure].Float(); ok {
			return measure.Number(x)
		}
		return measure.NotApplicable()

	case qualitymodel.EvalCombination:
		return combine(ev.Operator, ev.Factors, factors)
	}
	return measure.NotApplicable()
}

// band places x into the threshold bands. Bounds are inclusive.
func band(x float64, b qualitymodel.Bounds, higherIsBetter bool) qualitymodel.Category {
	reaches := func(bound float64) bool {
		if higherIsBetter {
			return x >= bound
		}
		return x <= bound
	}
	switch {
	case reaches(b.High):
		return qualitymodel.CategoryHigh
	case reaches(b.Moderate):
		return qualitymodel.CategoryModerate
	case reaches(b.Low):
		return qualitymodel.CategoryLow
	default:
		return qualitymodel.CategoryNone
	}
}

// combine folds the categorical results of sub-factors. n/a and numeric
// sub-results are skipped; mean rounds half away from zero.
func combine(op string, ids []string, factors map[string]measure.Value) measure.Value {
	var ranks []int
	for _, id := range ids {
		if r, ok := rankOf(factors[id]); ok {
			ranks = append(ranks, r)
		}
	}
	if len(ranks) == 0 {
		return measure.NotApplicable()
	}

	switch op {
	case qualitymodel.OpMin:
		return categoryValue(qualitymodel.CategoryFromRank(minInts(ranks)))
	case qualitymodel.OpMax:
		return categoryValue(qualitymodel.CategoryFromRank(maxInts(ranks)))
	case qualitymodel.OpMean:
		var sum int
		for _, r := range ranks {
			sum += r
		}
		m := math.Round(float64(sum) / float64(len(ranks)))
		return categoryValue(qualitymodel.CategoryFromRank(int(m)))
	}
	return measure.NotApplicable()
}

func categoryValue(c qualitymodel.Category) measure.Value {
	return measure.Category(string(c))
}

// rankOf returns the rank of a categorical factor result.
func rankOf(v measure.Value) (int, bool) {
	label, ok := v.Label()
	if !ok {
		return 0, false
	}
	return qualitymodel.Category(label).Rank()
}

func minInts(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		m = min(m, x)
	}
	return m
}

func maxInts(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		m = max(m, x)
	}
	return m
}

package evaluation

import (
	"math"

	"archq/internal/measure"
	"archq/internal/qualitymodel"
)

// weightOf is the signed strength of an impact. An unweighted impact
// counts with the full strength of its type.
func weightOf(imp qualitymodel.Impact) int {
	switch imp.Weight {
	case qualitymodel.WeightPositive:
		return 2
	case qualitymodel.WeightSlightlyPositive:
		return 1
	case qualitymodel.WeightNeutral:
		return 0
	case qualitymodel.WeightSlightlyNegative:
		return -1
	case qualitymodel.WeightNegative:
		return -2
	}
	if imp.Type == qualitymodel.ImpactNegative {
		return -2
	}
	return 2
}

// topRank is the rank of the high category.
const topRank = 3

// impactedRank folds the impacts other factors have on a factor into its
// own result. The own categorical result counts with strength 2. Every
// impact whose source has a rank r counts with the absolute strength of
// the impact, as r when positive and as topRank-r when negative. Neutral
// impacts and sources without a rank are skipped. The weighted mean is
// rounded; without any input the result is n/a.
func impactedRank(own measure.Value, impacts []qualitymodel.Impact, ranks map[string]measure.Value) measure.Value {
	var sum, total int
	if r, ok := rankOf(own); ok {
		sum += 2 * r
		total += 2
	}
	for _, imp := range impacts {
		r, ok := rankOf(ranks[imp.Source])
		if !ok {
			continue
		}
		switch w := weightOf(imp); {
		case w > 0:
			sum += w * r
			total += w
		case w < 0:
			sum += -w * (topRank - r)
			total += -w
		}
	}
	if total == 0 {
		return measure.NotApplicable()
	}
	m := math.Round(float64(sum) / float64(total))
	return categoryValue(qualitymodel.CategoryFromRank(int(m)))
}

// assess folds the impacts into one aspect. Each impact whose source
// factor has a rank contributes rank x weight, where rank runs none=0 to
// high=3. Factor ranks already carry the impacts between factors.
//
// No contribution gives n/a. When positive and negative mass are both
// present and neither is at least twice the other the aspect is mixed.
// Otherwise the mean contribution m is banded: m >= 3 positive, m >= 1
// slightly positive, m > -1 neutral, m > -3 slightly negative, else
// negative.
func assess(impacts []qualitymodel.Impact, factors map[string]measure.Value) measure.Value {
	var n, sum, pos, neg int
	for _, imp := range impacts {
		rank, ok := rankOf(factors[imp.Source])
		if !ok {
			continue
		}
		c := rank * weightOf(imp)
		n++
		sum += c
		switch {
		case c > 0:
			pos += c
		case c < 0:
			neg -= c
		}
	}
	if n == 0 {
		return measure.NotApplicable()
	}
	if pos > 0 && neg > 0 && pos < 2*neg && neg < 2*pos {
		return measure.Category(AssessmentMixed)
	}

	m := float64(sum) / float64(n)
	switch {
	case m >= 3:
		return measure.Category(AssessmentPositive)
	case m >= 1:
		return measure.Category(AssessmentSlightlyPositive)
	case m > -1:
		return measure.Category(AssessmentNeutral)
	case m > -3:
		return measure.Category(AssessmentSlightlyNegative)
	default:
		return measure.Category(AssessmentNegative)
	}
}

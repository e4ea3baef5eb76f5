package measure

import "archq/internal/model"

// RequestTraceLength is the number of segments of t.
func RequestTraceLength(_ *model.System, t *model.RequestTrace) (Value, error) {
	return Number(float64(len(t.Segments()))), nil
}

// RequestTraceCycles walks the links of t in order and counts the links
// whose target component was already visited in the trace. A link's
// source is marked visited when first seen, since a caller reappearing
// as the source of its next call is not a cycle.
func RequestTraceCycles(sys *model.System, t *model.RequestTrace) (Value, error) {
	calls, err := resolveTrace(sys, t)
	if err != nil {
		return Value{}, err
	}
	visited := make(map[string]bool)
	closing := make(map[*model.Link]bool)
	for _, c := range calls {
		visited[c.from] = true
		if visited[c.to] {
			closing[c.link] = true
			continue
		}
		visited[c.to] = true
	}
	return Number(float64(len(closing))), nil
}

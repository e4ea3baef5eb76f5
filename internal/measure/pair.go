package measure

import (
	"archq/internal/model"
)

// jaccard is |a∩b| / |a∪b| over id sets, 0 for an empty union.
func jaccard(a, b []string) float64 {
	union := make(map[string]bool, len(a)+len(b))
	inA := make(map[string]bool, len(a))
	for _, id := range a {
		inA[id] = true
		union[id] = true
	}
	shared := make(map[string]bool)
	for _, id := range b {
		union[id] = true
		if inA[id] {
			shared[id] = true
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(len(shared)) / float64(len(union))
}

// DataAggregateCoupling is the Jaccard similarity of the data aggregates
// a and b reference.
func DataAggregateCoupling(_ *model.System, a, b *model.Component) (Value, error) {
	return Number(jaccard(a.DataAggregateIDs(), b.DataAggregateIDs())), nil
}

// SharedCallerCoupling is the Jaccard similarity of the components calling
// a and b.
func SharedCallerCoupling(sys *model.System, a, b *model.Component) (Value, error) {
	return Number(jaccard(sys.CallersOf(a.ID()), sys.CallersOf(b.ID()))), nil
}

// SharedCalleeCoupling is the Jaccard similarity of the components a and b
// call.
func SharedCalleeCoupling(sys *model.System, a, b *model.Component) (Value, error) {
	ca, err := sys.CalleesOf(a.ID())
	if err != nil {
		return Value{}, err
	}
	cb, err := sys.CalleesOf(b.ID())
	if err != nil {
		return Value{}, err
	}
	return Number(jaccard(ca, cb)), nil
}

// ---------------------------------------------------------------------------
// Request trace participation
// ---------------------------------------------------------------------------

// traceCall is one resolved link of a trace.
type traceCall struct {
	link     *model.Link
	from, to string
}

func resolveTrace(sys *model.System, t *model.RequestTrace) ([]traceCall, error) {
	links := t.Links()
	calls := make([]traceCall, 0, len(links))
	for _, l := range links {
		src, err := sys.LinkSourceComponent(l)
		if err != nil {
			return nil, err
		}
		dst, err := sys.LinkTargetComponent(l)
		if err != nil {
			return nil, err
		}
		calls = append(calls, traceCall{link: l, from: src.ID(), to: dst.ID()})
	}
	return calls, nil
}

func includes(calls []traceCall, id string) bool {
	for _, c := range calls {
		if c.from == id || c.to == id {
			return true
		}
	}
	return false
}

func callsBetween(calls []traceCall, from, to string) bool {
	for _, c := range calls {
		if c.from == from && c.to == to {
			return true
		}
	}
	return false
}

// RequestTraceCallsRatio is the share of the traces including y in which x
// calls y. It is 0 when no trace includes y.
func RequestTraceCallsRatio(sys *model.System, x, y *model.Component) (Value, error) {
	var calling, including int
	for _, t := range sys.RequestTraces() {
		calls, err := resolveTrace(sys, t)
		if err != nil {
			return Value{}, err
		}
		if includes(calls, y.ID()) {
			including++
		}
		if callsBetween(calls, x.ID(), y.ID()) {
			calling++
		}
	}
	return ratioOrZero(calling, including), nil
}

// RequestTraceCoupling is the larger of the two directed calls ratios.
func RequestTraceCoupling(sys *model.System, a, b *model.Component) (Value, error) {
	ab, err := RequestTraceCallsRatio(sys, a, b)
	if err != nil {
		return Value{}, err
	}
	ba, err := RequestTraceCallsRatio(sys, b, a)
	if err != nil {
		return Value{}, err
	}
	x, _ := ab.Float()
	y, _ := ba.Float()
	return Number(max(x, y)), nil
}

// RequestTraceCoOccurrence is the share of all traces that include both a
// and b. It is 0 when the system has no traces.
func RequestTraceCoOccurrence(sys *model.System, a, b *model.Component) (Value, error) {
	traces := sys.RequestTraces()
	if len(traces) == 0 {
		return Number(0), nil
	}
	var both int
	for _, t := range traces {
		calls, err := resolveTrace(sys, t)
		if err != nil {
			return Value{}, err
		}
		if includes(calls, a.ID()) && includes(calls, b.ID()) {
			both++
		}
	}
	return ratioOrZero(both, len(traces)), nil
}

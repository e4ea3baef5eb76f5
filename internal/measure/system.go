package measure

import (
	"archq/internal/model"
)

// ---------------------------------------------------------------------------
// Replication and sharding
// ---------------------------------------------------------------------------

// replicationLevel averages, over the components of kind that have at
// least one deployment mapping, the summed replicas of those mappings.
func replicationLevel(sys *model.System, kind model.Kind) Value {
	var levels []float64
	for _, c := range sys.ComponentsOfKind(kind) {
		mappings := sys.DeploymentsOf(c.ID())
		if len(mappings) == 0 {
			continue
		}
		var sum int
		for _, m := range mappings {
			sum += m.Props.Replicas
		}
		levels = append(levels, float64(sum))
	}
	return mean(levels)
}

// ServiceReplicationLevel is n/a when no deployment mapping targets a
// service.
func ServiceReplicationLevel(sys *model.System) (Value, error) {
	return replicationLevel(sys, model.KindService), nil
}

func StorageReplicationLevel(sys *model.System) (Value, error) {
	return replicationLevel(sys, model.KindStorageBackingService), nil
}

// StorageShardingLevel averages the shards property over storage backing
// services declaring it.
func StorageShardingLevel(sys *model.System) (Value, error) {
	var shards []float64
	for _, c := range sys.ComponentsOfKind(model.KindStorageBackingService) {
		if n, ok := model.IntValue(c.PropertyValue(model.PropShards)); ok {
			shards = append(shards, float64(n))
		}
	}
	return mean(shards), nil
}

// ---------------------------------------------------------------------------
// Transport security
// ---------------------------------------------------------------------------

func countTLS(endpoints []*model.Endpoint) int {
	var n int
	for _, ep := range endpoints {
		if ep.SupportsTLS() {
			n++
		}
	}
	return n
}

func externalEndpoints(sys *model.System) []*model.Endpoint {
	var out []*model.Endpoint
	for _, c := range sys.Components() {
		out = append(out, c.ExternalEndpoints()...)
	}
	return out
}

// RatioOfEndpointsSupportingTLS is supporting / total.
func RatioOfEndpointsSupportingTLS(sys *model.System) (Value, error) {
	eps := sys.Endpoints()
	return ratio(countTLS(eps), len(eps)), nil
}

// TLSToNonTLSEndpointRatio divides the endpoints supporting TLS by those
// that do not, yielding 0 when every endpoint supports TLS.
func TLSToNonTLSEndpointRatio(sys *model.System) (Value, error) {
	eps := sys.Endpoints()
	supporting := countTLS(eps)
	return ratioOrZero(supporting, len(eps)-supporting), nil
}

func RatioOfExternalEndpointsSupportingTLS(sys *model.System) (Value, error) {
	eps := externalEndpoints(sys)
	return ratio(countTLS(eps), len(eps)), nil
}

func NumberOfExternalEndpoints(sys *model.System) (Value, error) {
	return Number(float64(len(externalEndpoints(sys)))), nil
}

// RatioOfExternalEndpointsOnProxies is the share of external endpoints
// owned by proxy backing services.
func RatioOfExternalEndpointsOnProxies(sys *model.System) (Value, error) {
	var onProxy, total int
	for _, c := range sys.Components() {
		n := len(c.ExternalEndpoints())
		total += n
		if c.Kind() == model.KindProxyBackingService {
			onProxy += n
		}
	}
	return ratio(onProxy, total), nil
}

// ---------------------------------------------------------------------------
// Pair aggregates
// ---------------------------------------------------------------------------

// pairValues applies fn to every unordered pair of components, in
// insertion order.
func pairValues(sys *model.System, fn PairFunc) ([]float64, error) {
	comps := sys.Components()
	var out []float64
	for i := 0; i < len(comps); i++ {
		for j := i + 1; j < len(comps); j++ {
			v, err := fn(sys, comps[i], comps[j])
			if err != nil {
				return nil, err
			}
			if f, ok := v.Float(); ok {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func averageOverPairs(fn PairFunc) SystemFunc {
	return func(sys *model.System) (Value, error) {
		vals, err := pairValues(sys, fn)
		if err != nil {
			return Value{}, err
		}
		return mean(vals), nil
	}
}

// MaximumRequestTraceCoupling is the highest RequestTraceCoupling over all
// component pairs, n/a with fewer than two components.
func MaximumRequestTraceCoupling(sys *model.System) (Value, error) {
	vals, err := pairValues(sys, RequestTraceCoupling)
	if err != nil {
		return Value{}, err
	}
	if len(vals) == 0 {
		return NotApplicable(), nil
	}
	best := vals[0]
	for _, v := range vals[1:] {
		best = max(best, v)
	}
	return Number(best), nil
}

// ---------------------------------------------------------------------------
// Request traces
// ---------------------------------------------------------------------------

func traceValues(sys *model.System, fn TraceFunc) ([]float64, error) {
	var out []float64
	for _, t := range sys.RequestTraces() {
		v, err := fn(sys, t)
		if err != nil {
			return nil, err
		}
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// AverageRequestTraceLength is n/a without traces.
func AverageRequestTraceLength(sys *model.System) (Value, error) {
	vals, err := traceValues(sys, RequestTraceLength)
	if err != nil {
		return Value{}, err
	}
	return mean(vals), nil
}

// NumberOfCyclesInRequestTraces sums RequestTraceCycles over all traces.
func NumberOfCyclesInRequestTraces(sys *model.System) (Value, error) {
	vals, err := traceValues(sys, RequestTraceCycles)
	if err != nil {
		return Value{}, err
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return Number(sum), nil
}

// ---------------------------------------------------------------------------
// Topology
// ---------------------------------------------------------------------------

// AverageShortestPathLength averages ShortestPathLength over all ordered
// pairs of distinct components. Unreachable pairs count with the no-path
// length, so disconnected systems score as long paths.
func AverageShortestPathLength(sys *model.System) (Value, error) {
	comps := sys.Components()
	var lengths []float64
	for _, from := range comps {
		for _, to := range comps {
			if from == to {
				continue
			}
			n, err := sys.ShortestPathLength(from.ID(), to.ID())
			if err != nil {
				return Value{}, err
			}
			lengths = append(lengths, float64(n))
		}
	}
	return mean(lengths), nil
}

// AverageFanOut is the mean number of distinct callees per component.
func AverageFanOut(sys *model.System) (Value, error) {
	var fanOut []float64
	for _, c := range sys.Components() {
		callees, err := sys.CalleesOf(c.ID())
		if err != nil {
			return Value{}, err
		}
		fanOut = append(fanOut, float64(len(callees)))
	}
	return mean(fanOut), nil
}

func RatioOfAsynchronousLinks(sys *model.System) (Value, error) {
	links := sys.Links()
	var async int
	for _, l := range links {
		if l.Asynchronous() {
			async++
		}
	}
	return ratio(async, len(links)), nil
}

// DominantCommunicationPattern classifies all links of the system.
func DominantCommunicationPattern(sys *model.System) (Value, error) {
	return Category(pattern(sys.Links())), nil
}

// ---------------------------------------------------------------------------
// Data and infrastructure
// ---------------------------------------------------------------------------

// RatioOfSharedDataAggregates is the share of data aggregates referenced
// by more than one component.
func RatioOfSharedDataAggregates(sys *model.System) (Value, error) {
	aggregates := sys.DataAggregates()
	var shared int
	for _, d := range aggregates {
		if len(sys.ComponentsUsingData(d.ID())) > 1 {
			shared++
		}
	}
	return ratio(shared, len(aggregates)), nil
}

func RatioOfManagedInfrastructure(sys *model.System) (Value, error) {
	infra := sys.Infrastructures()
	var managed int
	for _, i := range infra {
		if i.Props.Managed {
			managed++
		}
	}
	return ratio(managed, len(infra)), nil
}

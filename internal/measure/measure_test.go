package measure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"archq/internal/model"
)

func TestValue(t *testing.T) {
	assert.True(t, Number(math.NaN()).IsNA())
	assert.True(t, Number(math.Inf(1)).IsNA())
	assert.True(t, Value{}.IsNA())
	assert.True(t, Category("").IsNA())
	assert.True(t, Category(NA).IsNA())

	assert.Equal(t, "0.75", Number(0.75).String())
	assert.Equal(t, "mixed", Category("mixed").String())
	assert.Equal(t, NA, NotApplicable().String())

	out, err := yaml.Marshal(map[string]Value{"a": Number(3), "b": NotApplicable(), "c": Category("none")})
	require.NoError(t, err)
	assert.Equal(t, "a: 3\nb: n/a\nc: none\n", string(out))
}

func TestDataAggregateCoupling(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b", "c", "d")
	x := model.NewDataAggregate("x", "X")
	y := model.NewDataAggregate("y", "Y")
	z := model.NewDataAggregate("z", "Z")
	b.comps["a"].UseData(x, model.UsageKindPersistence)
	b.comps["a"].UseData(y, model.UsageKindUsage)
	b.comps["b"].UseData(y, model.UsageKindUsage)
	b.comps["b"].UseData(z, model.UsageKindUsage)
	b.comps["c"].UseData(x, model.UsageKindUsage)
	b.comps["c"].UseData(y, model.UsageKindCached)

	coupling := func(p, q string) float64 {
		v, err := DataAggregateCoupling(b.sys, b.comps[p], b.comps[q])
		require.NoError(t, err)
		return num(t, v)
	}

	assert.InDelta(t, 1.0/3, coupling("a", "b"), 1e-9)
	assert.Equal(t, coupling("a", "b"), coupling("b", "a"))
	assert.Equal(t, 1.0, coupling("a", "c"))
	assert.Equal(t, 0.0, coupling("a", "d"))

	e := newBuilder(t)
	e.services("p", "q")
	v, err := DataAggregateCoupling(e.sys, e.comps["p"], e.comps["q"])
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))
}

func TestDataAggregateCoupling_IgnoresBackingData(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b")
	cfg := model.NewBackingData("cfg", "Config")
	b.comps["a"].UseData(cfg, model.UsageKindUsage)
	b.comps["b"].UseData(cfg, model.UsageKindUsage)

	v, err := DataAggregateCoupling(b.sys, b.comps["a"], b.comps["b"])
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))
}

func TestSharedCallerAndCalleeCoupling(t *testing.T) {
	b := newBuilder(t)
	b.services("gw", "a", "b", "db", "cache")
	b.link("gw", "a")
	b.link("gw", "b")
	b.link("a", "db")
	b.link("b", "db")
	b.link("b", "cache")

	v, err := SharedCallerCoupling(b.sys, b.comps["a"], b.comps["b"])
	require.NoError(t, err)
	assert.Equal(t, 1.0, num(t, v))

	v, err = SharedCalleeCoupling(b.sys, b.comps["a"], b.comps["b"])
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))

	v, err = SharedCalleeCoupling(b.sys, b.comps["db"], b.comps["cache"])
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))
}

func TestRequestTraceMeasures(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b", "c")
	b.link("a", "b")
	b.link("b", "c")
	b.link("c", "b")

	a, bb, c := b.comps["a"], b.comps["b"], b.comps["c"]

	v, err := RequestTraceCoOccurrence(b.sys, a, bb)
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v), "no traces")

	v, err = RequestTraceCallsRatio(b.sys, a, bb)
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v), "empty denominator")

	b.trace("t1", "ab", "bc")
	b.trace("t2", "bc", "cb")

	// b is in both traces, a calls b in one.
	v, err = RequestTraceCallsRatio(b.sys, a, bb)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))

	// a is in t1 only and b never calls a.
	v, err = RequestTraceCallsRatio(b.sys, bb, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))

	v, err = RequestTraceCoupling(b.sys, bb, a)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))

	v, err = RequestTraceCoupling(b.sys, bb, c)
	require.NoError(t, err)
	assert.Equal(t, 1.0, num(t, v))

	v, err = RequestTraceCoOccurrence(b.sys, a, c)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))

	v, err = RequestTraceCoOccurrence(b.sys, bb, c)
	require.NoError(t, err)
	assert.Equal(t, 1.0, num(t, v))
}

func TestRequestTraceCycles(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b", "c")
	b.link("a", "b")
	b.link("b", "c")
	b.link("c", "b")
	b.link("a", "a")

	cycles := func(tr *model.RequestTrace) float64 {
		v, err := RequestTraceCycles(b.sys, tr)
		require.NoError(t, err)
		return num(t, v)
	}

	assert.Equal(t, 1.0, cycles(b.trace("revisit", "ab", "bc", "cb")))
	assert.Equal(t, 0.0, cycles(b.trace("straight", "ab", "bc")))
	assert.Equal(t, 1.0, cycles(b.trace("self", "aa")))
	assert.Equal(t, 0.0, cycles(b.trace("empty")))

	v, err := NumberOfCyclesInRequestTraces(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 2.0, num(t, v))

	v, err = AverageRequestTraceLength(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 1.5, num(t, v))
}

// A component reappearing as the source of a later call is not a cycle:
// the trace fans out from it. Only a call into a visited component is.
func TestRequestTraceCycles_RepeatedSource(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b", "c", "d")
	b.link("a", "b")
	b.link("b", "c")
	b.link("a", "d")
	b.link("d", "a")

	v, err := RequestTraceCycles(b.sys, b.trace("fan-out", "ab", "bc", "ad"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))

	v, err = RequestTraceCycles(b.sys, b.trace("back-to-entry", "ab", "bc", "ad", "da"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, num(t, v))
}

func TestRequestTraceCycles_DanglingLink(t *testing.T) {
	b := newBuilder(t)
	b.services("a")
	orphan := model.NewEndpoint("orphan", "orphan", model.EndpointProperties{Protocol: "http"})
	l := model.NewLink("lost", b.comps["a"], orphan)
	require.NoError(t, b.sys.AddEntity(l))
	b.links["lost"] = l
	tr := b.trace("t", "lost")

	_, err := RequestTraceCycles(b.sys, tr)
	var dangling *model.DanglingReferenceError
	assert.ErrorAs(t, err, &dangling)
}

func TestServiceReplicationLevel(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b", "c")
	k8s := model.NewInfrastructure("k8s", "Cluster", model.InfrastructureProperties{Kind: "kubernetes"})
	require.NoError(t, b.sys.AddEntity(k8s))

	v, err := ServiceReplicationLevel(b.sys)
	require.NoError(t, err)
	assert.True(t, v.IsNA(), "no mappings")

	b.deploy(b.comps["a"], k8s, 2)
	b.deploy(b.comps["b"], k8s, 4)

	v, err = ServiceReplicationLevel(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 3.0, num(t, v))

	v, err = StorageReplicationLevel(b.sys)
	require.NoError(t, err)
	assert.True(t, v.IsNA())

	v, err = ReplicaCount(b.sys, b.comps["c"])
	require.NoError(t, err)
	assert.True(t, v.IsNA())
}

func TestReplication_SumsPerEntity(t *testing.T) {
	b := newBuilder(t)
	db := b.component(model.NewStorageBackingService("db", "DB"), "postgres")
	eu := model.NewInfrastructure("eu", "EU", model.InfrastructureProperties{})
	us := model.NewInfrastructure("us", "US", model.InfrastructureProperties{})
	require.NoError(t, b.sys.AddEntities(eu, us))
	b.deploy(db, eu, 2)
	b.deploy(db, us, 3)

	v, err := StorageReplicationLevel(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 5.0, num(t, v))

	v, err = ReplicaCount(b.sys, db)
	require.NoError(t, err)
	assert.Equal(t, 5.0, num(t, v))
}

func TestStorageShardingLevel(t *testing.T) {
	b := newBuilder(t)
	v, err := StorageShardingLevel(b.sys)
	require.NoError(t, err)
	assert.True(t, v.IsNA())

	one := b.component(model.NewStorageBackingService("one", "One"), "postgres")
	two := b.component(model.NewStorageBackingService("two", "Two"), "postgres")
	b.component(model.NewStorageBackingService("three", "Three"), "postgres")
	one.SetProperty(model.PropShards, 2)
	two.SetProperty(model.PropShards, "6")

	v, err = StorageShardingLevel(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 4.0, num(t, v))
}

func tlsSystem(t *testing.T, protocols ...string) *model.System {
	t.Helper()
	sys := model.NewSystem("tls")
	c := model.NewService("svc", "Service")
	for i, p := range protocols {
		c.AddEndpoint(model.NewEndpoint(string(rune('a'+i)), p, model.EndpointProperties{Protocol: p}))
	}
	require.NoError(t, sys.AddEntity(c))
	return sys
}

func TestTLSRatios(t *testing.T) {
	sys := tlsSystem(t, "https", "grpcs", "kafka+ssl", "http")

	v, err := TLSToNonTLSEndpointRatio(sys)
	require.NoError(t, err)
	assert.Equal(t, 3.0, num(t, v))

	v, err = RatioOfEndpointsSupportingTLS(sys)
	require.NoError(t, err)
	assert.Equal(t, 0.75, num(t, v))

	sys = tlsSystem(t, "http", "amqp", "ws", "grpc")
	v, err = TLSToNonTLSEndpointRatio(sys)
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))

	sys = tlsSystem(t, "https", "wss")
	v, err = TLSToNonTLSEndpointRatio(sys)
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v), "complement is empty")

	sys = tlsSystem(t)
	v, err = TLSToNonTLSEndpointRatio(sys)
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))
	v, err = RatioOfEndpointsSupportingTLS(sys)
	require.NoError(t, err)
	assert.True(t, v.IsNA())
}

func TestExternalEndpointMeasures(t *testing.T) {
	sys := model.NewSystem("edge")
	gw := model.NewProxyBackingService("gw", "Gateway")
	gw.AddEndpoint(model.NewExternalEndpoint("gw-pub", "public", model.EndpointProperties{Protocol: "https"}))
	gw.AddEndpoint(model.NewEndpoint("gw-admin", "admin", model.EndpointProperties{Protocol: "http"}))
	svc := model.NewService("svc", "Service")
	svc.AddEndpoint(model.NewExternalEndpoint("svc-pub", "direct", model.EndpointProperties{Protocol: "http"}))
	require.NoError(t, sys.AddEntities(gw, svc))

	v, err := NumberOfExternalEndpoints(sys)
	require.NoError(t, err)
	assert.Equal(t, 2.0, num(t, v))

	v, err = RatioOfExternalEndpointsSupportingTLS(sys)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))

	v, err = RatioOfExternalEndpointsOnProxies(sys)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))
}

func TestTopologyMeasures(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b", "c")
	b.link("a", "b")
	b.link("b", "c")

	// a->b 1, a->c 2, b->c 1, and three unreachable pairs at 2.
	v, err := AverageShortestPathLength(b.sys)
	require.NoError(t, err)
	assert.InDelta(t, 10.0/6, num(t, v), 1e-9)

	v, err = AverageFanOut(b.sys)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, num(t, v), 1e-9)

	v, err = IncomingLinkCount(b.sys, b.comps["b"])
	require.NoError(t, err)
	assert.Equal(t, 1.0, num(t, v))

	v, err = OutgoingLinkCount(b.sys, b.comps["c"])
	require.NoError(t, err)
	assert.Equal(t, 0.0, num(t, v))
}

func TestCommunicationPatterns(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b")
	b.component(model.NewBrokerBackingService("bus", "Bus"), "kafka")

	v, err := DominantCommunicationPattern(b.sys)
	require.NoError(t, err)
	assert.Equal(t, PatternNone, v.String())

	b.link("a", "bus")
	v, err = DominantCommunicationPattern(b.sys)
	require.NoError(t, err)
	assert.Equal(t, PatternAsynchronous, v.String())

	b.link("a", "b")
	v, err = DominantCommunicationPattern(b.sys)
	require.NoError(t, err)
	assert.Equal(t, PatternMixed, v.String())

	v, err = CommunicationPattern(b.sys, b.comps["b"])
	require.NoError(t, err)
	assert.Equal(t, PatternNone, v.String())

	v, err = RatioOfAsynchronousLinks(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))
}

func TestDataAndInfrastructureRatios(t *testing.T) {
	b := newBuilder(t)
	b.services("a", "b")
	orders := model.NewDataAggregate("orders", "Orders")
	users := model.NewDataAggregate("users", "Users")
	require.NoError(t, b.sys.AddEntities(orders, users))
	b.comps["a"].UseData(orders, model.UsageKindPersistence)
	b.comps["b"].UseData(orders, model.UsageKindUsage)
	b.comps["b"].UseData(users, model.UsageKindPersistence)

	v, err := RatioOfSharedDataAggregates(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))

	v, err = RatioOfManagedInfrastructure(b.sys)
	require.NoError(t, err)
	assert.True(t, v.IsNA())

	require.NoError(t, b.sys.AddEntities(
		model.NewInfrastructure("eks", "EKS", model.InfrastructureProperties{Kind: "kubernetes", Managed: true}),
		model.NewInfrastructure("vm", "VM", model.InfrastructureProperties{Kind: "virtual-machine"}),
	))
	v, err = RatioOfManagedInfrastructure(b.sys)
	require.NoError(t, err)
	assert.Equal(t, 0.5, num(t, v))
}

func TestRegistry_EmptySystem(t *testing.T) {
	sys := model.NewSystem("empty")
	for _, id := range IDs() {
		fn, ok := Lookup(id)
		require.True(t, ok)
		v, err := fn(sys)
		require.NoError(t, err, id)
		if f, ok := v.Float(); ok {
			assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), id)
		}
	}

	v, err := systemMeasures[IDAverageRequestTraceCoOccurrence](sys)
	require.NoError(t, err)
	assert.True(t, v.IsNA())

	_, ok := Lookup("noSuchMeasure")
	assert.False(t, ok)
}

package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_AddEntity(t *testing.T) {
	t.Run("dispatches every component variant", func(t *testing.T) {
		sys := NewSystem("s")
		for i, kind := range ComponentKinds() {
			require.NoError(t, sys.AddEntity(NewComponent(string(rune('a'+i)), "c", kind)))
		}
		assert.Equal(t, len(ComponentKinds()), sys.ComponentCount())
		assert.Len(t, sys.ComponentsOfKind(KindStorageBackingService), 1)
	})

	t.Run("dispatches data, infrastructure and traces", func(t *testing.T) {
		sys := NewSystem("s")
		svc := NewService("svc", "Service")
		ext := NewExternalEndpoint("ext", "Public", EndpointProperties{Protocol: "https"})
		svc.AddEndpoint(ext)
		node := NewInfrastructure("k8s", "Cluster", InfrastructureProperties{Kind: "kubernetes"})

		require.NoError(t, sys.AddEntities(
			svc,
			node,
			NewDeploymentMapping("dm", svc, node, DeploymentProperties{Replicas: 2}),
			NewDataAggregate("orders", "Orders"),
			NewBackingData("secrets", "Secrets"),
			NewRequestTrace("trace", "Checkout", ext),
		))

		assert.Len(t, sys.Infrastructures(), 1)
		assert.Len(t, sys.DeploymentMappings(), 1)
		assert.Len(t, sys.DataAggregates(), 1)
		assert.Len(t, sys.BackingData(), 1)
		assert.Len(t, sys.RequestTraces(), 1)
		assert.Same(t, node, svc.Host())
	})

	t.Run("rejects endpoints added directly", func(t *testing.T) {
		sys := NewSystem("s")
		err := sys.AddEntity(NewEndpoint("ep", "ep", EndpointProperties{Protocol: "http"}))

		var te *TypeError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, KindEndpoint, te.Kind)
		assert.Equal(t, "*model.Endpoint", te.Shape)
	})

	t.Run("rejects foreign types for every kind", func(t *testing.T) {
		for _, kind := range AllKinds() {
			sys := NewSystem("s")
			err := sys.AddEntity(foreignEntity{kind: kind})
			var te *TypeError
			assert.ErrorAs(t, err, &te, "kind %s", kind)
		}
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		sys := NewSystem("s")
		err := sys.AddEntity(foreignEntity{kind: "database"})

		var te *TypeError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, te.Error(), "model.foreignEntity")
	})

	t.Run("rejects nil", func(t *testing.T) {
		var te *TypeError
		assert.ErrorAs(t, NewSystem("s").AddEntity(nil), &te)
	})

	t.Run("rejects duplicate ids within a collection", func(t *testing.T) {
		sys := NewSystem("s")
		require.NoError(t, sys.AddEntity(NewService("dup", "one")))
		err := sys.AddEntity(NewService("dup", "two"))
		assert.True(t, errors.Is(err, ErrDuplicateID))
	})

	t.Run("same id in different collections is allowed", func(t *testing.T) {
		sys := NewSystem("s")
		require.NoError(t, sys.AddEntity(NewService("x", "svc")))
		assert.NoError(t, sys.AddEntity(NewDataAggregate("x", "data")))
	})

	t.Run("incomplete links are dangling", func(t *testing.T) {
		sys := NewSystem("s")
		err := sys.AddEntity(NewLink("l", NewService("a", "a"), nil))

		var dr *DanglingReferenceError
		assert.ErrorAs(t, err, &dr)
	})

	t.Run("AddEntities stops at the first error", func(t *testing.T) {
		sys := NewSystem("s")
		err := sys.AddEntities(NewService("a", "a"), NewService("a", "again"), NewService("b", "b"))
		require.Error(t, err)
		assert.Equal(t, 1, sys.ComponentCount())
	})
}

func TestKind_Partition(t *testing.T) {
	components := make(map[Kind]bool)
	for _, k := range ComponentKinds() {
		components[k] = true
	}
	for _, k := range AllKinds() {
		assert.Equal(t, components[k], k.IsComponent(), "IsComponent(%s)", k)
		assert.Equal(t, k == KindDataAggregate || k == KindBackingData, k.IsData(), "IsData(%s)", k)
		assert.False(t, k.IsComponent() && k.IsData(), "%s is both", k)
	}
	assert.False(t, Kind("database").IsComponent())
	assert.False(t, Kind("database").IsData())
}

func TestSystem_Reset(t *testing.T) {
	sys, _, _ := chain(t)
	require.NoError(t, sys.AddEntity(NewDataAggregate("d", "d")))

	sys.Reset()

	assert.Empty(t, sys.Components())
	assert.Empty(t, sys.Links())
	assert.Empty(t, sys.DataAggregates())
	assert.NoError(t, sys.AddEntity(NewService("a", "a again")))
}

func TestSystem_InsertionOrder(t *testing.T) {
	sys := NewSystem("s")
	ids := []string{"zeta", "alpha", "mid"}
	for _, id := range ids {
		require.NoError(t, sys.AddEntity(NewService(id, id)))
	}
	var got []string
	for _, c := range sys.Components() {
		got = append(got, c.ID())
	}
	assert.Equal(t, ids, got)
}

func TestSystem_Validate(t *testing.T) {
	t.Run("valid chain", func(t *testing.T) {
		sys, _, _ := chain(t)
		assert.NoError(t, sys.Validate())
	})

	t.Run("missing protocol", func(t *testing.T) {
		sys := NewSystem("s")
		svc := NewService("svc", "svc")
		svc.AddEndpoint(NewEndpoint("ep", "ep", EndpointProperties{Port: 80}))
		require.NoError(t, sys.AddEntity(svc))
		assert.Error(t, sys.Validate())
	})

	t.Run("invalid replica count", func(t *testing.T) {
		sys := NewSystem("s")
		svc := NewService("svc", "svc")
		node := NewInfrastructure("n", "n", InfrastructureProperties{})
		require.NoError(t, sys.AddEntities(svc, node, NewDeploymentMapping("m", svc, node, DeploymentProperties{Replicas: -1})))
		assert.Error(t, sys.Validate())
	})

	t.Run("required property without value", func(t *testing.T) {
		sys := NewSystem("s")
		svc := NewService("svc", "svc")
		svc.DefineProperty(Property{Key: "owner", Required: true})
		require.NoError(t, sys.AddEntity(svc))
		assert.ErrorContains(t, sys.Validate(), "owner")
	})

	t.Run("link to an endpoint outside the system", func(t *testing.T) {
		sys := NewSystem("s")
		a := NewService("a", "a")
		orphan := NewService("orphan", "orphan")
		ep := NewEndpoint("ep", "ep", EndpointProperties{Protocol: "http"})
		orphan.AddEndpoint(ep)
		require.NoError(t, sys.AddEntities(a, NewLink("l", a, ep)))

		var dr *DanglingReferenceError
		assert.ErrorAs(t, sys.Validate(), &dr)
	})
}

func TestEntity_Properties(t *testing.T) {
	svc := NewStorageBackingService("db", "Database")
	svc.SetProperty(PropShards, 3)
	svc.DefineProperty(Property{Key: "engine", DisplayName: "Engine", Example: "postgres"})
	svc.SetProperty("engine", "mysql")

	p, ok := svc.Property(PropShards)
	require.True(t, ok)
	assert.Equal(t, 3, p.Value)
	assert.Equal(t, "mysql", svc.PropertyValue("engine"))
	assert.Nil(t, svc.PropertyValue("missing"))
	assert.Len(t, svc.Properties(), 2)
}

func TestEndpointProperties(t *testing.T) {
	assert.True(t, EndpointProperties{Protocol: "HTTPS"}.SupportsTLS())
	assert.False(t, EndpointProperties{Protocol: "http"}.SupportsTLS())
	assert.True(t, EndpointProperties{Protocol: "kafka"}.Asynchronous())
	assert.True(t, EndpointProperties{Protocol: "http", Kind: EndpointEvent}.Asynchronous())
	assert.False(t, EndpointProperties{Protocol: "grpc", Kind: EndpointQuery}.Asynchronous())
	assert.Contains(t, TLSProtocols(), "https")
}

func TestIntValue(t *testing.T) {
	for _, v := range []any{3, int64(3), 3.0, " 3 "} {
		n, ok := IntValue(v)
		assert.True(t, ok, "%v", v)
		assert.Equal(t, 3, n)
	}
	_, ok := IntValue(2.5)
	assert.False(t, ok)
	_, ok = IntValue(nil)
	assert.False(t, ok)
}

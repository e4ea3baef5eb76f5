package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueries_Chain(t *testing.T) {
	sys, comps, links := chain(t)

	assert.Equal(t, []*Link{links["ab"]}, sys.OutgoingLinksOfComponent("a"))
	assert.Equal(t, []*Link{links["ab"]}, sys.IncomingLinksOfComponent("b"))

	n, err := sys.ShortestPathLength("a", "c")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	c, ok := sys.SearchComponentOfEndpoint(comps["c"].Endpoints()[0].ID())
	require.True(t, ok)
	assert.Same(t, comps["c"], c)
}

func TestSearchComponentOfEndpoint_Missing(t *testing.T) {
	sys, _, _ := chain(t)
	c, ok := sys.SearchComponentOfEndpoint("nope")
	assert.False(t, ok)
	assert.Nil(t, c)
}

func TestIncomingLinksOfComponent_UnknownComponent(t *testing.T) {
	sys, _, _ := chain(t)
	assert.Empty(t, sys.IncomingLinksOfComponent("ghost"))
}

func TestShortestPathLength(t *testing.T) {
	t.Run("unreachable returns component count minus one", func(t *testing.T) {
		sys, _, _ := chain(t)
		n, err := sys.ShortestPathLength("c", "a")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, sys.NoPathLength(), n)
	})

	t.Run("self path without self loop is unreachable", func(t *testing.T) {
		sys, _, _ := chain(t)
		n, err := sys.ShortestPathLength("a", "a")
		require.NoError(t, err)
		assert.Equal(t, sys.NoPathLength(), n)
	})

	t.Run("self path with self loop is zero", func(t *testing.T) {
		sys, comps, _ := chain(t)
		require.NoError(t, sys.AddEntity(NewLink("aa", comps["a"], comps["a"].Endpoints()[0])))
		n, err := sys.ShortestPathLength("a", "a")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("cycles terminate", func(t *testing.T) {
		sys, comps, _ := chain(t)
		require.NoError(t, sys.AddEntity(NewLink("ca", comps["c"], comps["a"].Endpoints()[0])))
		d := NewService("d", "d")
		require.NoError(t, sys.AddEntity(d))

		n, err := sys.ShortestPathLength("a", "d")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = sys.ShortestPathLength("c", "b")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("shortcut wins", func(t *testing.T) {
		sys, comps, _ := chain(t)
		require.NoError(t, sys.AddEntity(NewLink("ac", comps["a"], comps["c"].Endpoints()[0])))
		n, err := sys.ShortestPathLength("a", "c")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("dangling link target fails fast", func(t *testing.T) {
		sys, comps, _ := chain(t)
		orphan := NewService("orphan", "orphan")
		ep := NewEndpoint("orphan-ep", "ep", EndpointProperties{Protocol: "http"})
		orphan.AddEndpoint(ep)
		require.NoError(t, sys.AddEntity(NewLink("ax", comps["a"], ep)))

		_, err := sys.ShortestPathLength("a", "c")
		var dr *DanglingReferenceError
		assert.ErrorAs(t, err, &dr)
	})

	t.Run("empty system", func(t *testing.T) {
		n, err := NewSystem("empty").ShortestPathLength("x", "y")
		require.NoError(t, err)
		assert.Equal(t, -1, n)
	})
}

func TestCallersAndCallees(t *testing.T) {
	sys, comps, _ := chain(t)
	require.NoError(t, sys.AddEntity(NewLink("ab2", comps["a"], comps["b"].Endpoints()[0])))

	callees, err := sys.CalleesOf("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, callees)
	assert.Equal(t, []string{"a"}, sys.CallersOf("b"))
	assert.Empty(t, sys.CallersOf("a"))
}

func TestDeploymentQueries(t *testing.T) {
	sys, comps, _ := chain(t)
	node := NewInfrastructure("vm", "VM", InfrastructureProperties{Kind: "virtual-machine"})
	require.NoError(t, sys.AddEntities(node, NewDeploymentMapping("m", comps["a"], node, DeploymentProperties{Replicas: 1})))

	host, ok := sys.HostOf("a")
	require.True(t, ok)
	assert.Same(t, node, host)
	_, ok = sys.HostOf("b")
	assert.False(t, ok)
	assert.Len(t, sys.DeploymentsOf("a"), 1)
}

func TestComponentsUsingData(t *testing.T) {
	sys, comps, _ := chain(t)
	orders := NewDataAggregate("orders", "Orders")
	require.NoError(t, sys.AddEntity(orders))
	comps["a"].UseData(orders, UsageKindPersistence)
	comps["c"].UseData(orders, UsageKindCached)

	users := sys.ComponentsUsingData("orders")
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].ID())
	assert.Equal(t, []string{"orders"}, comps["a"].DataAggregateIDs())
}

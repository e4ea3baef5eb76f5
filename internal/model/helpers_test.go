package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// chain builds components a, b, c with one endpoint each and links a->b, b->c.
func chain(t *testing.T) (*System, map[string]*Component, map[string]*Link) {
	t.Helper()
	sys := NewSystem("chain")
	comps := map[string]*Component{}
	for _, id := range []string{"a", "b", "c"} {
		c := NewService(id, "Service "+id)
		c.AddEndpoint(NewEndpoint(id+"-ep", id+" api", EndpointProperties{Protocol: "http", Port: 8080}))
		comps[id] = c
		require.NoError(t, sys.AddEntity(c))
	}
	links := map[string]*Link{
		"ab": NewLink("ab", comps["a"], comps["b"].Endpoints()[0]),
		"bc": NewLink("bc", comps["b"], comps["c"].Endpoints()[0]),
	}
	require.NoError(t, sys.AddEntities(links["ab"], links["bc"]))
	return sys, comps, links
}

// foreignEntity implements Identified without being one of the concrete
// entity structs.
type foreignEntity struct {
	kind Kind
}

func (f foreignEntity) ID() string   { return "foreign" }
func (f foreignEntity) Name() string { return "Foreign" }
func (f foreignEntity) Kind() Kind   { return f.kind }

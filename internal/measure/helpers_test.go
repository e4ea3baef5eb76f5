package measure

import (
	"testing"

	"github.com/stretchr/testify/require"

	"archq/internal/model"
)

type builder struct {
	t     *testing.T
	sys   *model.System
	comps map[string]*model.Component
	links map[string]*model.Link
}

func newBuilder(t *testing.T) *builder {
	t.Helper()
	return &builder{
		t:     t,
		sys:   model.NewSystem("test"),
		comps: map[string]*model.Component{},
		links: map[string]*model.Link{},
	}
}

// component adds c with one internal endpoint "<id>-ep" speaking protocol.
func (b *builder) component(c *model.Component, protocol string) *model.Component {
	b.t.Helper()
	c.AddEndpoint(model.NewEndpoint(c.ID()+"-ep", c.Name()+" api", model.EndpointProperties{Protocol: protocol}))
	require.NoError(b.t, b.sys.AddEntity(c))
	b.comps[c.ID()] = c
	return c
}

func (b *builder) services(ids ...string) {
	b.t.Helper()
	for _, id := range ids {
		b.component(model.NewService(id, id), "http")
	}
}

// link adds "<from><to>" from component from to the first endpoint of to.
func (b *builder) link(from, to string) *model.Link {
	b.t.Helper()
	l := model.NewLink(from+to, b.comps[from], b.comps[to].Endpoints()[0])
	require.NoError(b.t, b.sys.AddEntity(l))
	b.links[l.ID()] = l
	return l
}

// trace adds a trace with one segment per link id.
func (b *builder) trace(id string, linkIDs ...string) *model.RequestTrace {
	b.t.Helper()
	entry := model.NewExternalEndpoint(id+"-entry", "entry", model.EndpointProperties{Protocol: "https"})
	tr := model.NewRequestTrace(id, id, entry)
	for _, l := range linkIDs {
		tr.AppendSegment(b.links[l])
	}
	require.NoError(b.t, b.sys.AddEntity(tr))
	return tr
}

func (b *builder) deploy(c *model.Component, host *model.Infrastructure, replicas int) {
	b.t.Helper()
	m := model.NewDeploymentMapping(c.ID()+"@"+host.ID(), c, host, model.DeploymentProperties{Replicas: replicas})
	require.NoError(b.t, b.sys.AddEntity(m))
}

func num(t *testing.T, v Value) float64 {
	t.Helper()
	f, ok := v.Float()
	require.True(t, ok, "expected a number, got %s", v)
	return f
}

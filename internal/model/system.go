// Package model holds the typed entity graph of a cloud-native system:
// components and their endpoints, links, data, infrastructure, deployment
// mappings and request traces, aggregated by System.
//
// The graph is built by a single producer and read by the evaluation
// engine. Nothing here locks; callers must not evaluate a System while it
// is being mutated.
package model

// System is the root aggregate. It owns seven id-keyed collections.
type System struct {
	Name string

	components      collection[*Component]
	links           collection[*Link]
	infrastructures collection[*Infrastructure]
	deployments     collection[*DeploymentMapping]
	traces          collection[*RequestTrace]
	dataAggregates  collection[*DataEntity]
	backingData     collection[*DataEntity]
}

func NewSystem(name string) *System {
	return &System{Name: name}
}

// AddEntity places e into the collection matching its kind.
//
// Endpoints are rejected: they belong to a component and enter the graph
// through Component.AddEndpoint. Links, deployment mappings and request
// traces must reference non-nil entities. Adding a deployment mapping sets
// the deployed entity's host.
func (s *System) AddEntity(e Identified) error {
	if e == nil {
		return &TypeError{Shape: "<nil>", Reason: "nil entity"}
	}
	kind := e.Kind()
	switch {
	case kind.IsComponent():
		c, ok := e.(*Component)
		if !ok {
			return newTypeError(e, "component kinds must be *model.Component")
		}
		return s.components.add(c)

	case kind.IsData():
		d, ok := e.(*DataEntity)
		if !ok {
			return newTypeError(e, "data entities must be *model.DataEntity")
		}
		if kind == KindBackingData {
			return s.backingData.add(d)
		}
		return s.dataAggregates.add(d)
	}

	switch kind {
	case KindEndpoint, KindExternalEndpoint:
		return newTypeError(e, "endpoints are owned by components, add them with Component.AddEndpoint")

	case KindLink:
		l, ok := e.(*Link)
		if !ok {
			return newTypeError(e, "links must be *model.Link")
		}
		if l.source == nil {
			return &DanglingReferenceError{From: l.ID(), Ref: "source", Detail: "link has no source component"}
		}
		if l.target == nil {
			return &DanglingReferenceError{From: l.ID(), Ref: "target", Detail: "link has no target endpoint"}
		}
		return s.links.add(l)

	case KindInfrastructure:
		i, ok := e.(*Infrastructure)
		if !ok {
			return newTypeError(e, "infrastructure must be *model.Infrastructure")
		}
		return s.infrastructures.add(i)

	case KindDeploymentMapping:
		m, ok := e.(*DeploymentMapping)
		if !ok {
			return newTypeError(e, "deployment mappings must be *model.DeploymentMapping")
		}
		if m.deployed == nil || m.host == nil {
			return &DanglingReferenceError{From: m.ID(), Ref: "deployed/host", Detail: "deployment mapping is incomplete"}
		}
		if err := s.deployments.add(m); err != nil {
			return err
		}
		m.deployed.setHost(m.host)
		return nil

	case KindRequestTrace:
		t, ok := e.(*RequestTrace)
		if !ok {
			return newTypeError(e, "request traces must be *model.RequestTrace")
		}
		if t.entry == nil {
			return &DanglingReferenceError{From: t.ID(), Ref: "entry", Detail: "request trace has no external endpoint"}
		}
		return s.traces.add(t)
	}
	return newTypeError(e, "unknown entity kind")
}

// AddEntities adds each entity in order and stops at the first error.
func (s *System) AddEntities(entities ...Identified) error {
	for _, e := range entities {
		if err := s.AddEntity(e); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears every collection. It is used before loading a new model.
func (s *System) Reset() {
	s.components.reset()
	s.links.reset()
	s.infrastructures.reset()
	s.deployments.reset()
	s.traces.reset()
	s.dataAggregates.reset()
	s.backingData.reset()
}

// ---------------------------------------------------------------------------
// Getters
// ---------------------------------------------------------------------------

func (s *System) Components() []*Component                 { return s.components.all() }
func (s *System) Links() []*Link                           { return s.links.all() }
func (s *System) Infrastructures() []*Infrastructure       { return s.infrastructures.all() }
func (s *System) DeploymentMappings() []*DeploymentMapping { return s.deployments.all() }
func (s *System) RequestTraces() []*RequestTrace           { return s.traces.all() }
func (s *System) DataAggregates() []*DataEntity            { return s.dataAggregates.all() }
func (s *System) BackingData() []*DataEntity               { return s.backingData.all() }

func (s *System) Component(id string) (*Component, bool) { return s.components.get(id) }
func (s *System) Link(id string) (*Link, bool)           { return s.links.get(id) }
func (s *System) Infrastructure(id string) (*Infrastructure, bool) {
	return s.infrastructures.get(id)
}
func (s *System) DeploymentMapping(id string) (*DeploymentMapping, bool) {
	return s.deployments.get(id)
}
func (s *System) RequestTrace(id string) (*RequestTrace, bool) { return s.traces.get(id) }
func (s *System) DataAggregate(id string) (*DataEntity, bool)  { return s.dataAggregates.get(id) }
func (s *System) BackingDataEntity(id string) (*DataEntity, bool) {
	return s.backingData.get(id)
}

// ComponentCount returns the number of components of any variant.
func (s *System) ComponentCount() int {
	return s.components.len()
}

// ComponentsOfKind returns the components whose variant is kind.
func (s *System) ComponentsOfKind(kind Kind) []*Component {
	var out []*Component
	for _, c := range s.components.all() {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// Endpoints returns the endpoints of all components in component order.
func (s *System) Endpoints() []*Endpoint {
	var out []*Endpoint
	for _, c := range s.components.all() {
		out = append(out, c.Endpoints()...)
	}
	return out
}

// Validate checks every entity's properties. It is not called by
// AddEntity so producers can build a graph incrementally.
func (s *System) Validate() error {
	for _, c := range s.components.all() {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, i := range s.infrastructures.all() {
		if err := i.Validate(); err != nil {
			return err
		}
	}
	for _, m := range s.deployments.all() {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	for _, l := range s.links.all() {
		if _, err := s.LinkTargetComponent(l); err != nil {
			return err
		}
	}
	return nil
}

package model

// ---------------------------------------------------------------------------
// Component and endpoint resolution
// ---------------------------------------------------------------------------

// SearchComponentOfEndpoint returns the first component, in insertion
// order, that owns an endpoint with endpointID.
func (s *System) SearchComponentOfEndpoint(endpointID string) (*Component, bool) {
	for _, c := range s.components.all() {
		if c.HasEndpoint(endpointID) {
			return c, true
		}
	}
	return nil, false
}

// LinkTargetComponent resolves the component owning l's target endpoint.
// A target without an owner in this System is a malformed graph and
// yields a *DanglingReferenceError.
func (s *System) LinkTargetComponent(l *Link) (*Component, error) {
	if l.target == nil {
		return nil, &DanglingReferenceError{From: l.ID(), Ref: "target", Detail: "link has no target endpoint"}
	}
	c, ok := s.SearchComponentOfEndpoint(l.target.ID())
	if !ok {
		return nil, &DanglingReferenceError{From: l.ID(), Ref: l.target.ID(), Detail: "target endpoint is not owned by any component in the system"}
	}
	return c, nil
}

// LinkSourceComponent resolves l's source against the System's component
// collection.
func (s *System) LinkSourceComponent(l *Link) (*Component, error) {
	if l.source == nil {
		return nil, &DanglingReferenceError{From: l.ID(), Ref: "source", Detail: "link has no source component"}
	}
	c, ok := s.components.get(l.source.ID())
	if !ok {
		return nil, &DanglingReferenceError{From: l.ID(), Ref: l.source.ID(), Detail: "source component is not part of the system"}
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Links
// ---------------------------------------------------------------------------

// OutgoingLinksOfComponent returns the links whose source is componentID.
func (s *System) OutgoingLinksOfComponent(componentID string) []*Link {
	var out []*Link
	for _, l := range s.links.all() {
		if l.source != nil && l.source.ID() == componentID {
			out = append(out, l)
		}
	}
	return out
}

// IncomingLinksOfComponent returns the links targeting any endpoint owned
// by componentID. An unknown component has no incoming links.
func (s *System) IncomingLinksOfComponent(componentID string) []*Link {
	c, ok := s.components.get(componentID)
	if !ok {
		return nil
	}
	var out []*Link
	for _, l := range s.links.all() {
		if l.target != nil && c.HasEndpoint(l.target.ID()) {
			out = append(out, l)
		}
	}
	return out
}

// CalleesOf returns the ids of components that componentID links to, in
// link order without duplicates.
func (s *System) CalleesOf(componentID string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, l := range s.OutgoingLinksOfComponent(componentID) {
		target, err := s.LinkTargetComponent(l)
		if err != nil {
			return nil, err
		}
		if !seen[target.ID()] {
			seen[target.ID()] = true
			out = append(out, target.ID())
		}
	}
	return out, nil
}

// CallersOf returns the ids of components linking to componentID.
func (s *System) CallersOf(componentID string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range s.IncomingLinksOfComponent(componentID) {
		if l.source != nil && !seen[l.source.ID()] {
			seen[l.source.ID()] = true
			out = append(out, l.source.ID())
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// NoPathLength is the length ShortestPathLength reports when the target is
// unreachable: the component count minus one, the longest simple path the
// graph could contain. It is a worst-case stand-in, not a real distance.
func (s *System) NoPathLength() int {
	return s.components.len() - 1
}

// ShortestPathLength returns the number of links on the shortest path from
// component fromID to component toID, following link -> target endpoint ->
// owning component. Unreachable targets report NoPathLength. A path from a
// component to itself has length 0 when the component links to one of its
// own endpoints and is unreachable otherwise.
//
// Ties resolve by discovery order, which follows link insertion order.
// The only error is a dangling link target met during the search.
func (s *System) ShortestPathLength(fromID, toID string) (int, error) {
	if fromID == toID {
		callees, err := s.CalleesOf(fromID)
		if err != nil {
			return 0, err
		}
		for _, id := range callees {
			if id == fromID {
				return 0, nil
			}
		}
		return s.NoPathLength(), nil
	}

	type queueItem struct {
		id    string
		depth int
	}
	visited := map[string]bool{fromID: true}
	queue := []queueItem{{fromID, 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		callees, err := s.CalleesOf(current.id)
		if err != nil {
			return 0, err
		}
		for _, next := range callees {
			if visited[next] {
				continue
			}
			if next == toID {
				return current.depth + 1, nil
			}
			visited[next] = true
			queue = append(queue, queueItem{next, current.depth + 1})
		}
	}
	return s.NoPathLength(), nil
}

// ---------------------------------------------------------------------------
// Deployment and data
// ---------------------------------------------------------------------------

// DeploymentsOf returns the mappings that deploy entityID.
func (s *System) DeploymentsOf(entityID string) []*DeploymentMapping {
	var out []*DeploymentMapping
	for _, m := range s.deployments.all() {
		if m.deployed != nil && m.deployed.ID() == entityID {
			out = append(out, m)
		}
	}
	return out
}

// HostOf returns the infrastructure componentID is deployed on according
// to the System's deployment mappings.
func (s *System) HostOf(componentID string) (*Infrastructure, bool) {
	mappings := s.DeploymentsOf(componentID)
	if len(mappings) == 0 {
		return nil, false
	}
	return mappings[0].host, true
}

// ComponentsUsingData returns the components referencing dataID.
func (s *System) ComponentsUsingData(dataID string) []*Component {
	var out []*Component
	for _, c := range s.components.all() {
		for _, u := range c.data {
			if u.Data != nil && u.Data.ID() == dataID {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

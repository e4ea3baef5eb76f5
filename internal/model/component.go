package model

// UsageKind qualifies how a component relates to a data entity.
type UsageKind string

const (
	UsageKindUsage       UsageKind = "usage"
	UsageKindCached      UsageKind = "cached-usage"
	UsageKindPersistence UsageKind = "persistence"
)

// Valid reports whether u is a known usage kind.
func (u UsageKind) Valid() bool {
	switch u {
	case UsageKindUsage, UsageKindCached, UsageKindPersistence:
		return true
	}
	return false
}

// DataUsage is a weak reference from a component to a data entity owned by
// the System.
type DataUsage struct {
	Data  *DataEntity
	Usage UsageKind
}

// Component is a deployable software unit. Its Kind selects the variant
// (generic component, service or one of the backing service flavours).
type Component struct {
	Entity
	endpoints []*Endpoint
	data      []DataUsage
	host      *Infrastructure
}

// NewComponent creates a component of the given variant. The kind is not
// checked here; System.AddEntity rejects non-component kinds.
func NewComponent(id, name string, kind Kind) *Component {
	return &Component{Entity: newEntity(id, name, kind)}
}

func NewService(id, name string) *Component {
	return NewComponent(id, name, KindService)
}

func NewBackingService(id, name string) *Component {
	return NewComponent(id, name, KindBackingService)
}

func NewStorageBackingService(id, name string) *Component {
	return NewComponent(id, name, KindStorageBackingService)
}

func NewProxyBackingService(id, name string) *Component {
	return NewComponent(id, name, KindProxyBackingService)
}

func NewBrokerBackingService(id, name string) *Component {
	return NewComponent(id, name, KindBrokerBackingService)
}

// AddEndpoint transfers ownership of ep to c.
func (c *Component) AddEndpoint(ep *Endpoint) {
	ep.owner = c
	c.endpoints = append(c.endpoints, ep)
}

// Endpoints returns all owned endpoints, internal and external.
func (c *Component) Endpoints() []*Endpoint {
	return c.endpoints
}

// ExternalEndpoints returns the owned endpoints reachable from outside the
// system boundary.
func (c *Component) ExternalEndpoints() []*Endpoint {
	var out []*Endpoint
	for _, ep := range c.endpoints {
		if ep.External() {
			out = append(out, ep)
		}
	}
	return out
}

// HasEndpoint reports whether c owns an endpoint with the given id.
func (c *Component) HasEndpoint(endpointID string) bool {
	for _, ep := range c.endpoints {
		if ep.ID() == endpointID {
			return true
		}
	}
	return false
}

// UseData records that c uses d in the given way.
func (c *Component) UseData(d *DataEntity, usage UsageKind) {
	c.data = append(c.data, DataUsage{Data: d, Usage: usage})
}

// DataUsages returns the data references of c.
func (c *Component) DataUsages() []DataUsage {
	return c.data
}

// DataAggregateIDs returns the ids of data aggregates c references.
// Backing data is excluded.
func (c *Component) DataAggregateIDs() []string {
	var ids []string
	for _, u := range c.data {
		if u.Data != nil && u.Data.Kind() == KindDataAggregate {
			ids = append(ids, u.Data.ID())
		}
	}
	return ids
}

// Host is the infrastructure c is deployed on, or nil when no deployment
// mapping has been added yet.
func (c *Component) Host() *Infrastructure {
	return c.host
}

func (c *Component) setHost(host *Infrastructure) {
	c.host = host
}

// Validate checks the property bag, the endpoints and the data references.
func (c *Component) Validate() error {
	if err := c.ValidateProperties(); err != nil {
		return err
	}
	for _, ep := range c.endpoints {
		if err := ep.Validate(); err != nil {
			return err
		}
	}
	for _, u := range c.data {
		if u.Data == nil {
			return &DanglingReferenceError{From: c.ID(), Ref: "data", Detail: "nil data entity"}
		}
		if !u.Usage.Valid() {
			return &DanglingReferenceError{From: c.ID(), Ref: u.Data.ID(), Detail: "unknown usage kind " + string(u.Usage)}
		}
	}
	return nil
}

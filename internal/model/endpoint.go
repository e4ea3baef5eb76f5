package model

// Endpoint is an invocable interface owned by exactly one component. The
// external variant is reachable from outside the system boundary and can
// start request traces.
type Endpoint struct {
	Entity
	Props EndpointProperties
	owner *Component
}

func NewEndpoint(id, name string, props EndpointProperties) *Endpoint {
	return &Endpoint{Entity: newEntity(id, name, KindEndpoint), Props: props}
}

func NewExternalEndpoint(id, name string, props EndpointProperties) *Endpoint {
	return &Endpoint{Entity: newEntity(id, name, KindExternalEndpoint), Props: props}
}

// External reports whether e is an external endpoint.
func (e *Endpoint) External() bool {
	return e.kind == KindExternalEndpoint
}

// Owner returns the component e was added to. Graph queries resolve owners
// through the System instead, so an owner outside the System is detected.
func (e *Endpoint) Owner() *Component {
	return e.owner
}

// SupportsTLS reports whether the endpoint's protocol is TLS capable.
func (e *Endpoint) SupportsTLS() bool {
	return e.Props.SupportsTLS()
}

func (e *Endpoint) Validate() error {
	if err := e.ValidateProperties(); err != nil {
		return err
	}
	return validateStruct(e, e.Props)
}

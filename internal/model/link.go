package model

// Link is a directed invocation edge from a component to an endpoint. It
// references both ends; the System owns the link itself.
type Link struct {
	Entity
	source *Component
	target *Endpoint
}

func NewLink(id string, source *Component, target *Endpoint) *Link {
	name := id
	if source != nil && target != nil {
		name = source.Name() + " -> " + target.Name()
	}
	return &Link{Entity: newEntity(id, name, KindLink), source: source, target: target}
}

func (l *Link) Source() *Component { return l.source }
func (l *Link) Target() *Endpoint  { return l.target }

// Asynchronous reports whether the link targets a message based endpoint.
func (l *Link) Asynchronous() bool {
	return l.target != nil && l.target.Props.Asynchronous()
}

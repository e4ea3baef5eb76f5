package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned when an entity id is already taken within its
// collection.
var ErrDuplicateID = errors.New("duplicate entity id")

// TypeError reports an entity the System cannot place in any collection.
type TypeError struct {
	Shape  string // Go type of the rejected value
	Kind   Kind
	Reason string
}

func newTypeError(e Identified, reason string) *TypeError {
	te := &TypeError{Shape: fmt.Sprintf("%T", e), Reason: reason}
	if e != nil {
		te.Kind = e.Kind()
	}
	return te
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot add %s (kind %q) to system: %s", e.Shape, e.Kind, e.Reason)
}

// DanglingReferenceError reports a reference to an entity that is not part
// of the System, such as a link whose target endpoint has no owning
// component in the graph.
type DanglingReferenceError struct {
	From   string // id of the referring entity
	Ref    string // id (or role) of the missing entity
	Detail string
}

func (e *DanglingReferenceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("dangling reference from %q to %q", e.From, e.Ref)
	}
	return fmt.Sprintf("dangling reference from %q to %q: %s", e.From, e.Ref, e.Detail)
}

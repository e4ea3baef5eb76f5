package model

import (
	"errors"
	"fmt"
)

// Identified is implemented by every entity the System can hold.
type Identified interface {
	ID() string
	Name() string
	Kind() Kind
}

// Metadata is diagram placement information. Evaluation never reads it.
type Metadata struct {
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Label  string  `yaml:"label,omitempty"`
}

// Entity is the shared part of all entity variants: identity, display
// name, diagram metadata and an ordered open property bag.
type Entity struct {
	id         string
	name       string
	kind       Kind
	Metadata   Metadata
	properties []*Property
}

func newEntity(id, name string, kind Kind) Entity {
	return Entity{id: id, name: name, kind: kind}
}

func (e *Entity) ID() string   { return e.id }
func (e *Entity) Name() string { return e.name }
func (e *Entity) Kind() Kind   { return e.kind }

// Properties returns the property bag in definition order.
func (e *Entity) Properties() []*Property {
	return e.properties
}

// Property resolves a property by key.
func (e *Entity) Property(key string) (*Property, bool) {
	for _, p := range e.properties {
		if p.Key == key {
			return p, true
		}
	}
	return nil, false
}

// PropertyValue returns the value of the property with key, or nil.
func (e *Entity) PropertyValue(key string) any {
	if p, ok := e.Property(key); ok {
		return p.Value
	}
	return nil
}

// DefineProperty adds p to the bag, replacing an existing definition with
// the same key in place.
func (e *Entity) DefineProperty(p Property) {
	for i, existing := range e.properties {
		if existing.Key == p.Key {
			e.properties[i] = &p
			return
		}
	}
	e.properties = append(e.properties, &p)
}

// SetProperty sets the value of key, defining an optional property if the
// key is not known yet.
func (e *Entity) SetProperty(key string, value any) {
	if p, ok := e.Property(key); ok {
		p.Value = value
		return
	}
	e.properties = append(e.properties, &Property{Key: key, DisplayName: key, Value: value})
}

// ValidateProperties checks that every required property has a value.
func (e *Entity) ValidateProperties() error {
	var errs []error
	for _, p := range e.properties {
		if p.Required && p.Value == nil {
			errs = append(errs, fmt.Errorf("%s %q: required property %q has no value", e.kind, e.id, p.Key))
		}
	}
	return errors.Join(errs...)
}

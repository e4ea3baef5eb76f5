// Package document reads and writes architecture documents: YAML
// descriptions of a system that are turned into a model.System.
//
// Authors refer to entities by key. A key is either given explicitly or
// derived from the entity's name; endpoints are referenced as
// "<component>.<endpoint>". Every entity id in the resulting System is
// unique across all kinds.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"archq/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var (
	// ErrUnknownReference is wrapped by errors for keys that resolve to
	// nothing.
	ErrUnknownReference = errors.New("unknown reference")
	// ErrDuplicateKey is wrapped by errors for keys used twice in one scope.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Document is the on-disk form of a system.
type Document struct {
	Name           string               `yaml:"name" validate:"required"`
	Components     []ComponentSpec      `yaml:"components,omitempty" validate:"dive"`
	Infrastructure []InfrastructureSpec `yaml:"infrastructure,omitempty" validate:"dive"`
	DataAggregates []DataSpec           `yaml:"dataAggregates,omitempty" validate:"dive"`
	BackingData    []DataSpec           `yaml:"backingData,omitempty" validate:"dive"`
	Deployments    []DeploymentSpec     `yaml:"deployments,omitempty" validate:"dive"`
	Links          []LinkSpec           `yaml:"links,omitempty" validate:"dive"`
	Traces         []TraceSpec          `yaml:"traces,omitempty" validate:"dive"`
}

type ComponentSpec struct {
	Key        string         `yaml:"key,omitempty"`
	Name       string         `yaml:"name" validate:"required"`
	Kind       string         `yaml:"kind" validate:"required,oneof=component service backing-service storage-backing-service proxy-backing-service broker-backing-service"`
	Properties map[string]any `yaml:"properties,omitempty"`
	Endpoints  []EndpointSpec `yaml:"endpoints,omitempty" validate:"dive"`
	Data       []DataRefSpec  `yaml:"data,omitempty" validate:"dive"`
}

type EndpointSpec struct {
	Key                      string `yaml:"key,omitempty"`
	Name                     string `yaml:"name" validate:"required"`
	External                 bool   `yaml:"external,omitempty"`
	model.EndpointProperties `yaml:",inline"`
}

// DataRefSpec references a data aggregate or backing data by key. Usage
// defaults to "usage".
type DataRefSpec struct {
	Ref   string `yaml:"ref" validate:"required"`
	Usage string `yaml:"usage,omitempty" validate:"omitempty,oneof=usage cached-usage persistence"`
}

type InfrastructureSpec struct {
	Key                            string `yaml:"key,omitempty"`
	Name                           string `yaml:"name" validate:"required"`
	model.InfrastructureProperties `yaml:",inline"`
}

type DataSpec struct {
	Key  string `yaml:"key,omitempty"`
	Name string `yaml:"name" validate:"required"`
}

// DeploymentSpec deploys a component or infrastructure entity onto an
// infrastructure entity. Replicas defaults to 1.
type DeploymentSpec struct {
	Key      string `yaml:"key,omitempty"`
	Deploy   string `yaml:"deploy" validate:"required"`
	On       string `yaml:"on" validate:"required"`
	Replicas *int   `yaml:"replicas,omitempty" validate:"omitempty,gte=0"`
}

// LinkSpec connects a component to an endpoint ("<component>.<endpoint>").
type LinkSpec struct {
	Key  string `yaml:"key,omitempty"`
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

// TraceSpec lists link keys per segment, starting at an external endpoint.
type TraceSpec struct {
	Key      string     `yaml:"key,omitempty"`
	Name     string     `yaml:"name" validate:"required"`
	Entry    string     `yaml:"entry" validate:"required"`
	Segments [][]string `yaml:"segments,omitempty"`
}

// Load reads and builds the document at path.
func Load(path string) (*model.System, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sys, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sys, nil
}

// Parse decodes, validates and builds a document. Unknown fields are
// rejected.
func Parse(data []byte) (*model.System, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// Decode decodes and validates a document without building it.
func Decode(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &doc, nil
}

package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Property is one entry of an entity's open property bag.
type Property struct {
	Key         string `yaml:"key"`
	DisplayName string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Example     any    `yaml:"example,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Value       any    `yaml:"value,omitempty"`
}

// PropShards is the open-bag key for the shard count of a storage
// backing service.
const PropShards = "shards"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ---------------------------------------------------------------------------
// Endpoints
// ---------------------------------------------------------------------------

// EndpointKind describes the interaction style of an endpoint.
type EndpointKind string

const (
	EndpointQuery        EndpointKind = "query"
	EndpointCommand      EndpointKind = "command"
	EndpointEvent        EndpointKind = "event"
	EndpointSubscription EndpointKind = "subscription"
)

// EndpointProperties is the fixed property set of (external) endpoints.
type EndpointProperties struct {
	Protocol string       `yaml:"protocol" validate:"required"`
	Port     int          `yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	Path     string       `yaml:"path,omitempty"`
	Kind     EndpointKind `yaml:"kind,omitempty" validate:"omitempty,oneof=query command event subscription"`
}

// tlsProtocols are protocols whose traffic is TLS protected.
var tlsProtocols = map[string]bool{
	"https":     true,
	"wss":       true,
	"grpcs":     true,
	"amqps":     true,
	"mqtts":     true,
	"kafka+ssl": true,
	"ldaps":     true,
	"ftps":      true,
	"smtps":     true,
	"sftp":      true,
	"ssh":       true,
	"tls":       true,
}

// asyncProtocols are messaging protocols; calls over them do not block the caller.
var asyncProtocols = map[string]bool{
	"amqp":      true,
	"amqps":     true,
	"mqtt":      true,
	"mqtts":     true,
	"kafka":     true,
	"kafka+ssl": true,
	"nats":      true,
	"stomp":     true,
}

// TLSProtocols returns the allow-list of TLS capable protocols, sorted.
func TLSProtocols() []string {
	out := make([]string, 0, len(tlsProtocols))
	for p := range tlsProtocols {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SupportsTLS reports whether the declared protocol is on the TLS allow-list.
func (p EndpointProperties) SupportsTLS() bool {
	return tlsProtocols[normalizeProtocol(p.Protocol)]
}

// Asynchronous reports whether the endpoint is message based, either by
// kind or by protocol.
func (p EndpointProperties) Asynchronous() bool {
	if p.Kind == EndpointEvent || p.Kind == EndpointSubscription {
		return true
	}
	return asyncProtocols[normalizeProtocol(p.Protocol)]
}

func normalizeProtocol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ---------------------------------------------------------------------------
// Deployment mappings and infrastructure
// ---------------------------------------------------------------------------

// DeploymentProperties is the fixed property set of a deployment mapping.
type DeploymentProperties struct {
	Replicas int `yaml:"replicas" validate:"gte=0"`
}

// InfrastructureProperties is the fixed property set of infrastructure nodes.
type InfrastructureProperties struct {
	Kind        string `yaml:"kind,omitempty" validate:"omitempty,oneof=kubernetes virtual-machine bare-metal serverless container-runtime paas"`
	Environment string `yaml:"environment,omitempty"`
	Managed     bool   `yaml:"managed,omitempty"`
}

// validateStruct runs the struct validator and prefixes failures with the
// owning entity.
func validateStruct(owner Identified, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%s %q: %w", owner.Kind(), owner.ID(), err)
	}
	return nil
}

// IntValue converts a property value to an int. Strings and floats with an
// integral value are accepted since YAML and JSON producers disagree on
// number types.
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err == nil {
			return i, true
		}
	}
	return 0, false
}

package model

import "fmt"

// Kind discriminates entity variants. It is fixed when an entity is
// constructed and drives System.AddEntity's dispatch.
type Kind string

const (
	KindComponent             Kind = "component"
	KindService               Kind = "service"
	KindBackingService        Kind = "backing-service"
	KindStorageBackingService Kind = "storage-backing-service"
	KindProxyBackingService   Kind = "proxy-backing-service"
	KindBrokerBackingService  Kind = "broker-backing-service"
	KindEndpoint              Kind = "endpoint"
	KindExternalEndpoint      Kind = "external-endpoint"
	KindLink                  Kind = "link"
	KindInfrastructure        Kind = "infrastructure"
	KindDeploymentMapping     Kind = "deployment-mapping"
	KindRequestTrace          Kind = "request-trace"
	KindDataAggregate         Kind = "data-aggregate"
	KindBackingData           Kind = "backing-data"
)

// AllKinds lists every entity kind in declaration order.
func AllKinds() []Kind {
	return []Kind{
		KindComponent,
		KindService,
		KindBackingService,
		KindStorageBackingService,
		KindProxyBackingService,
		KindBrokerBackingService,
		KindEndpoint,
		KindExternalEndpoint,
		KindLink,
		KindInfrastructure,
		KindDeploymentMapping,
		KindRequestTrace,
		KindDataAggregate,
		KindBackingData,
	}
}

// ComponentKinds lists the six component variants.
func ComponentKinds() []Kind {
	return []Kind{
		KindComponent,
		KindService,
		KindBackingService,
		KindStorageBackingService,
		KindProxyBackingService,
		KindBrokerBackingService,
	}
}

// IsComponent reports whether k is one of the component variants.
func (k Kind) IsComponent() bool {
	switch k {
	case KindComponent, KindService, KindBackingService,
		KindStorageBackingService, KindProxyBackingService, KindBrokerBackingService:
		return true
	}
	return false
}

// IsData reports whether k is a data entity (aggregate or backing data).
func (k Kind) IsData() bool {
	return k == KindDataAggregate || k == KindBackingData
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

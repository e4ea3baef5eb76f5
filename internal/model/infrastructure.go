package model

// Deployable is anything a deployment mapping can place on infrastructure.
// It is implemented by *Component and *Infrastructure.
type Deployable interface {
	Identified
	setHost(*Infrastructure)
}

// Infrastructure is a compute or platform node.
type Infrastructure struct {
	Entity
	Props InfrastructureProperties
	host  *Infrastructure
}

func NewInfrastructure(id, name string, props InfrastructureProperties) *Infrastructure {
	return &Infrastructure{Entity: newEntity(id, name, KindInfrastructure), Props: props}
}

// Host is the infrastructure this node runs on, if any.
func (i *Infrastructure) Host() *Infrastructure {
	return i.host
}

func (i *Infrastructure) setHost(host *Infrastructure) {
	i.host = host
}

func (i *Infrastructure) Validate() error {
	if err := i.ValidateProperties(); err != nil {
		return err
	}
	return validateStruct(i, i.Props)
}

// DeploymentMapping binds a deployable entity to its host infrastructure.
type DeploymentMapping struct {
	Entity
	Props    DeploymentProperties
	deployed Deployable
	host     *Infrastructure
}

// NewDeploymentMapping maps deployed onto host. Replicas defaults to what
// props carries; callers that do not know the replica count pass 1.
func NewDeploymentMapping(id string, deployed Deployable, host *Infrastructure, props DeploymentProperties) *DeploymentMapping {
	name := id
	if deployed != nil && host != nil {
		name = deployed.Name() + " @ " + host.Name()
	}
	return &DeploymentMapping{
		Entity:   newEntity(id, name, KindDeploymentMapping),
		Props:    props,
		deployed: deployed,
		host:     host,
	}
}

func (m *DeploymentMapping) Deployed() Deployable   { return m.deployed }
func (m *DeploymentMapping) Host() *Infrastructure { return m.host }

func (m *DeploymentMapping) Validate() error {
	return validateStruct(m, m.Props)
}

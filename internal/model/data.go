package model

// DataEntity is a data aggregate or backing data entity. Components refer
// to it through DataUsage; the System owns it.
type DataEntity struct {
	Entity
}

func NewDataAggregate(id, name string) *DataEntity {
	return &DataEntity{Entity: newEntity(id, name, KindDataAggregate)}
}

// NewBackingData creates a backing data entity such as configuration or
// secrets a component needs at runtime.
func NewBackingData(id, name string) *DataEntity {
	return &DataEntity{Entity: newEntity(id, name, KindBackingData)}
}

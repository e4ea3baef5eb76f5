package document

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"archq/internal/model"
)

// Encode writes sys as a document. Entity ids become explicit keys, so
// Parse(Encode(sys)) reproduces the same ids.
func Encode(sys *model.System) ([]byte, error) {
	doc, err := FromSystem(sys)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}

// FromSystem converts sys to its document form.
func FromSystem(sys *model.System) (*Document, error) {
	doc := &Document{Name: sys.Name}

	for _, d := range sys.DataAggregates() {
		doc.DataAggregates = append(doc.DataAggregates, DataSpec{Key: d.ID(), Name: d.Name()})
	}
	for _, d := range sys.BackingData() {
		doc.BackingData = append(doc.BackingData, DataSpec{Key: d.ID(), Name: d.Name()})
	}

	for _, c := range sys.Components() {
		cs := ComponentSpec{Key: c.ID(), Name: c.Name(), Kind: string(c.Kind())}
		for _, p := range c.Properties() {
			if p.Value == nil {
				continue
			}
			if cs.Properties == nil {
				cs.Properties = map[string]any{}
			}
			cs.Properties[p.Key] = p.Value
		}
		for _, ep := range c.Endpoints() {
			cs.Endpoints = append(cs.Endpoints, EndpointSpec{
				Key:                ep.ID(),
				Name:               ep.Name(),
				External:           ep.External(),
				EndpointProperties: ep.Props,
			})
		}
		for _, u := range c.DataUsages() {
			if u.Data == nil {
				continue
			}
			cs.Data = append(cs.Data, DataRefSpec{Ref: u.Data.ID(), Usage: string(u.Usage)})
		}
		doc.Components = append(doc.Components, cs)
	}

	for _, i := range sys.Infrastructures() {
		doc.Infrastructure = append(doc.Infrastructure, InfrastructureSpec{Key: i.ID(), Name: i.Name(), InfrastructureProperties: i.Props})
	}

	for _, m := range sys.DeploymentMappings() {
		replicas := m.Props.Replicas
		doc.Deployments = append(doc.Deployments, DeploymentSpec{
			Key:      m.ID(),
			Deploy:   m.Deployed().ID(),
			On:       m.Host().ID(),
			Replicas: &replicas,
		})
	}

	for _, l := range sys.Links() {
		to, err := endpointRef(sys, l.Target())
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", l.ID(), err)
		}
		doc.Links = append(doc.Links, LinkSpec{Key: l.ID(), From: l.Source().ID(), To: to})
	}

	for _, t := range sys.RequestTraces() {
		entry, err := endpointRef(sys, t.Entry())
		if err != nil {
			return nil, fmt.Errorf("trace %q: %w", t.ID(), err)
		}
		ts := TraceSpec{Key: t.ID(), Name: t.Name(), Entry: entry}
		for _, seg := range t.Segments() {
			ids := make([]string, len(seg))
			for i, l := range seg {
				ids[i] = l.ID()
			}
			ts.Segments = append(ts.Segments, ids)
		}
		doc.Traces = append(doc.Traces, ts)
	}
	return doc, nil
}

func endpointRef(sys *model.System, ep *model.Endpoint) (string, error) {
	owner, ok := sys.SearchComponentOfEndpoint(ep.ID())
	if !ok {
		return "", fmt.Errorf("endpoint %q: %w", ep.ID(), ErrUnknownReference)
	}
	return owner.ID() + "." + ep.ID(), nil
}

package document

import (
	"fmt"
	"sort"
	"strings"

	"archq/internal/model"
)

// builder resolves author keys while populating a System.
type builder struct {
	sys   *model.System
	keys  *model.KeyAllocator
	comps map[string]*model.Component
	eps   map[string]*model.Endpoint
	infra map[string]*model.Infrastructure
	data  map[string]*model.DataEntity
	links map[string]*model.Link
}

// Build populates a new System from doc. Data comes first so components
// can reference it, then components, infrastructure, deployments, links
// and traces. The built System is validated before it is returned.
func Build(doc *Document) (*model.System, error) {
	b := &builder{
		sys:   model.NewSystem(doc.Name),
		keys:  model.NewKeyAllocator(),
		comps: map[string]*model.Component{},
		eps:   map[string]*model.Endpoint{},
		infra: map[string]*model.Infrastructure{},
		data:  map[string]*model.DataEntity{},
		links: map[string]*model.Link{},
	}

	steps := []func(*Document) error{
		b.addData,
		b.addComponents,
		b.addInfrastructure,
		b.addDeployments,
		b.addLinks,
		b.addTraces,
	}
	for _, step := range steps {
		if err := step(doc); err != nil {
			return nil, err
		}
	}
	if err := b.sys.Validate(); err != nil {
		return nil, err
	}
	return b.sys, nil
}

// authorKey is the key an author refers to an entity by.
func authorKey(key, name string, fallback model.Kind) string {
	if k := strings.TrimSpace(key); k != "" {
		return k
	}
	if k := model.KeyFromName(name); k != "" {
		return k
	}
	return string(fallback)
}

func claim[T any](scope map[string]T, kind, key string) error {
	if _, dup := scope[key]; dup {
		return fmt.Errorf("%s %q: %w", kind, key, ErrDuplicateKey)
	}
	return nil
}

func (b *builder) addData(doc *Document) error {
	add := func(specs []DataSpec, kind model.Kind, ctor func(id, name string) *model.DataEntity) error {
		for _, s := range specs {
			key := authorKey(s.Key, s.Name, kind)
			if err := claim(b.data, "data", key); err != nil {
				return err
			}
			d := ctor(b.keys.EnsureUniqueness(key), s.Name)
			if err := b.sys.AddEntity(d); err != nil {
				return err
			}
			b.data[key] = d
		}
		return nil
	}
	if err := add(doc.DataAggregates, model.KindDataAggregate, model.NewDataAggregate); err != nil {
		return err
	}
	return add(doc.BackingData, model.KindBackingData, model.NewBackingData)
}

func (b *builder) addComponents(doc *Document) error {
	for _, s := range doc.Components {
		kind, err := model.ParseKind(s.Kind)
		if err != nil {
			return err
		}
		key := authorKey(s.Key, s.Name, kind)
		if err := claim(b.comps, "component", key); err != nil {
			return err
		}
		c := model.NewComponent(b.keys.EnsureUniqueness(key), s.Name, kind)

		props := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			props = append(props, k)
		}
		sort.Strings(props)
		for _, k := range props {
			c.SetProperty(k, s.Properties[k])
		}

		for _, es := range s.Endpoints {
			epKey := key + "." + authorKey(es.Key, es.Name, model.KindEndpoint)
			if err := claim(b.eps, "endpoint", epKey); err != nil {
				return err
			}
			id := b.keys.EnsureUniqueness(authorKey(es.Key, es.Name, model.KindEndpoint))
			var ep *model.Endpoint
			if es.External {
				ep = model.NewExternalEndpoint(id, es.Name, es.EndpointProperties)
			} else {
				ep = model.NewEndpoint(id, es.Name, es.EndpointProperties)
			}
			c.AddEndpoint(ep)
			b.eps[epKey] = ep
		}

		for _, ref := range s.Data {
			d, ok := b.data[ref.Ref]
			if !ok {
				return fmt.Errorf("component %q uses data %q: %w", key, ref.Ref, ErrUnknownReference)
			}
			usage := model.UsageKind(ref.Usage)
			if usage == "" {
				usage = model.UsageKindUsage
			}
			c.UseData(d, usage)
		}

		if err := b.sys.AddEntity(c); err != nil {
			return err
		}
		b.comps[key] = c
	}
	return nil
}

func (b *builder) addInfrastructure(doc *Document) error {
	for _, s := range doc.Infrastructure {
		key := authorKey(s.Key, s.Name, model.KindInfrastructure)
		if err := claim(b.infra, "infrastructure", key); err != nil {
			return err
		}
		i := model.NewInfrastructure(b.keys.EnsureUniqueness(key), s.Name, s.InfrastructureProperties)
		if err := b.sys.AddEntity(i); err != nil {
			return err
		}
		b.infra[key] = i
	}
	return nil
}

func (b *builder) addDeployments(doc *Document) error {
	for _, s := range doc.Deployments {
		var deployed model.Deployable
		if c, ok := b.comps[s.Deploy]; ok {
			deployed = c
		} else if i, ok := b.infra[s.Deploy]; ok {
			deployed = i
		} else {
			return fmt.Errorf("deployment of %q: %w", s.Deploy, ErrUnknownReference)
		}
		host, ok := b.infra[s.On]
		if !ok {
			return fmt.Errorf("deployment of %q on %q: %w", s.Deploy, s.On, ErrUnknownReference)
		}
		replicas := 1
		if s.Replicas != nil {
			replicas = *s.Replicas
		}
		key := authorKey(s.Key, s.Deploy+" on "+s.On, model.KindDeploymentMapping)
		m := model.NewDeploymentMapping(b.keys.EnsureUniqueness(key), deployed, host, model.DeploymentProperties{Replicas: replicas})
		if err := b.sys.AddEntity(m); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addLinks(doc *Document) error {
	for _, s := range doc.Links {
		src, ok := b.comps[s.From]
		if !ok {
			return fmt.Errorf("link from %q: %w", s.From, ErrUnknownReference)
		}
		target, ok := b.eps[s.To]
		if !ok {
			return fmt.Errorf("link to %q: %w", s.To, ErrUnknownReference)
		}
		key := authorKey(s.Key, s.From+" "+s.To, model.KindLink)
		if err := claim(b.links, "link", key); err != nil {
			return err
		}
		l := model.NewLink(b.keys.EnsureUniqueness(key), src, target)
		if err := b.sys.AddEntity(l); err != nil {
			return err
		}
		b.links[key] = l
	}
	return nil
}

func (b *builder) addTraces(doc *Document) error {
	for _, s := range doc.Traces {
		entry, ok := b.eps[s.Entry]
		if !ok {
			return fmt.Errorf("trace %q entry %q: %w", s.Name, s.Entry, ErrUnknownReference)
		}
		key := authorKey(s.Key, s.Name, model.KindRequestTrace)
		t := model.NewRequestTrace(b.keys.EnsureUniqueness(key), s.Name, entry)
		for i, seg := range s.Segments {
			links := make([]*model.Link, 0, len(seg))
			for _, lk := range seg {
				l, ok := b.links[lk]
				if !ok {
					return fmt.Errorf("trace %q segment %d link %q: %w", s.Name, i, lk, ErrUnknownReference)
				}
				links = append(links, l)
			}
			t.AppendSegment(links...)
		}
		if err := b.sys.AddEntity(t); err != nil {
			return err
		}
	}
	return nil
}

package model

import "fmt"

// collection is an id-keyed set that remembers insertion order, so that
// graph queries iterate deterministically.
type collection[T Identified] struct {
	order []string
	byID  map[string]T
}

func (c *collection[T]) add(item T) error {
	if c.byID == nil {
		c.byID = make(map[string]T)
	}
	if _, exists := c.byID[item.ID()]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateID, item.Kind(), item.ID())
	}
	c.byID[item.ID()] = item
	c.order = append(c.order, item.ID())
	return nil
}

func (c *collection[T]) get(id string) (T, bool) {
	item, ok := c.byID[id]
	return item, ok
}

func (c *collection[T]) all() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *collection[T]) len() int {
	return len(c.order)
}

func (c *collection[T]) reset() {
	c.order = nil
	c.byID = nil
}

package model

// RequestTrace is an ordered sequence of link segments starting at an
// external endpoint. Links within one segment happen in parallel, which is
// how branching requests are modeled.
type RequestTrace struct {
	Entity
	entry    *Endpoint
	segments [][]*Link
}

func NewRequestTrace(id, name string, entry *Endpoint, segments ...[]*Link) *RequestTrace {
	return &RequestTrace{Entity: newEntity(id, name, KindRequestTrace), entry: entry, segments: segments}
}

// Entry is the external endpoint the trace starts at.
func (t *RequestTrace) Entry() *Endpoint { return t.entry }

// Segments returns the ordered link segments.
func (t *RequestTrace) Segments() [][]*Link { return t.segments }

// AppendSegment adds a segment of parallel links at the end of the trace.
func (t *RequestTrace) AppendSegment(links ...*Link) {
	t.segments = append(t.segments, links)
}

// Links returns all links of the trace, segment by segment.
func (t *RequestTrace) Links() []*Link {
	var out []*Link
	for _, seg := range t.segments {
		out = append(out, seg...)
	}
	return out
}

package measure

import "archq/internal/model"

// Communication patterns reported by CommunicationPattern and
// DominantCommunicationPattern.
const (
	PatternSynchronous  = "synchronous"
	PatternAsynchronous = "asynchronous"
	PatternMixed        = "mixed"
	PatternNone         = "none"
)

// IncomingLinkCount counts links targeting any endpoint of c.
func IncomingLinkCount(sys *model.System, c *model.Component) (Value, error) {
	return Number(float64(len(sys.IncomingLinksOfComponent(c.ID())))), nil
}

// OutgoingLinkCount counts links whose source is c.
func OutgoingLinkCount(sys *model.System, c *model.Component) (Value, error) {
	return Number(float64(len(sys.OutgoingLinksOfComponent(c.ID())))), nil
}

// ReplicaCount sums the replicas of every deployment of c, n/a when c is
// not deployed.
func ReplicaCount(sys *model.System, c *model.Component) (Value, error) {
	mappings := sys.DeploymentsOf(c.ID())
	if len(mappings) == 0 {
		return NotApplicable(), nil
	}
	var sum int
	for _, m := range mappings {
		sum += m.Props.Replicas
	}
	return Number(float64(sum)), nil
}

// CommunicationPattern classifies the outgoing links of c.
func CommunicationPattern(sys *model.System, c *model.Component) (Value, error) {
	return Category(pattern(sys.OutgoingLinksOfComponent(c.ID()))), nil
}

func pattern(links []*model.Link) string {
	var async, sync int
	for _, l := range links {
		if l.Asynchronous() {
			async++
		} else {
			sync++
		}
	}
	switch {
	case async == 0 && sync == 0:
		return PatternNone
	case sync == 0:
		return PatternAsynchronous
	case async == 0:
		return PatternSynchronous
	default:
		return PatternMixed
	}
}

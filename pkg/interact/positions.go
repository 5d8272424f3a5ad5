package interact

import (
	"maps"

	"github.com/matzehuels/lineagescope/pkg/lineage"
)

// Positions stores user-chosen node positions. Later writes for the same id
// replace earlier ones. Ids are not checked against any graph.
type Positions struct {
	m map[string]lineage.Position
}

var _ lineage.PositionLookup = (*Positions)(nil)

// NewPositions returns an empty store.
func NewPositions() *Positions {
	return &Positions{m: map[string]lineage.Position{}}
}

// Set records pos for id.
func (p *Positions) Set(id string, pos lineage.Position) {
	if p.m == nil {
		p.m = map[string]lineage.Position{}
	}
	p.m[id] = pos
}

// Get returns the stored position for id.
func (p *Positions) Get(id string) (lineage.Position, bool) {
	pos, ok := p.m[id]
	return pos, ok
}

// GetOrDefault returns the stored position for id, or def.
func (p *Positions) GetOrDefault(id string, def lineage.Position) lineage.Position {
	if pos, ok := p.m[id]; ok {
		return pos
	}
	return def
}

// Lookup implements [lineage.PositionLookup].
func (p *Positions) Lookup(id string) (lineage.Position, bool) {
	if p == nil {
		return lineage.Position{}, false
	}
	return p.Get(id)
}

// Clear drops every override and returns how many there were.
func (p *Positions) Clear() int {
	n := len(p.m)
	p.m = map[string]lineage.Position{}
	return n
}

// Len returns the number of overrides.
func (p *Positions) Len() int { return len(p.m) }

// Map returns a copy of the overrides.
func (p *Positions) Map() map[string]lineage.Position {
	out := make(map[string]lineage.Position, len(p.m))
	maps.Copy(out, p.m)
	return out
}

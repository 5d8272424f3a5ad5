package interact

import (
	"testing"

	"github.com/matzehuels/lineagescope/pkg/lineage"
)

func TestPositions(t *testing.T) {
	p := NewPositions()
	def := lineage.Position{X: 1, Y: 1}

	if got := p.GetOrDefault("package-0", def); got != def {
		t.Errorf("GetOrDefault() on empty store = %+v, want %+v", got, def)
	}

	p.Set("package-0", lineage.Position{X: 10, Y: 10})
	p.Set("package-0", lineage.Position{X: 20, Y: 30})
	p.Set("step-9-9-9", lineage.Position{X: 5, Y: 5})

	if got, ok := p.Get("package-0"); !ok || got != (lineage.Position{X: 20, Y: 30}) {
		t.Errorf("Get() = %+v, %v; want last write", got, ok)
	}
	if got := p.GetOrDefault("step-9-9-9", def); got != (lineage.Position{X: 5, Y: 5}) {
		t.Errorf("GetOrDefault() = %+v, want stored value", got)
	}
	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}

	m := p.Map()
	m["package-0"] = lineage.Position{}
	if got, _ := p.Get("package-0"); got == (lineage.Position{}) {
		t.Error("Map() should return a copy")
	}

	if n := p.Clear(); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if _, ok := p.Lookup("package-0"); ok {
		t.Error("Lookup() after Clear() should miss")
	}
}

func TestPositions_ZeroValue(t *testing.T) {
	var p Positions
	p.Set("source", lineage.Position{X: 1})
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}

	var nilStore *Positions
	if _, ok := nilStore.Lookup("source"); ok {
		t.Error("nil store Lookup() should miss")
	}
}

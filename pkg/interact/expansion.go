package interact

import "github.com/matzehuels/lineagescope/pkg/lineage"

// Action is the effect of a node click.
type Action string

const (
	ActionNone     Action = "none"
	ActionExpand   Action = "expand"
	ActionCollapse Action = "collapse"
	ActionDetail   Action = "detail"
)

// Expansion tracks which packages and procedures are expanded.
type Expansion struct {
	Packages   lineage.Set
	Procedures lineage.Set
}

// NewExpansion returns an expansion with everything collapsed.
func NewExpansion() Expansion {
	return Expansion{Packages: lineage.NewSet(), Procedures: lineage.NewSet()}
}

// Toggle flips the expansion of id. Collapsing a package also collapses
// every procedure under it. Ids that are not expandable are ignored.
func (e *Expansion) Toggle(id string) Action {
	e.init()

	var set lineage.Set
	switch lineage.ParseKind(id) {
	case lineage.KindPackage:
		set = e.Packages
	case lineage.KindProcedure:
		set = e.Procedures
	default:
		return ActionNone
	}

	if !set.Has(id) {
		set.Add(id)
		return ActionExpand
	}
	set.Remove(id)
	if lineage.ParseKind(id) == lineage.KindPackage {
		scope := lineage.ChildScope(id)
		for p := range e.Procedures {
			if lineage.InScope(p, scope) {
				e.Procedures.Remove(p)
			}
		}
	}
	return ActionCollapse
}

// Expanded reports whether id is expanded.
func (e *Expansion) Expanded(id string) bool {
	return e.Packages.Has(id) || e.Procedures.Has(id)
}

// Reset collapses everything.
func (e *Expansion) Reset() {
	e.Packages = lineage.NewSet()
	e.Procedures = lineage.NewSet()
}

// Clone returns a deep copy.
func (e Expansion) Clone() Expansion {
	return Expansion{Packages: e.Packages.Clone(), Procedures: e.Procedures.Clone()}
}

func (e *Expansion) init() {
	if e.Packages == nil {
		e.Packages = lineage.NewSet()
	}
	if e.Procedures == nil {
		e.Procedures = lineage.NewSet()
	}
}

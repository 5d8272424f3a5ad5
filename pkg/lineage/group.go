package lineage

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/matzehuels/lineagescope/pkg/report"
)

// procedureGroup is one procedure's references, grouped by step.
type procedureGroup struct {
	name   string
	steps  []*stepGroup
	byStep map[string]*stepGroup
}

// stepGroup is one step's references across all groups that name it.
type stepGroup struct {
	id       string
	stepLine *int
	direct   []Reference
	indirect []Reference
}

func (s *stepGroup) total() int { return len(s.direct) + len(s.indirect) }

func (p *procedureGroup) counts() (direct, indirect int) {
	for _, s := range p.steps {
		direct += len(s.direct)
		indirect += len(s.indirect)
	}
	return direct, indirect
}

// groupProcedures groups a package's references by procedure and then by
// step, in order of first appearance: direct groups first, then indirect.
func groupProcedures(pkg *report.PackageEntry) []*procedureGroup {
	var procs []*procedureGroup
	byName := map[string]*procedureGroup{}

	add := func(groups []report.ReferenceGroup, scope string) {
		for _, g := range groups {
			name := g.Procedure
			if name == "" {
				name = report.UnknownProcedure
			}
			proc, ok := byName[name]
			if !ok {
				proc = &procedureGroup{name: name, byStep: map[string]*stepGroup{}}
				byName[name] = proc
				procs = append(procs, proc)
			}
			step, ok := proc.byStep[g.StepID]
			if !ok {
				step = &stepGroup{id: g.StepID}
				proc.byStep[g.StepID] = step
				proc.steps = append(proc.steps, step)
			}
			if step.stepLine == nil {
				step.stepLine = g.StepLine
			}
			for _, ref := range g.References {
				r := newReference(ref, scope, g.StepLine)
				if scope == ScopeDirect {
					step.direct = append(step.direct, r)
				} else {
					step.indirect = append(step.indirect, r)
				}
			}
		}
	}
	add(pkg.Direct, ScopeDirect)
	add(pkg.Indirect, ScopeIndirect)
	return procs
}

// stepPattern splits a step id into prefix and numeric suffix: "P1-10" → ("P1", 10).
var stepPattern = regexp.MustCompile(`^(.+)[-_](\d+)$`)

// SplitStepID returns the chain prefix and numeric suffix of a step id.
// Ids that do not end in a separator and digits are their own prefix with
// suffix 0.
func SplitStepID(id string) (prefix string, suffix int) {
	m := stepPattern.FindStringSubmatch(id)
	if m == nil {
		return id, 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return id, 0
	}
	return m[1], n
}

// stepRow is a chain of steps sharing one prefix, sorted by suffix.
type stepRow struct {
	prefix string
	steps  []*stepGroup
}

// chainSteps partitions steps by prefix, keeping prefixes in order of first
// appearance, and sorts each partition by numeric suffix. Ties keep their
// original order.
func chainSteps(steps []*stepGroup) []stepRow {
	var rows []stepRow
	index := map[string]int{}
	suffix := make(map[*stepGroup]int, len(steps))

	for _, s := range steps {
		prefix, n := SplitStepID(s.id)
		suffix[s] = n
		i, ok := index[prefix]
		if !ok {
			i = len(rows)
			index[prefix] = i
			rows = append(rows, stepRow{prefix: prefix})
		}
		rows[i].steps = append(rows[i].steps, s)
	}

	for _, row := range rows {
		slices.SortStableFunc(row.steps, func(a, b *stepGroup) int {
			return suffix[a] - suffix[b]
		})
	}
	return rows
}

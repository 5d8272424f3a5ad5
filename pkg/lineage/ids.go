package lineage

import (
	"fmt"
	"strings"
)

// SourceID is the id of the single source node.
const SourceID = "source"

// PackageID returns the id of package i.
func PackageID(i int) string { return fmt.Sprintf("package-%d", i) }

// ProcedureID returns the id of procedure j of package i.
func ProcedureID(i, j int) string { return fmt.Sprintf("procedure-%d-%d", i, j) }

// StepID returns the id of step k of procedure j of package i.
func StepID(i, j, k int) string { return fmt.Sprintf("step-%d-%d-%d", i, j, k) }

// EdgeID returns the id of the edge from source to target.
func EdgeID(source, target string) string { return source + "->" + target }

// ParseKind returns the kind encoded in a node id, or "" if the id does not
// follow the builder's scheme.
func ParseKind(id string) Kind {
	switch {
	case id == SourceID:
		return KindSource
	case strings.HasPrefix(id, "package-"):
		return KindPackage
	case strings.HasPrefix(id, "procedure-"):
		return KindProcedure
	case strings.HasPrefix(id, "step-"):
		return KindStep
	}
	return ""
}

// ChildScope returns the id prefix shared by every direct child of an
// expandable node: "package-3" → "procedure-3-", "procedure-3-1" → "step-3-1-".
// It returns "" for ids that have no expandable children.
func ChildScope(id string) string {
	switch ParseKind(id) {
	case KindPackage:
		return "procedure-" + strings.TrimPrefix(id, "package-") + "-"
	case KindProcedure:
		return "step-" + strings.TrimPrefix(id, "procedure-") + "-"
	}
	return ""
}

// InScope reports whether id lies under the given child scope.
func InScope(id, scope string) bool {
	return scope != "" && strings.HasPrefix(id, scope)
}

// Ancestors returns the expandable ancestors of id, outermost first:
// "step-3-1-0" → ["package-3", "procedure-3-1"]. Ids outside the builder's
// scheme have none.
func Ancestors(id string) []string {
	var parts []string
	switch ParseKind(id) {
	case KindProcedure:
		parts = strings.Split(strings.TrimPrefix(id, "procedure-"), "-")
		if len(parts) != 2 {
			return nil
		}
		return []string{"package-" + parts[0]}
	case KindStep:
		parts = strings.Split(strings.TrimPrefix(id, "step-"), "-")
		if len(parts) != 3 {
			return nil
		}
		return []string{"package-" + parts[0], "procedure-" + parts[0] + "-" + parts[1]}
	}
	return nil
}

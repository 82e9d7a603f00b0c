package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evanfield/guidepost/pkg/domain"
)

// Overlay contains session state to visualize on the graph.
type Overlay struct {
	VisitedNodes []int
	CurrentNode  int
}

// GenerateMermaid produces a Mermaid flowchart from a script's nodes and
// branch rules. Semantic styling:
// - Milestone: ((Circle))
// - Free text: [/Parallelogram/]
// - Terminal: [[Subroutine]]
// - Default: [Rectangle]
// Choice edges are solid and labeled; rule overrides are dashed.
// Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(nodes []domain.Node, rules []domain.BranchRule, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	sorted := make([]domain.Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	hasEnd := false
	for _, node := range sorted {
		opener, closer := "[", "]"
		switch {
		case node.Milestone != "":
			opener, closer = "((", "))"
		case node.FreeText:
			opener, closer = "[/", "/]"
		case node.Terminal():
			opener, closer = "[[", "]]"
		}

		label := nodeLabel(node)
		sb.WriteString(fmt.Sprintf("    n%d%s\"%s\"%s\n", node.ID, opener, label, closer))

		for _, c := range node.Choices {
			safeLabel := strings.ReplaceAll(c.Label, "\"", "'")
			if c.To == domain.EndID {
				hasEnd = true
				sb.WriteString(fmt.Sprintf("    n%d -- \"%s\" --> nEnd\n", node.ID, safeLabel))
				continue
			}
			sb.WriteString(fmt.Sprintf("    n%d -- \"%s\" --> n%d\n", node.ID, safeLabel, c.To))
		}
		if node.FreeText {
			sb.WriteString(fmt.Sprintf("    n%d --> n%d\n", node.ID, node.ID+1))
		}
	}

	if hasEnd {
		sb.WriteString("    nEnd(((End)))\n")
	}

	for _, r := range rules {
		switch rule := r.(type) {
		case domain.ScoreGate:
			sb.WriteString(fmt.Sprintf("    n%d -. \"score < %d\" .-> n%d\n", rule.Trigger, rule.Threshold, rule.Below))
			sb.WriteString(fmt.Sprintf("    n%d -. \"score >= %d\" .-> n%d\n", rule.Trigger, rule.Threshold, rule.AtOrAbove))
		case domain.ElapsedSkip:
			sb.WriteString(fmt.Sprintf("    n%d -. \"within %s\" .-> n%d\n", rule.OnTarget, rule.Within, rule.SkipTo))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[int]bool)
		for _, id := range overlay.VisitedNodes {
			if !visitedSet[id] {
				visitedSet[id] = true
				sb.WriteString(fmt.Sprintf("    class n%d visited;\n", id))
			}
		}
		if overlay.CurrentNode != 0 {
			sb.WriteString(fmt.Sprintf("    class n%d current;\n", overlay.CurrentNode))
		}
	}

	return sb.String()
}

// nodeLabel is the node id plus a short excerpt of its first line.
func nodeLabel(node domain.Node) string {
	if len(node.Lines) == 0 {
		return fmt.Sprintf("%d", node.ID)
	}
	excerpt := node.Lines[0]
	if len(excerpt) > 40 {
		excerpt = excerpt[:37] + "..."
	}
	excerpt = strings.ReplaceAll(excerpt, "\"", "'")
	return fmt.Sprintf("%d: %s", node.ID, excerpt)
}

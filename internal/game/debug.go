package game

import (
	"fmt"
	"strings"

	"rewindcore/internal/core"
	"rewindcore/pkg/domain"
)

// DescribeHistory renders the undo history for debug output. Applied entries
// are marked with "*", entries ahead of the cursor with "-".
func DescribeHistory(w *domain.World) string {
	hist, ok := domain.Resource[core.History](w)
	if !ok || hist.Len() == 0 {
		return "history: empty"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "history: %d/%d applied\n", hist.Index(), hist.Len())
	for i, entry := range hist.Items() {
		marker := "*"
		if i >= hist.Index() {
			marker = "-"
		}
		fmt.Fprintf(&b, "  %s %s %s\n", marker, entry, describeEntry(w, entry))
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeEntry(w *domain.World, h domain.Handle) string {
	if a, ok := domain.Get[SetLevel](w, h); ok {
		return fmt.Sprintf("set level (stored %d)", a.Value)
	}
	if a, ok := domain.Get[MoveEntity](w, h); ok {
		return fmt.Sprintf("move %s by (%g, %g, %g)", a.Target, a.DX, a.DY, a.DZ)
	}
	return "unknown action"
}

package diff

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	// GeneratedLayout formats the report generation time
	GeneratedLayout = "2006-01-02 15:04:05"

	noneLost   = "(none) - no followers were lost."
	noneGained = "(none) - no new followers were gained."
)

var (
	wideRule   = strings.Repeat("-", 70)
	narrowRule = strings.Repeat("-", 40)
)

// Render writes the plain text report
func Render(w io.Writer, rep *Report) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	line("%s", wideRule)
	line("Follower Difference Report Generated: %s", rep.GeneratedAt.Format(GeneratedLayout))
	line("%s", wideRule)
	line("Comparison Basis:")
	line("  - OLD Snapshot: %s (%d followers)", rep.OldName, rep.OldCount)
	line("  - NEW Snapshot: %s (%d followers)", rep.NewName, rep.NewCount)
	line("%s", wideRule)

	line("SUMMARY OF CHANGES")
	line("------------------")
	line("Total Lost Followers (Unfollowed): %d", len(rep.Lost))
	line("Total New Followers:             %d", len(rep.Gained))
	line("Net Change in Follower Count:    %+d (Total: %d)", rep.Net, rep.NewCount)
	line("%s", wideRule)

	line("")
	line("LIST OF LOST FOLLOWERS (In OLD, Not in NEW):")
	line("%s", narrowRule)
	writeNames(bw, rep.Lost, noneLost)

	line("")
	line("")
	line("LIST OF NEW FOLLOWERS (In NEW, Not in OLD):")
	line("%s", narrowRule)
	writeNames(bw, rep.Gained, noneGained)

	return bw.Flush()
}

func writeNames(w *bufio.Writer, names []string, placeholder string) {
	if len(names) == 0 {
		w.WriteString(placeholder + "\n")
		return
	}
	for _, name := range names {
		w.WriteString(name + "\n")
	}
}

// String renders the report into a string
func (r *Report) String() string {
	var sb strings.Builder
	_ = Render(&sb, r)
	return sb.String()
}

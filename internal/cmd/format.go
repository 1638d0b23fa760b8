package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zafrem/data-detector/detect"
)

// writeIndentedJSON renders v as two-space indented JSON, the shape every
// --json flag emits.
func writeIndentedJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderMatches prints one line per match in text order.
func renderMatches(w io.Writer, matches []detect.Match) {
	for _, m := range matches {
		fmt.Fprintf(w, "  [%d:%d] %-24s %-13s severity=%s", m.Start, m.End, m.RuleID, m.Category, m.Severity)
		if m.Raw != "" {
			fmt.Fprintf(w, " raw=%s", m.Raw)
		}
		fmt.Fprintln(w)
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/autobib/autobib/internal/codec"
)

// renderBibTeX renders a decoded entry as a .bib stanza under the
// given citation key. This is CLI-output formatting only; the codec
// package itself (spec.md §4.1) never produces text, only the binary
// wire format.
func renderBibTeX(key string, view *codec.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", view.EntryType(), key)
	fields := view.Fields()
	for i, f := range fields {
		sep := ","
		if i == len(fields)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %s = {%s}%s\n", f.Key, f.Value, sep)
	}
	b.WriteString("}\n")
	return b.String()
}

package statemachine

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRowID renders a record key the way it is shown to users:
// lowercase hex with a "0x" prefix, e.g. "0x0042" (spec.md §4.6).
func FormatRowID(key int64) string {
	return fmt.Sprintf("0x%04x", key)
}

// ParseRowID parses a user-supplied row id back into a key, accepting
// the "0x" prefix case-insensitively and tolerating its absence.
func ParseRowID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if s == "" {
		return 0, fmt.Errorf("statemachine: empty row id")
	}
	key, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("statemachine: invalid row id %q: %w", s, err)
	}
	return key, nil
}

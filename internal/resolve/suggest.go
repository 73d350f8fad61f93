package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/autobib/autobib/internal/provider"
)

// Suggest returns the registered provider names ranked by edit
// distance to the (unrecognized) provider name a user supplied,
// closest first. Used to build a "did you mean" diagnostic (spec.md
// §7) when a RemoteId names an unregistered provider.
func Suggest(want string) []string {
	names := provider.Names()
	sort.Slice(names, func(i, j int) bool {
		di, dj := levenshtein(want, names[i]), levenshtein(want, names[j])
		if di != dj {
			return di < dj
		}
		return names[i] < names[j]
	})
	return names
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// ConfirmRewrite prompts an attached TTY to accept a suggested
// provider in place of one the user typed, when the input didn't name
// a registered provider. Returns false without prompting when there
// are no candidates.
func ConfirmRewrite(input, badProvider string) (string, bool, error) {
	candidates := Suggest(badProvider)
	if len(candidates) == 0 {
		return "", false, nil
	}
	best := candidates[0]
	if levenshtein(badProvider, best) > 3 {
		return "", false, nil
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%q is not a known provider. Did you mean %q?", badProvider, best)).
				Description(strings.TrimSpace(fmt.Sprintf("Original input: %s", input))).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return "", false, nil
		}
		return "", false, err
	}
	if !confirmed {
		return "", false, nil
	}
	return best, true, nil
}

// Package plan holds the in-memory model of the goal-plan editor: the live
// goal groups, their long-term-goal selectors and short-term entries, and the
// transition rules that keep them consistent. The package does no I/O and no
// rendering; UIs project this model and route user events back into it.
package plan

import (
	"strings"

	"goalplan/internal/model"
)

// CategorySource resolves the currently active category from up to three
// inputs, in precedence order: a hidden stored value, the visible selector's
// current value, then the server-provided initial value. Unset or
// unrecognized values fall through; the final fallback is orientation.
//
// Resolution is a pure read. Consumers must re-resolve on demand rather than
// cache the result so category changes are observed immediately.
type CategorySource struct {
	Hidden  string
	Control string
	Initial string
}

func (s CategorySource) Resolve() model.Category {
	for _, v := range []string{s.Hidden, s.Control, s.Initial} {
		if strings.TrimSpace(v) != "" {
			return model.NormalizeCategory(v)
		}
	}
	return model.CategoryOrientation
}

// Set updates every present slot to the same value, keeping the hidden store
// and the visible control mutually consistent.
func (s *CategorySource) Set(c model.Category) {
	s.Hidden = string(c)
	s.Control = string(c)
}

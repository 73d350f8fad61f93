package aliastransform

import "regexp/syntax"

// CaptureErrorKind classifies why a rule's regex fails the
// "exactly one capture group per alternative" invariant.
type CaptureErrorKind int

const (
	// ErrNested: a capturing group contains another capturing group.
	ErrNested CaptureErrorKind = iota
	// ErrTooMany: a concatenation contains more than one capture group.
	ErrTooMany
	// ErrMissing: an alternation has a branch without a capture group
	// while a sibling branch has one.
	ErrMissing
	// ErrNoCaptureGroup: the regex has no capture group at all.
	ErrNoCaptureGroup
)

func (k CaptureErrorKind) String() string {
	switch k {
	case ErrNested:
		return "contains nested capture group"
	case ErrTooMany:
		return "contains more than one capture group"
	case ErrMissing:
		return "has variant without capture group"
	case ErrNoCaptureGroup:
		return "does not contain any capture groups"
	default:
		return "unknown capture error"
	}
}

// CaptureError reports an alias-transform regex that does not satisfy
// the one-capture-group invariant (spec.md §4.4, §8 property 8).
type CaptureError struct {
	Kind    CaptureErrorKind
	Pattern string
}

func (e *CaptureError) Error() string {
	return "regex " + e.Kind.String() + ": " + e.Pattern
}

type outcomeKind int

const (
	outcomeNoCapture outcomeKind = iota
	outcomeOneCapture
	outcomeInvalid
)

type outcome struct {
	kind outcomeKind
	kind2 CaptureErrorKind
}

func noCapture() outcome  { return outcome{kind: outcomeNoCapture} }
func oneCapture() outcome { return outcome{kind: outcomeOneCapture} }
func invalidOutcome(k CaptureErrorKind) outcome {
	return outcome{kind: outcomeInvalid, kind2: k}
}

// hasNoCaptureGroup mirrors has_no_capture_group from
// rust/src/config/validate.rs: it is a short-circuiting query, not a
// full evaluation, used only to decide whether a capturing group's
// body itself contains a nested capture.
func hasNoCaptureGroup(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpCapture:
		return false
	case syntax.OpAlternate, syntax.OpConcat:
		for _, sub := range re.Sub {
			if !hasNoCaptureGroup(sub) {
				return false
			}
		}
		return true
	default:
		// Quantifiers (star/plus/quest/repeat) and leaf nodes are not
		// descended into: a capture group under a repetition is not
		// recognized as "the" capture group by this analysis, matching
		// the original's behavior of not recursing through Repetition.
		return true
	}
}

// evalAST is the single-pass DFS ported from eval_ast in
// rust/src/config/validate.rs, operating on Go's regexp/syntax tree
// instead of regex_syntax::ast::Ast. Go's parser already collapses
// non-capturing groups into their enclosing Concat/Alternate, so there
// is no separate "transparent group" case to handle here.
func evalAST(re *syntax.Regexp) outcome {
	switch re.Op {
	case syntax.OpCapture:
		if hasNoCaptureGroup(re.Sub[0]) {
			return oneCapture()
		}
		return invalidOutcome(ErrNested)

	case syntax.OpAlternate:
		if len(re.Sub) == 0 {
			return noCapture()
		}
		first := evalAST(re.Sub[0])
		switch first.kind {
		case outcomeNoCapture:
			for _, sub := range re.Sub[1:] {
				o := evalAST(sub)
				switch o.kind {
				case outcomeNoCapture:
				case outcomeOneCapture:
					return invalidOutcome(ErrMissing)
				default:
					return o
				}
			}
			return noCapture()
		case outcomeOneCapture:
			for _, sub := range re.Sub[1:] {
				o := evalAST(sub)
				switch o.kind {
				case outcomeOneCapture:
				case outcomeNoCapture:
					return invalidOutcome(ErrMissing)
				default:
					return o
				}
			}
			return oneCapture()
		default:
			return first
		}

	case syntax.OpConcat:
		result := noCapture()
		for _, sub := range re.Sub {
			o := evalAST(sub)
			switch {
			case o.kind == outcomeNoCapture:
			case result.kind == outcomeNoCapture && o.kind == outcomeOneCapture:
				result = oneCapture()
			case result.kind == outcomeOneCapture && o.kind == outcomeOneCapture:
				return invalidOutcome(ErrTooMany)
			default:
				return o
			}
		}
		return result

	default:
		return noCapture()
	}
}

// validateCaptureGroup parses pattern and checks that it has exactly
// one capture group across every alternative (spec.md §4.4). It
// returns nil only when the parsed regex has exactly one such group.
func validateCaptureGroup(pattern string) error {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return err
	}
	switch o := evalAST(re); o.kind {
	case outcomeOneCapture:
		return nil
	case outcomeNoCapture:
		return &CaptureError{Kind: ErrNoCaptureGroup, Pattern: pattern}
	default:
		return &CaptureError{Kind: o.kind2, Pattern: pattern}
	}
}

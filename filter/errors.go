package filter

import (
	"errors"
	"fmt"
)

// Sentinel errors for the parse failure classes.
// These can be used with errors.Is() for error handling.
var (
	// ErrSyntax indicates the input does not fit the filter grammar.
	ErrSyntax = errors.New("filter: invalid syntax")

	// ErrInvalidValuePath indicates a bracketed value path was used
	// where the grammar disallows one, or with disallowed contents.
	ErrInvalidValuePath = errors.New("filter: invalid value path")

	// ErrInternal indicates a parser defect, not malformed input. It is
	// returned instead of silently producing a wrong tree.
	ErrInternal = errors.New("filter: internal parser error")
)

// SyntaxError reports a token that does not fit the grammar at the
// position it was found. Token is the raw input text of the offending
// token; it is "" when the input ended where more was expected, in which
// case Pos is -1.
type SyntaxError struct {
	Token string
	Pos   int
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected token %q at position %d", e.Token, e.Pos)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ValuePathError reports an illegal value path: nested inside another
// value path, applied to a sub-attribute path, or carrying contents
// that are not a comparison, negation, or logical expression.
type ValuePathError struct {
	Reason string
	Pos    int
}

func (e *ValuePathError) Error() string {
	if e.Pos < 0 {
		return "invalid value path: " + e.Reason
	}
	return fmt.Sprintf("invalid value path at position %d: %s", e.Pos, e.Reason)
}

func (e *ValuePathError) Unwrap() error { return ErrInvalidValuePath }

package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects which grammar a Parser accepts.
type Mode int

const (
	// ModeFilter accepts the boolean filter grammar of the "filter"
	// query parameter.
	ModeFilter Mode = iota

	// ModePath accepts PATCH path expressions, which may additionally
	// end in a ".subAttr" suffix after a value path.
	ModePath
)

// Parser parses SCIM filter or path expressions. The zero value is not
// usable; construct with New. A Parser is immutable after construction
// and safe for concurrent use.
type Parser struct {
	mode     Mode
	patterns []pattern
}

// New creates a parser for the given mode.
func New(mode Mode) *Parser {
	patterns := filterPatterns
	if mode == ModePath {
		patterns = pathPatterns
	}
	return &Parser{mode: mode, patterns: patterns}
}

// Parse parses input into its syntax tree. It returns (nil, nil) when
// the input contains no tokens at all (empty or whitespace-only): an
// empty filter is a deliberate signal, not an error, and empty
// parenthesized groups propagate the same way.
func (p *Parser) Parse(input string) (Node, error) {
	s := tokenize(input, p.patterns)
	if s.empty() {
		return nil, nil
	}

	node, err := p.parseInner(s, false)
	if err != nil {
		return nil, err
	}

	if s.isNext(tokenSubAttr) {
		node, err = appendSubAttr(s, node)
		if err != nil {
			return nil, err
		}
	}

	// The expression must account for every token.
	if !s.exhausted() {
		return nil, &SyntaxError{Token: s.nextValue(), Pos: s.nextPos()}
	}
	return node, nil
}

// parseInner parses one expression from the stream: a primary term
// (group, negation, or attribute expression), then any connective chain
// hanging off it. A nil term (empty group) propagates as nil without
// looking at connectives. inValuePath is true while parsing bracket
// contents and tightens which constructs are legal.
func (p *Parser) parseInner(s *stream, inValuePath bool) (Node, error) {
	node, err := p.parseTerm(s, inValuePath)
	if err != nil || node == nil {
		return nil, err
	}
	if s.isNext(tokenLogicalOp) {
		return p.parseConnective(s, node, inValuePath)
	}
	return node, nil
}

// parseTerm parses a single primary term: a parenthesized group, a
// negation, or an attribute expression. It returns (nil, nil) when the
// term was an empty group or negation.
func (p *Parser) parseTerm(s *stream, inValuePath bool) (Node, error) {
	switch {
	case s.isNext(tokenParenOpen):
		return p.parseGroup(s)

	case s.isNext(tokenNot):
		return p.parseNegation(s, inValuePath)

	case s.isNext(tokenName):
		return p.parseAttributeExpr(s, inValuePath)

	default:
		if inValuePath {
			return nil, &ValuePathError{Reason: "expected a comparison, negation, or logical expression", Pos: s.nextPos()}
		}
		return nil, &SyntaxError{Token: s.nextValue(), Pos: s.nextPos()}
	}
}

// parseGroup parses a parenthesized sub-filter. The group contents are
// extracted as raw text and parsed from scratch as an independent
// top-level input; "()" yields nil. joinUntil stops at the first close
// paren, so the group never spans a close token.
func (p *Parser) parseGroup(s *stream) (Node, error) {
	if _, err := s.matchNext(tokenParenOpen); err != nil {
		return nil, err
	}
	inner := s.joinUntil(tokenParenClose)
	if _, err := s.matchNext(tokenParenClose); err != nil {
		return nil, err
	}
	if inner == "" {
		return nil, nil
	}
	return p.Parse(inner)
}

// parseNegation parses "not (...)". The operand must be parenthesized.
// Its contents are re-tokenized and parsed with parseInner, forwarding
// inValuePath so value-path restrictions keep applying inside the
// negation; "not()" yields nil.
func (p *Parser) parseNegation(s *stream, inValuePath bool) (Node, error) {
	if _, err := s.matchNext(tokenNot); err != nil {
		return nil, err
	}
	if _, err := s.matchNext(tokenParenOpen); err != nil {
		return nil, err
	}
	inner := s.joinUntil(tokenParenClose)
	if _, err := s.matchNext(tokenParenClose); err != nil {
		return nil, err
	}
	if inner == "" {
		return nil, nil
	}

	operand, err := p.parseInner(tokenize(inner, p.patterns), inValuePath)
	if err != nil {
		return nil, err
	}
	if operand == nil {
		return nil, nil
	}
	return &Negation{Inner: operand}, nil
}

// parseAttributeExpr parses the constructs that start with an attribute
// path: a value path (path followed by brackets), a comparison (path
// followed by an operator), or the bare path itself.
func (p *Parser) parseAttributeExpr(s *stream, inValuePath bool) (Node, error) {
	tok, err := s.matchNext(tokenName)
	if err != nil {
		return nil, err
	}
	path := parseAttributePath(tok.text)

	if s.isNext(tokenBracketOpen) {
		if inValuePath {
			return nil, &ValuePathError{Reason: "value paths cannot be nested", Pos: tok.pos}
		}
		if len(path.Names) > 1 {
			return nil, &ValuePathError{Reason: fmt.Sprintf("value path on sub-attribute %q", tok.text), Pos: tok.pos}
		}
		return p.parseValuePath(s, path)
	}
	if s.isNext(tokenCompareOp) {
		return p.parseComparison(s, path)
	}
	return &path, nil
}

// parseConnective parses the connective chain hanging off left. The two
// keywords get asymmetric treatment, which is what gives "and" its
// tighter binding without a precedence table:
//
//   - "and" takes exactly one term as its right operand, then continues
//     the chain with the accumulated conjunction as the new left, so an
//     and-run is complete before any "or" is consumed;
//   - "or" takes everything to its right in one recursive parse, so the
//     rest of the chain (including further and-runs) collapses first.
//
// Same-type operands are absorbed rather than nested, producing one
// flat n-ary node per run: "a and b and c" is a single Conjunction with
// three children.
func (p *Parser) parseConnective(s *stream, left Node, inValuePath bool) (Node, error) {
	tok, err := s.matchNext(tokenLogicalOp)
	if err != nil {
		return nil, err
	}
	isAnd := strings.EqualFold(strings.TrimSpace(tok.text), "and")

	if isAnd {
		right, err := p.parseTerm(s, inValuePath)
		if err != nil {
			return nil, err
		}
		if right == nil {
			// "a and ()" has no right operand.
			return nil, &SyntaxError{Token: s.nextValue(), Pos: s.nextPos()}
		}
		node := &Conjunction{Children: absorb(left, right, conjunctionChildren)}
		if s.isNext(tokenLogicalOp) {
			return p.parseConnective(s, node, inValuePath)
		}
		return node, nil
	}

	right, err := p.parseInner(s, inValuePath)
	if err != nil {
		return nil, err
	}
	if right == nil {
		return nil, &SyntaxError{Token: s.nextValue(), Pos: s.nextPos()}
	}
	return &Disjunction{Children: absorb(left, right, disjunctionChildren)}, nil
}

// absorb builds the child list for a connective node, splicing in the
// children of any operand that is itself the same connective kind
// instead of nesting it.
func absorb(left, right Node, sameKind func(Node) []Node) []Node {
	var children []Node
	if sub := sameKind(left); sub != nil {
		children = append(children, sub...)
	} else {
		children = append(children, left)
	}
	if sub := sameKind(right); sub != nil {
		children = append(children, sub...)
	} else {
		children = append(children, right)
	}
	return children
}

func conjunctionChildren(n Node) []Node {
	if c, ok := n.(*Conjunction); ok {
		return c.Children
	}
	return nil
}

func disjunctionChildren(n Node) []Node {
	if d, ok := n.(*Disjunction); ok {
		return d.Children
	}
	return nil
}

// parseValuePath parses the brackets of "attr[...]" for an outer path
// already known to be a single segment. The bracket contents must form a
// predicate all the way down: a bare attribute path or a nested value
// path is rejected wherever it appears, including one smuggled in
// through a parenthesized group (group contents are re-parsed as a
// top-level filter, which would otherwise accept it). Before returning,
// every leaf comparison path inside the brackets is prefixed with the
// outer segment, so emails[type eq "work"] compares against emails.type.
func (p *Parser) parseValuePath(s *stream, path AttributePath) (Node, error) {
	bracket, err := s.matchNext(tokenBracketOpen)
	if err != nil {
		return nil, err
	}
	inner, err := p.parseInner(s, true)
	if err != nil {
		return nil, err
	}
	if err := validateValuePathContents(inner, bracket.pos); err != nil {
		return nil, err
	}
	if _, err := s.matchNext(tokenBracketClose); err != nil {
		return nil, err
	}
	if err := prefixPaths(inner, path); err != nil {
		return nil, err
	}
	return &ValuePath{Path: path, Inner: inner}, nil
}

// validateValuePathContents checks that a bracketed subtree consists
// only of comparisons, negations, and logical expressions.
func validateValuePathContents(n Node, pos int) error {
	switch v := n.(type) {
	case *Comparison:
		return nil
	case *Negation:
		return validateValuePathContents(v.Inner, pos)
	case *Conjunction:
		for _, child := range v.Children {
			if err := validateValuePathContents(child, pos); err != nil {
				return err
			}
		}
		return nil
	case *Disjunction:
		for _, child := range v.Children {
			if err := validateValuePathContents(child, pos); err != nil {
				return err
			}
		}
		return nil
	case *ValuePath:
		return &ValuePathError{Reason: "value paths cannot be nested", Pos: pos}
	default:
		return &ValuePathError{Reason: "value path contents must be a comparison, negation, or logical expression", Pos: pos}
	}
}

// parseComparison parses "path op" or "path op literal". The keyword is
// the operator token's text with its anchoring whitespace trimmed. Every
// operator except pr takes exactly one literal operand.
func (p *Parser) parseComparison(s *stream, path AttributePath) (Node, error) {
	opTok, err := s.matchNext(tokenCompareOp)
	if err != nil {
		return nil, err
	}
	op := Operator(strings.ToLower(strings.TrimSpace(opTok.text)))
	if op == OpPr {
		return &Comparison{Path: path, Op: op}, nil
	}

	valTok, err := s.matchNext(tokenString, tokenNumber, tokenBool, tokenNull)
	if err != nil {
		return nil, err
	}
	value, err := coerceLiteral(valTok)
	if err != nil {
		return nil, err
	}
	return &Comparison{Path: path, Op: op, Value: value}, nil
}

// parseAttributePath splits a NAME token's text into its URN qualifier
// and dotted segments. The split is at the last colon: URN schemas
// contain colons themselves, so everything before the final one is the
// schema.
func parseAttributePath(text string) AttributePath {
	schema, name := "", text
	if i := strings.LastIndexByte(text, ':'); i >= 0 {
		schema, name = text[:i], text[i+1:]
	}
	return AttributePath{Schema: schema, Names: strings.Split(name, ".")}
}

// coerceLiteral converts a literal token to its native value. Strings
// lose their surrounding quotes with no escape processing; numbers
// become int64 unless they carry a decimal point.
func coerceLiteral(tok token) (interface{}, error) {
	switch tok.kind {
	case tokenString:
		return tok.text[1 : len(tok.text)-1], nil
	case tokenNumber:
		if !strings.Contains(tok.text, ".") {
			if n, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
				return n, nil
			}
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, &SyntaxError{Token: tok.text, Pos: tok.pos}
		}
		return f, nil
	case tokenBool:
		return strings.EqualFold(tok.text, "true"), nil
	case tokenNull:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: literal token of kind %d", ErrInternal, tok.kind)
}

// prefixPaths rewrites every comparison leaf under n so its path starts
// with the value path's outer segment, taking the outer schema along.
// Each leaf gets a freshly built path; nothing is shared with outer or
// between leaves. The subtree was validated before this pass runs, so a
// node kind outside the four predicate kinds means the validation was
// bypassed; that is a parser defect and fails loudly.
func prefixPaths(n Node, outer AttributePath) error {
	switch v := n.(type) {
	case *Comparison:
		names := make([]string, 0, len(outer.Names)+len(v.Path.Names))
		names = append(names, outer.Names...)
		names = append(names, v.Path.Names...)
		v.Path = AttributePath{Schema: outer.Schema, Names: names}
		return nil
	case *Negation:
		return prefixPaths(v.Inner, outer)
	case *Conjunction:
		for _, child := range v.Children {
			if err := prefixPaths(child, outer); err != nil {
				return err
			}
		}
		return nil
	case *Disjunction:
		for _, child := range v.Children {
			if err := prefixPaths(child, outer); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: path rewrite reached %T", ErrInternal, n)
	}
}

// appendSubAttr consumes a trailing ".subAttr" token (ModePath only) and
// attaches the segment to the node it follows. It is legal after a value
// path (members[value eq "x"].displayName) or a bare attribute path.
func appendSubAttr(s *stream, node Node) (Node, error) {
	tok, err := s.matchNext(tokenSubAttr)
	if err != nil {
		return nil, err
	}
	segment := tok.text[1:]
	switch v := node.(type) {
	case *ValuePath:
		v.Path.Names = append(v.Path.Names, segment)
		return v, nil
	case *AttributePath:
		v.Names = append(v.Names, segment)
		return v, nil
	default:
		return nil, &SyntaxError{Token: tok.text, Pos: tok.pos}
	}
}

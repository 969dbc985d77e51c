package filter

// tokenKind identifies the grammatical class of a token.
type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenString
	tokenBool
	tokenNull
	tokenParenOpen
	tokenParenClose
	tokenBracketOpen
	tokenBracketClose
	tokenNot
	tokenLogicalOp
	tokenCompareOp
	tokenName
	tokenSubAttr
)

// token is a single lexed unit. text holds the raw matched input, so
// keyword tokens keep the surrounding whitespace their patterns require;
// joinUntil relies on that to reassemble a parse-equivalent substring.
type token struct {
	kind tokenKind
	text string
	pos  int
}

// stream is a read-once cursor over a lexed token sequence.
type stream struct {
	tokens []token
	pos    int
}

// empty reports whether the stream produced no tokens at all.
func (s *stream) empty() bool {
	return len(s.tokens) == 0
}

// exhausted reports whether every token has been consumed.
func (s *stream) exhausted() bool {
	return s.pos >= len(s.tokens)
}

// isNext reports whether the next unconsumed token has the given kind.
func (s *stream) isNext(kind tokenKind) bool {
	return s.pos < len(s.tokens) && s.tokens[s.pos].kind == kind
}

// matchNext consumes and returns the next token if its kind is among
// kinds. It fails when the stream is exhausted or the kind differs.
func (s *stream) matchNext(kinds ...tokenKind) (token, error) {
	if s.pos >= len(s.tokens) {
		return token{}, &SyntaxError{Pos: -1}
	}
	next := s.tokens[s.pos]
	for _, kind := range kinds {
		if next.kind == kind {
			s.pos++
			return next, nil
		}
	}
	return token{}, &SyntaxError{Token: next.text, Pos: next.pos}
}

// joinUntil consumes tokens up to, but not including, the first token of
// the given kind and returns their raw text concatenated. It returns ""
// when the next token already has that kind. Tokens of other bracketing
// kinds do not nest here: the first matching token always terminates the
// scan, which is exactly the behavior the parser's group extraction
// depends on.
func (s *stream) joinUntil(kind tokenKind) string {
	var b []byte
	for s.pos < len(s.tokens) && s.tokens[s.pos].kind != kind {
		b = append(b, s.tokens[s.pos].text...)
		s.pos++
	}
	return string(b)
}

// nextValue peeks the raw text of the next token without consuming it,
// for use in error messages. It returns "" on an exhausted stream.
func (s *stream) nextValue() string {
	if s.pos >= len(s.tokens) {
		return ""
	}
	return s.tokens[s.pos].text
}

// nextPos peeks the position of the next token, or -1 when exhausted.
func (s *stream) nextPos() int {
	if s.pos >= len(s.tokens) {
		return -1
	}
	return s.tokens[s.pos].pos
}

package filter

import "regexp"

// pattern pairs a token kind with the regular expression that recognizes
// it at the current scan position.
type pattern struct {
	kind tokenKind
	re   *regexp.Regexp
}

// compilePatterns builds the ordered pattern table for a mode. The first
// pattern that matches at a position wins, so order is load-bearing:
// literals come before NAME (which would otherwise swallow "true" or
// "3"), and the whitespace-anchored keyword patterns come before NAME so
// that an attribute literally called "band" or "organization" is never
// split around the "and"/"or" inside it.
func compilePatterns(mode Mode) []pattern {
	patterns := []pattern{
		{tokenNumber, regexp.MustCompile(`^\d+(?:\.\d+)?`)},
		{tokenString, regexp.MustCompile(`^"[^"]*"`)},
		{tokenBool, regexp.MustCompile(`^(?i:true|false)`)},
		{tokenNull, regexp.MustCompile(`^(?i:null)`)},
		{tokenParenOpen, regexp.MustCompile(`^\(`)},
		{tokenParenClose, regexp.MustCompile(`^\)`)},
		{tokenBracketOpen, regexp.MustCompile(`^\[`)},
		{tokenBracketClose, regexp.MustCompile(`^\]`)},
		// "not" is only a negation when whitespace or "(" follows; the
		// context character is matched but not consumed (capture-group
		// rule in tokenize). Plain "not" at end of input is a NAME.
		{tokenNot, regexp.MustCompile(`^(?i)(not)[\s(]`)},
		{tokenLogicalOp, regexp.MustCompile(`^\s+(?i:and|or)\s+`)},
		// "pr" is unary and needs no trailing anchor. The binary
		// keywords anchor on trailing whitespace or end of input, so a
		// truncated "age gt" still lexes the operator and fails in the
		// parser as a missing operand.
		{tokenCompareOp, regexp.MustCompile(`^\s+(?i:(?:eq|ne|co|sw|ew|gt|lt|ge|le)(?:\s+|$)|pr)`)},
		// Optional URN qualifier first: the qualifier class may itself
		// contain ":" and ".", so the greedy match extends to the last
		// colon and the parser splits there.
		{tokenName, regexp.MustCompile(`^(?i:(?:[-_a-z0-9.:]+:)?[-_a-z0-9]+(?:\.[-_a-z0-9]+)*)`)},
	}
	if mode == ModePath {
		// A trailing ".subAttr" after a value path, e.g. the
		// ".displayName" in members[value eq "x"].displayName. Anchored
		// to end of input so dotted paths still lex as one NAME.
		patterns = append(patterns, pattern{tokenSubAttr, regexp.MustCompile(`^(?i:\.[-_a-z0-9]+)$`)})
	}
	return patterns
}

var (
	filterPatterns = compilePatterns(ModeFilter)
	pathPatterns   = compilePatterns(ModePath)
)

// tokenize scans input against the pattern table and returns the token
// stream. It never fails: a position where no pattern matches (the
// whitespace between tokens, or a stray character) is skipped one byte
// at a time, and anything grammatically wrong surfaces as a parse error
// instead.
func tokenize(input string, patterns []pattern) *stream {
	var tokens []token
	pos := 0
	for pos < len(input) {
		matched := false
		for i := range patterns {
			m := patterns[i].re.FindStringSubmatchIndex(input[pos:])
			if m == nil {
				continue
			}
			// A pattern with a capture group matches trailing context
			// beyond the token itself; the token is the group, and the
			// cursor advances only past the group.
			end, text := m[1], input[pos:pos+m[1]]
			if len(m) > 2 && m[2] >= 0 {
				end, text = m[3], input[pos+m[2]:pos+m[3]]
			}
			tokens = append(tokens, token{kind: patterns[i].kind, text: text, pos: pos})
			pos += end
			matched = true
			break
		}
		if !matched {
			pos++
		}
	}
	return &stream{tokens: tokens}
}

package filter

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenKind
	}{
		{
			name:     "Simple comparison",
			input:    `userName eq "bjensen"`,
			expected: []tokenKind{tokenName, tokenCompareOp, tokenString},
		},
		{
			name:     "Numeric comparison",
			input:    "age gt 30",
			expected: []tokenKind{tokenName, tokenCompareOp, tokenNumber},
		},
		{
			name:     "Decimal literal",
			input:    "score ge 3.5",
			expected: []tokenKind{tokenName, tokenCompareOp, tokenNumber},
		},
		{
			name:     "Boolean literal",
			input:    "active eq true",
			expected: []tokenKind{tokenName, tokenCompareOp, tokenBool},
		},
		{
			name:     "Null literal",
			input:    "manager eq null",
			expected: []tokenKind{tokenName, tokenCompareOp, tokenNull},
		},
		{
			name:     "Presence operator",
			input:    "title pr",
			expected: []tokenKind{tokenName, tokenCompareOp},
		},
		{
			name:  "Logical and",
			input: `title pr and userType eq "Employee"`,
			expected: []tokenKind{
				tokenName, tokenCompareOp, tokenLogicalOp,
				tokenName, tokenCompareOp, tokenString,
			},
		},
		{
			name:  "Parenthesized group",
			input: `(title pr) or (userType eq "Intern")`,
			expected: []tokenKind{
				tokenParenOpen, tokenName, tokenCompareOp, tokenParenClose,
				tokenLogicalOp,
				tokenParenOpen, tokenName, tokenCompareOp, tokenString, tokenParenClose,
			},
		},
		{
			name:  "Negation with space",
			input: `not (userName eq "x")`,
			expected: []tokenKind{
				tokenNot, tokenParenOpen,
				tokenName, tokenCompareOp, tokenString,
				tokenParenClose,
			},
		},
		{
			name:     "Negation without space",
			input:    "not(title pr)",
			expected: []tokenKind{tokenNot, tokenParenOpen, tokenName, tokenCompareOp, tokenParenClose},
		},
		{
			name:     "Empty negation",
			input:    "not()",
			expected: []tokenKind{tokenNot, tokenParenOpen, tokenParenClose},
		},
		{
			name:     "Bare not is a name",
			input:    "not",
			expected: []tokenKind{tokenName},
		},
		{
			name:  "Value path",
			input: `emails[type eq "work"]`,
			expected: []tokenKind{
				tokenName, tokenBracketOpen,
				tokenName, tokenCompareOp, tokenString,
				tokenBracketClose,
			},
		},
		{
			name:     "Dotted path is one name",
			input:    "name.familyName co \"O'Malley\"",
			expected: []tokenKind{tokenName, tokenCompareOp, tokenString},
		},
		{
			name:     "URN qualified name",
			input:    `urn:ietf:params:scim:schemas:core:2.0:User:userName sw "J"`,
			expected: []tokenKind{tokenName, tokenCompareOp, tokenString},
		},
		{
			name:     "Name containing operator letters",
			input:    "band eq 1",
			expected: []tokenKind{tokenName, tokenCompareOp, tokenNumber},
		},
		{
			name:     "Name starting with pr",
			input:    "primary eq true",
			expected: []tokenKind{tokenName, tokenCompareOp, tokenBool},
		},
		{
			name:     "Mixed case keywords",
			input:    `userName Eq "x" AND title PR`,
			expected: []tokenKind{tokenName, tokenCompareOp, tokenString, tokenLogicalOp, tokenName, tokenCompareOp},
		},
		{
			name:     "String containing keywords",
			input:    `displayName eq "not and or pr"`,
			expected: []tokenKind{tokenName, tokenCompareOp, tokenString},
		},
		{
			name:     "Whitespace only",
			input:    "   ",
			expected: []tokenKind{},
		},
		{
			name:     "Keyword without surrounding space stays a name",
			input:    "xandy pr",
			expected: []tokenKind{tokenName, tokenCompareOp},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tokenize(tt.input, filterPatterns)

			if len(s.tokens) != len(tt.expected) {
				t.Errorf("Expected %d tokens, got %d", len(tt.expected), len(s.tokens))
				for i, tok := range s.tokens {
					t.Logf("Token %d: kind %d text %q", i, tok.kind, tok.text)
				}
				return
			}

			for i, expected := range tt.expected {
				if s.tokens[i].kind != expected {
					t.Errorf("Token %d: expected kind %d, got %d (text: %q)",
						i, expected, s.tokens[i].kind, s.tokens[i].text)
				}
			}
		})
	}
}

func TestTokenizeKeywordsKeepWhitespace(t *testing.T) {
	// joinUntil rebuilds group contents from raw token text, so the
	// whitespace that anchored a keyword must survive in it.
	s := tokenize(`a eq 1 and b pr`, filterPatterns)

	expected := []string{"a", " eq ", "1", " and ", "b", " pr"}
	if len(s.tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(s.tokens))
	}
	for i, text := range expected {
		if s.tokens[i].text != text {
			t.Errorf("Token %d: expected text %q, got %q", i, text, s.tokens[i].text)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	s := tokenize(`emails[type eq "work"]`, filterPatterns)

	expected := []int{0, 6, 7, 11, 15, 21}
	if len(s.tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d", len(expected), len(s.tokens))
	}
	for i, pos := range expected {
		if s.tokens[i].pos != pos {
			t.Errorf("Token %d: expected position %d, got %d", i, pos, s.tokens[i].pos)
		}
	}
}

func TestTokenizePathMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenKind
	}{
		{
			name:     "Bare attribute",
			input:    "userName",
			expected: []tokenKind{tokenName},
		},
		{
			name:     "Dotted path stays one name",
			input:    "name.familyName",
			expected: []tokenKind{tokenName},
		},
		{
			name:  "Value path with sub-attribute",
			input: `addresses[type eq "work"].streetAddress`,
			expected: []tokenKind{
				tokenName, tokenBracketOpen,
				tokenName, tokenCompareOp, tokenString,
				tokenBracketClose, tokenSubAttr,
			},
		},
		{
			name:  "Sub-attribute only at end of input",
			input: `a[b pr].c eq 1`,
			expected: []tokenKind{
				tokenName, tokenBracketOpen, tokenName, tokenCompareOp, tokenBracketClose,
				tokenName, tokenCompareOp, tokenNumber,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tokenize(tt.input, pathPatterns)

			if len(s.tokens) != len(tt.expected) {
				t.Errorf("Expected %d tokens, got %d", len(tt.expected), len(s.tokens))
				for i, tok := range s.tokens {
					t.Logf("Token %d: kind %d text %q", i, tok.kind, tok.text)
				}
				return
			}

			for i, expected := range tt.expected {
				if s.tokens[i].kind != expected {
					t.Errorf("Token %d: expected kind %d, got %d (text: %q)",
						i, expected, s.tokens[i].kind, s.tokens[i].text)
				}
			}
		})
	}
}

func TestStreamJoinUntil(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		skip      int
		until     tokenKind
		expected  string
		remaining int
	}{
		{
			name:      "Group contents",
			input:     `(a eq 1 and b pr)`,
			skip:      1,
			until:     tokenParenClose,
			expected:  "a eq 1 and b pr",
			remaining: 1,
		},
		{
			name:      "Stops at first close",
			input:     `(a eq 1) and (b pr)`,
			skip:      1,
			until:     tokenParenClose,
			expected:  "a eq 1",
			remaining: 6,
		},
		{
			name:      "Empty when next already matches",
			input:     `()`,
			skip:      1,
			until:     tokenParenClose,
			expected:  "",
			remaining: 1,
		},
		{
			name:      "Consumes to end when kind never appears",
			input:     `(a eq 1`,
			skip:      1,
			until:     tokenParenClose,
			expected:  "a eq 1",
			remaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tokenize(tt.input, filterPatterns)
			for i := 0; i < tt.skip; i++ {
				if _, err := s.matchNext(s.tokens[s.pos].kind); err != nil {
					t.Fatalf("Failed to skip token %d: %v", i, err)
				}
			}

			got := s.joinUntil(tt.until)
			if got != tt.expected {
				t.Errorf("Expected joined text %q, got %q", tt.expected, got)
			}
			if left := len(s.tokens) - s.pos; left != tt.remaining {
				t.Errorf("Expected %d remaining tokens, got %d", tt.remaining, left)
			}
		})
	}
}

func TestStreamMatchNext(t *testing.T) {
	s := tokenize(`userName eq "x"`, filterPatterns)

	tok, err := s.matchNext(tokenName)
	if err != nil {
		t.Fatalf("matchNext(tokenName) failed: %v", err)
	}
	if tok.text != "userName" {
		t.Errorf("Expected text %q, got %q", "userName", tok.text)
	}

	if _, err := s.matchNext(tokenNumber, tokenString); err == nil {
		t.Error("Expected error for wrong kind, got nil")
	}

	if _, err := s.matchNext(tokenCompareOp); err != nil {
		t.Errorf("Stream should not have advanced past the failed match: %v", err)
	}
	if _, err := s.matchNext(tokenString); err != nil {
		t.Errorf("matchNext(tokenString) failed: %v", err)
	}

	if _, err := s.matchNext(tokenName); err == nil {
		t.Error("Expected error on exhausted stream, got nil")
	}
}

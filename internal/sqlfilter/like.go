package sqlfilter

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-scim/filter"
)

const likeEscapeClause = "ESCAPE '\\'"

// escapeLikePattern escapes LIKE wildcards in a literal operand so that
// co/sw/ew match the operand's characters rather than treating % and _
// as patterns.
func escapeLikePattern(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"%", "\\%",
		"_", "\\_",
	)
	return replacer.Replace(value)
}

// like builds the LIKE comparison backing co, sw and ew. Non-caseExact
// attributes use ILIKE on postgres and LOWER() elsewhere.
func (t *translator) like(column string, c *filter.Comparison, prefixWildcard, suffixWildcard, foldCase bool) (string, []interface{}, error) {
	s, ok := c.Value.(string)
	if !ok {
		return "", nil, fmt.Errorf("operator %s requires a string operand, got %T", c.Op, c.Value)
	}

	pattern := escapeLikePattern(s)
	if prefixWildcard {
		pattern = "%" + pattern
	}
	if suffixWildcard {
		pattern = pattern + "%"
	}

	if foldCase {
		if t.dialect == "postgres" {
			return fmt.Sprintf("%s ILIKE ? %s", column, likeEscapeClause), []interface{}{pattern}, nil
		}
		return fmt.Sprintf("LOWER(%s) LIKE ? %s", column, likeEscapeClause), []interface{}{strings.ToLower(pattern)}, nil
	}
	return fmt.Sprintf("%s LIKE ? %s", column, likeEscapeClause), []interface{}{pattern}, nil
}

// Package sqlfilter translates parsed SCIM filter trees into gorm WHERE
// conditions. Attribute paths are resolved against an attr.ResourceType,
// so column names, child tables and case sensitivity follow the resource
// metadata instead of the filter text.
package sqlfilter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nlstn/go-scim/filter"
	"github.com/nlstn/go-scim/internal/attr"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrUnsupportedNode reports a filter node with no SQL translation, such
// as a bare attribute path used where a predicate is required.
var ErrUnsupportedNode = errors.New("sqlfilter: unsupported filter node")

// Apply attaches the WHERE conditions for node to db and returns the
// extended query. The caller runs the query. A nil node leaves db
// unchanged, matching an absent filter parameter.
func Apply(db *gorm.DB, node filter.Node, rt *attr.ResourceType) (*gorm.DB, error) {
	if node == nil {
		return db, nil
	}

	tr := &translator{dialect: databaseDialect(db), resource: rt}
	cond, args, err := tr.condition(node)
	if err != nil {
		return nil, err
	}
	return db.Where(cond, args...), nil
}

// databaseDialect returns the active database dialect name (e.g. "sqlite",
// "postgres").
func databaseDialect(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	return db.Dialector.Name()
}

// quoteIdent quotes an identifier portably (double quotes work for sqlite
// and postgres). Embedded double quotes are doubled per the SQL standard.
func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// translator carries the fixed context of one Apply call. inValuePath is
// the multi-valued attribute whose child table the current condition is
// scoped to, or "" at the top level.
type translator struct {
	dialect     string
	resource    *attr.ResourceType
	inValuePath string
}

func (t *translator) condition(node filter.Node) (string, []interface{}, error) {
	switch n := node.(type) {
	case *filter.Comparison:
		return t.comparison(n)
	case *filter.Conjunction:
		return t.connective(n.Children, "AND")
	case *filter.Disjunction:
		return t.connective(n.Children, "OR")
	case *filter.Negation:
		inner, args, err := t.condition(n.Inner)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT (%s)", inner), args, nil
	case *filter.ValuePath:
		return t.valuePath(n)
	case *filter.AttributePath:
		return "", nil, fmt.Errorf("%w: bare attribute path %q is not a predicate", ErrUnsupportedNode, strings.Join(n.Names, "."))
	default:
		return "", nil, fmt.Errorf("%w: %T", ErrUnsupportedNode, node)
	}
}

func (t *translator) connective(children []filter.Node, op string) (string, []interface{}, error) {
	parts := make([]string, 0, len(children))
	var args []interface{}
	for _, child := range children {
		cond, childArgs, err := t.condition(child)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+cond+")")
		args = append(args, childArgs...)
	}
	return strings.Join(parts, " "+op+" "), args, nil
}

func (t *translator) comparison(c *filter.Comparison) (string, []interface{}, error) {
	a, err := t.resource.Resolve(c.Path)
	if err != nil {
		return "", nil, err
	}

	column := t.column(c.Path)
	stringy := a.Type == attr.TypeString || a.Type == attr.TypeReference
	foldCase := stringy && !a.CaseExact

	switch c.Op {
	case filter.OpPr:
		// Presence means non-null, and for strings also non-empty
		// (RFC 7644 section 3.4.2.2).
		if stringy {
			return fmt.Sprintf("%s IS NOT NULL AND %s <> ''", column, column), nil, nil
		}
		return fmt.Sprintf("%s IS NOT NULL", column), nil, nil

	case filter.OpEq:
		if c.Value == nil {
			return fmt.Sprintf("%s IS NULL", column), nil, nil
		}
		if s, ok := c.Value.(string); ok && foldCase {
			return fmt.Sprintf("LOWER(%s) = ?", column), []interface{}{strings.ToLower(s)}, nil
		}
		return fmt.Sprintf("%s = ?", column), []interface{}{operand(a, c.Value)}, nil

	case filter.OpNe:
		if c.Value == nil {
			return fmt.Sprintf("%s IS NOT NULL", column), nil, nil
		}
		if s, ok := c.Value.(string); ok && foldCase {
			return fmt.Sprintf("LOWER(%s) <> ?", column), []interface{}{strings.ToLower(s)}, nil
		}
		return fmt.Sprintf("%s <> ?", column), []interface{}{operand(a, c.Value)}, nil

	case filter.OpCo:
		return t.like(column, c, true, true, foldCase)
	case filter.OpSw:
		return t.like(column, c, false, true, foldCase)
	case filter.OpEw:
		return t.like(column, c, true, false, foldCase)

	case filter.OpGt:
		return t.relational(a, column, ">", c.Value)
	case filter.OpGe:
		return t.relational(a, column, ">=", c.Value)
	case filter.OpLt:
		return t.relational(a, column, "<", c.Value)
	case filter.OpLe:
		return t.relational(a, column, "<=", c.Value)

	default:
		return "", nil, fmt.Errorf("%w: operator %s", ErrUnsupportedNode, c.Op)
	}
}

func (t *translator) relational(a *attr.Attribute, column, op string, value interface{}) (string, []interface{}, error) {
	if value == nil {
		return "", nil, fmt.Errorf("operator %s requires a non-null operand", opName(op))
	}
	return fmt.Sprintf("%s %s ?", column, op), []interface{}{operand(a, value)}, nil
}

func opName(sqlOp string) string {
	switch sqlOp {
	case ">":
		return "gt"
	case ">=":
		return "ge"
	case "<":
		return "lt"
	case "<=":
		return "le"
	}
	return sqlOp
}

// operand converts a literal to its database binding. Numeric literals
// aimed at decimal attributes bind as exact decimals.
func operand(a *attr.Attribute, value interface{}) interface{} {
	if a.Type != attr.TypeDecimal {
		return value
	}
	switch v := value.(type) {
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return value
	}
}

// column renders the quoted column for an attribute path. Sub-attributes
// of single-valued complex attributes are flattened onto the parent table
// with an underscore prefix (name.familyName becomes name_family_name).
// Inside a value path the leading segment names the child table and is
// dropped, so emails.type becomes just the child column type.
func (t *translator) column(path filter.AttributePath) string {
	names := path.Names
	if t.inValuePath != "" && len(names) > 1 && strings.EqualFold(names[0], t.inValuePath) {
		names = names[1:]
	}

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = attr.ColumnName(name)
	}
	return quoteIdent(strings.Join(parts, "_"))
}

func (t *translator) valuePath(v *filter.ValuePath) (string, []interface{}, error) {
	if t.inValuePath != "" {
		return "", nil, fmt.Errorf("%w: value path nested in value path", ErrUnsupportedNode)
	}

	outer := filter.AttributePath{Schema: v.Path.Schema, Names: v.Path.Names[:1]}
	a, err := t.resource.Resolve(outer)
	if err != nil {
		return "", nil, err
	}
	if a.Type != attr.TypeComplex {
		return "", nil, fmt.Errorf("attribute %q is not complex", v.Path.Names[0])
	}

	// Single-valued complex attributes live on the parent table; the
	// bracketed predicate translates in place.
	if !a.MultiValued {
		return t.condition(v.Inner)
	}

	inner := &translator{dialect: t.dialect, resource: t.resource, inValuePath: a.Name}
	cond, args, err := inner.condition(v.Inner)
	if err != nil {
		return "", nil, err
	}

	childTable := quoteIdent(t.resource.ChildTable(a))
	parentTable := quoteIdent(t.resource.Table)
	foreignKey := quoteIdent(t.resource.ChildForeignKey())

	sql := fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.%s AND (%s))",
		childTable, childTable, foreignKey, parentTable, quoteIdent("id"), cond)
	return sql, args, nil
}

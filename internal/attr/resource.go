package attr

import (
	"fmt"
	"strings"

	"github.com/nlstn/go-scim/filter"
)

// Attribute describes one attribute of a SCIM resource schema.
type Attribute struct {
	// Name is the attribute name as it appears in filters, e.g. "userName".
	Name string

	// Type is the SCIM data type of the attribute's values.
	Type Type

	// MultiValued marks attributes holding a list of values. Multi-valued
	// complex attributes (emails, phoneNumbers) live in a child table.
	MultiValued bool

	// CaseExact controls string comparison. When false, which is the
	// RFC 7643 default, string operators compare case-insensitively.
	CaseExact bool

	// Sub lists the sub-attributes of a complex attribute.
	Sub []Attribute
}

// ResourceType describes a SCIM resource schema and the table its rows
// live in.
type ResourceType struct {
	Name       string
	Table      string
	Attributes []Attribute
}

// Resolve walks an attribute path to its attribute definition. Matching is
// case-insensitive per RFC 7643 section 2.1. A schema URI prefix on the
// path is accepted and ignored; the resource type defines its own
// namespace.
func (rt *ResourceType) Resolve(path filter.AttributePath) (*Attribute, error) {
	if len(path.Names) == 0 {
		return nil, fmt.Errorf("empty attribute path")
	}

	attrs := rt.Attributes
	var found *Attribute
	for i, name := range path.Names {
		found = nil
		for j := range attrs {
			if strings.EqualFold(attrs[j].Name, name) {
				found = &attrs[j]
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("unknown attribute %q for resource %s", strings.Join(path.Names[:i+1], "."), rt.Name)
		}
		if i < len(path.Names)-1 {
			if found.Type != TypeComplex {
				return nil, fmt.Errorf("attribute %q has no sub-attributes", strings.Join(path.Names[:i+1], "."))
			}
			attrs = found.Sub
		}
	}
	return found, nil
}

// ChildTable returns the table holding a multi-valued complex attribute,
// named <table>_<attr>, e.g. users_emails.
func (rt *ResourceType) ChildTable(a *Attribute) string {
	return rt.Table + "_" + ColumnName(a.Name)
}

// ChildForeignKey returns the child-table column referencing the parent
// row, named <singular>_id, e.g. user_id.
func (rt *ResourceType) ChildForeignKey() string {
	return singularize(rt.Table) + "_id"
}

// ColumnName converts a SCIM attribute name to its snake_case database
// column, keeping initialisms intact ("externalId" becomes "external_id",
// "profileUrl" becomes "profile_url").
func ColumnName(name string) string {
	var result strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			// For "ProductID" we want "product_id", not "product_i_d".
			prevRune := rune(name[i-1])
			if prevRune >= 'a' && prevRune <= 'z' {
				result.WriteRune('_')
			} else if i < len(name)-1 {
				// A following lowercase letter starts a new word,
				// e.g. "XMLParser" becomes "xml_parser".
				nextRune := rune(name[i+1])
				if nextRune >= 'a' && nextRune <= 'z' {
					result.WriteRune('_')
				}
			}
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// singularize undoes the usual English pluralization of table names.
func singularize(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses") || strings.HasSuffix(word, "xes") ||
		strings.HasSuffix(word, "zes") || strings.HasSuffix(word, "ches") ||
		strings.HasSuffix(word, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	default:
		return word
	}
}

package filter

// Operator is a SCIM comparison operator keyword.
type Operator string

const (
	OpEq Operator = "eq"
	OpNe Operator = "ne"
	OpCo Operator = "co"
	OpSw Operator = "sw"
	OpEw Operator = "ew"
	OpGt Operator = "gt"
	OpLt Operator = "lt"
	OpGe Operator = "ge"
	OpLe Operator = "le"
	OpPr Operator = "pr"
)

// Node represents a node in the abstract syntax tree.
type Node interface {
	node()
}

// AttributePath is a dotted, optionally URN-qualified attribute
// reference (e.g. name.givenName, or
// urn:ietf:params:scim:schemas:core:2.0:User:userName). Schema is ""
// when the path carries no qualifier. Names always holds at least one
// segment. A bare *AttributePath is itself a node: it is what a path
// expression like "name.familyName" parses to.
type AttributePath struct {
	Schema string
	Names  []string
}

func (p *AttributePath) node() {}

// Comparison applies an operator to an attribute. Value is the coerced
// literal operand: string, int64, float64, bool, or nil for a null
// literal. It is always nil for the unary OpPr.
type Comparison struct {
	Path  AttributePath
	Op    Operator
	Value interface{}
}

func (c *Comparison) node() {}

// Negation inverts its inner expression ("not (...)").
type Negation struct {
	Inner Node
}

func (n *Negation) node() {}

// Conjunction is an n-ary "and". Chains of the same connective are
// flattened during parsing, so Children never holds a nested
// *Conjunction produced by the same chain and its length is at least 2.
type Conjunction struct {
	Children []Node
}

func (c *Conjunction) node() {}

// Disjunction is an n-ary "or", flattened the same way as Conjunction.
type Disjunction struct {
	Children []Node
}

func (d *Disjunction) node() {}

// ValuePath is a bracketed sub-filter on a multi-valued attribute, e.g.
// emails[type eq "work"]. Inner is a Comparison, Negation, Conjunction
// or Disjunction whose leaf comparison paths have already been prefixed
// with the outer attribute segment (type becomes emails.type). Path
// gains a second segment only when a ModePath parse appends a trailing
// sub-attribute, as in members[value eq "x"].displayName.
type ValuePath struct {
	Path  AttributePath
	Inner Node
}

func (v *ValuePath) node() {}

// Clone returns a deep copy of the tree rooted at n. The copy shares no
// AttributePath backing storage with the original, so either tree can be
// mutated by its owner without affecting the other.
func Clone(n Node) Node {
	switch v := n.(type) {
	case nil:
		return nil
	case *AttributePath:
		p := clonePath(*v)
		return &p
	case *Comparison:
		return &Comparison{Path: clonePath(v.Path), Op: v.Op, Value: v.Value}
	case *Negation:
		return &Negation{Inner: Clone(v.Inner)}
	case *Conjunction:
		return &Conjunction{Children: cloneNodes(v.Children)}
	case *Disjunction:
		return &Disjunction{Children: cloneNodes(v.Children)}
	case *ValuePath:
		return &ValuePath{Path: clonePath(v.Path), Inner: Clone(v.Inner)}
	}
	return nil
}

func clonePath(p AttributePath) AttributePath {
	return AttributePath{Schema: p.Schema, Names: append([]string(nil), p.Names...)}
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = Clone(n)
	}
	return out
}

// Walk calls fn for n and every node beneath it in depth-first order.
// Returning false from fn skips the current node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Negation:
		Walk(v.Inner, fn)
	case *Conjunction:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case *Disjunction:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case *ValuePath:
		Walk(v.Inner, fn)
	}
}

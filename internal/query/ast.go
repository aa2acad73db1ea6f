package query

// Node is the interface implemented by all AST nodes.
type Node interface {
	node() // marker method
}

// Comparison operators.
const (
	OpEq       = "="
	OpNeq      = "!="
	OpContains = "CONTAINS"
	OpGt       = ">"
	OpGte      = ">="
	OpLt       = "<"
	OpLte      = "<="
)

// BinaryExpr is AND or OR of two expressions.
type BinaryExpr struct {
	Op    string // "AND" or "OR"
	Left  Node
	Right Node
}

func (BinaryExpr) node() {}

// MatchExpr compares one field against a value.
// An empty Key searches the free-text fields.
type MatchExpr struct {
	Key   string // Field path, dotted for nested objects.
	Value string
	Op    string
}

func (MatchExpr) node() {}

// NotExpr negates its inner expression.
type NotExpr struct {
	Expr Node
}

func (NotExpr) node() {}

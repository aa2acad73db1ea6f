package query

import (
	"strconv"
	"strings"
)

// Record is a log entry that can be matched. Lookup returns the textual
// form of the field at path, where nested objects are addressed with dots.
// This keeps the query package free of any JSON dependency.
type Record interface {
	Lookup(path string) (string, bool)
}

// FreeTextFields are searched by queries without a key.
var FreeTextFields = []string{"message", "level", "location", "exception"}

var aliases = map[string]string{
	"msg":        "message",
	"lvl":        "level",
	"ts":         "timestamp",
	"time":       "timestamp",
	"loc":        "location",
	"exc":        "exception",
	"req":        "aws_request_id",
	"request_id": "aws_request_id",
}

// Match evaluates the AST node against a record and returns true if it
// matches.
func Match(node Node, rec Record) bool {
	if node == nil {
		return true // No filter means match all
	}

	switch n := node.(type) {
	case BinaryExpr:
		return evalBinary(n, rec)
	case MatchExpr:
		return evalMatch(n, rec)
	case NotExpr:
		return !Match(n.Expr, rec)
	default:
		return false
	}
}

func evalBinary(expr BinaryExpr, rec Record) bool {
	switch expr.Op {
	case "AND":
		return Match(expr.Left, rec) && Match(expr.Right, rec)
	case "OR":
		return Match(expr.Left, rec) || Match(expr.Right, rec)
	default:
		return false
	}
}

func evalMatch(expr MatchExpr, rec Record) bool {
	if expr.Key == "" {
		return matchFullText(expr.Value, rec)
	}

	key := resolveKey(expr.Key)
	fieldValue, _ := rec.Lookup(key)
	isLevel := key == "level"

	switch expr.Op {
	case OpEq:
		return matchEqual(fieldValue, expr.Value, isLevel)
	case OpNeq:
		return !matchEqual(fieldValue, expr.Value, isLevel)
	case OpContains:
		return containsIgnoreCase(fieldValue, expr.Value)
	case OpGt, OpGte, OpLt, OpLte:
		cmp, ok := compare(fieldValue, expr.Value, isLevel)
		if !ok {
			return false
		}
		switch expr.Op {
		case OpGt:
			return cmp > 0
		case OpGte:
			return cmp >= 0
		case OpLt:
			return cmp < 0
		default:
			return cmp <= 0
		}
	default:
		return matchEqual(fieldValue, expr.Value, isLevel)
	}
}

func resolveKey(key string) string {
	lower := strings.ToLower(key)
	if canonical, ok := aliases[lower]; ok {
		return canonical
	}
	return key
}

// matchEqual performs case-insensitive equality. A '*' in the query value
// matches any run of characters.
func matchEqual(fieldValue, queryValue string, isLevel bool) bool {
	if isLevel {
		fieldValue, queryValue = canonicalLevel(fieldValue), canonicalLevel(queryValue)
	}
	if strings.Contains(queryValue, "*") {
		return wildcardMatch(strings.ToLower(queryValue), strings.ToLower(fieldValue))
	}
	return strings.EqualFold(fieldValue, queryValue)
}

// compare orders two values: by severity for levels, numerically when both
// sides are numbers, lexically otherwise. Timestamps in the record layout
// order correctly as strings.
func compare(fieldValue, queryValue string, isLevel bool) (int, bool) {
	if fieldValue == "" {
		return 0, false
	}
	if isLevel {
		a, okA := levelRank[canonicalLevel(fieldValue)]
		b, okB := levelRank[canonicalLevel(queryValue)]
		if !okA || !okB {
			return 0, false
		}
		return a - b, true
	}
	if a, err := strconv.ParseFloat(fieldValue, 64); err == nil {
		if b, err := strconv.ParseFloat(queryValue, 64); err == nil {
			switch {
			case a < b:
				return -1, true
			case a > b:
				return 1, true
			}
			return 0, true
		}
	}
	return strings.Compare(strings.ToLower(fieldValue), strings.ToLower(queryValue)), true
}

var levelRank = map[string]int{
	"DEBUG":    10,
	"INFO":     20,
	"WARNING":  30,
	"ERROR":    40,
	"CRITICAL": 50,
}

func canonicalLevel(name string) string {
	switch upper := strings.ToUpper(name); upper {
	case "WARN":
		return "WARNING"
	case "FATAL":
		return "CRITICAL"
	default:
		return upper
	}
}

// containsIgnoreCase checks if haystack contains needle (case-insensitive).
func containsIgnoreCase(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// matchFullText searches the free-text fields.
func matchFullText(q string, rec Record) bool {
	for _, f := range FreeTextFields {
		if v, ok := rec.Lookup(f); ok && containsIgnoreCase(v, q) {
			return true
		}
	}
	return false
}

// wildcardMatch reports whether s matches pattern, where '*' matches any
// sequence of characters.
func wildcardMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(s, part)
		if i < 0 {
			return false
		}
		s = s[i+len(part):]
	}
	return strings.HasSuffix(s, last)
}

package logfile

import (
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
	"gopkg.in/yaml.v3"
)

// Entry is one decoded log record. It is only valid until the iterator
// that produced it advances.
type Entry struct {
	Raw    []byte
	Line   int
	Source string
	value  *fastjson.Value
}

// Lookup returns the textual form of the field at path. Dots descend into
// nested objects; a top-level key that itself contains dots is tried
// first.
func (e *Entry) Lookup(path string) (string, bool) {
	v := e.value.Get(path)
	if v == nil && strings.Contains(path, ".") {
		v = e.value.Get(strings.Split(path, ".")...)
	}
	if v == nil {
		return "", false
	}
	return text(v), true
}

// String returns the field at key, or "" if it is missing or not a string.
func (e *Entry) String(key string) string {
	return string(e.value.GetStringBytes(key))
}

func text(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNull:
		return ""
	default:
		return v.String()
	}
}

// YAML converts the entry into a YAML mapping node, keeping key order.
func (e *Entry) YAML() *yaml.Node {
	return toYAML(e.value)
}

func toYAML(v *fastjson.Value) *yaml.Node {
	switch v.Type() {
	case fastjson.TypeObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		o, _ := v.Object()
		o.Visit(func(key []byte, child *fastjson.Value) {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(key)},
				toYAML(child),
			)
		})
		return n
	case fastjson.TypeArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, child := range v.GetArray() {
			n.Content = append(n.Content, toYAML(child))
		}
		return n
	case fastjson.TypeString:
		s := string(v.GetStringBytes())
		n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
		if strings.Contains(s, "\n") {
			n.Style = yaml.LiteralStyle
		}
		return n
	case fastjson.TypeNumber:
		raw := v.String()
		tag := "!!float"
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: raw}
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.String()}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

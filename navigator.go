package jsonget

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the kind of JSON value found at a location.
type Kind uint8

const (
	Invalid Kind = iota
	Null
	False
	True
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case False:
		return "false"
	case True:
		return "true"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// Cursor is a located value: the exact source text of the value and its
// kind. Raw shares memory with the navigated document.
type Cursor struct {
	Raw  string
	Kind Kind
}

// Navigator resolves a Path against JSON text.
//
// Navigate returns the value addressed by p and true, or false when the path
// does not resolve: a key is missing, an index is out of bounds, an accessor
// is applied to a value of the wrong kind, or the text is malformed along the
// way. An empty Path addresses the document root.
type Navigator interface {
	Navigate(json string, p Path) (Cursor, bool)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(json string, p Path) (Cursor, bool)

// Navigate implements the Navigator interface.
func (f NavigatorFunc) Navigate(json string, p Path) (Cursor, bool) {
	return f(json, p)
}

// Lazy returns the default Navigator. It walks the text once, front to back,
// skipping members and elements that are not on the path without decoding
// them, and never builds a tree. Only the bytes up to the end of the located
// value are examined.
func Lazy() Navigator {
	return lazyNavigator{}
}

// Navigate resolves p against json with the Lazy navigator.
func Navigate(json string, p Path) (Cursor, bool) {
	return lazyNavigator{}.Navigate(json, p)
}

type lazyNavigator struct{}

func (lazyNavigator) Navigate(json string, p Path) (Cursor, bool) {
	i := skipSpace(json, 0)
	for depth, a := range p.steps {
		if i >= len(json) {
			return Cursor{}, false
		}
		var ok bool
		if k, isKey := a.Key(); isKey {
			if json[i] != '{' {
				return Cursor{}, false
			}
			i, ok = findMember(json, i, k, depth+1)
		} else {
			idx, _ := a.Index()
			if json[i] != '[' {
				return Cursor{}, false
			}
			i, ok = findElement(json, i, idx, depth+1)
		}
		if !ok {
			return Cursor{}, false
		}
	}

	end, kind, ok := skipValue(json, i, p.Len())
	if !ok {
		return Cursor{}, false
	}
	return Cursor{Raw: json[i:end], Kind: kind}, true
}

// findMember scans the object opening at s[i] for the first member named key
// and returns the position of its value.
func findMember(s string, i int, key string, depth int) (int, bool) {
	if depth > maxDepth {
		return i, false
	}
	i = skipSpace(s, i+1)
	if i < len(s) && s[i] == '}' {
		return i, false
	}
	for {
		if i >= len(s) || s[i] != '"' {
			return i, false
		}
		start := i
		end, escaped, ok := scanString(s, i)
		if !ok {
			return end, false
		}
		var match bool
		if escaped {
			match = unquote(s[start:end]) == key
		} else {
			match = s[start+1:end-1] == key
		}
		if i, ok = skipColon(s, end); !ok {
			return i, false
		}
		if match {
			return i, true
		}
		if i, _, ok = skipValue(s, i, depth); !ok {
			return i, false
		}
		i = skipSpace(s, i)
		if i >= len(s) || s[i] != ',' {
			return i, false
		}
		i = skipSpace(s, i+1)
	}
}

// findElement scans the array opening at s[i] and returns the position of the
// element at idx.
func findElement(s string, i int, idx int64, depth int) (int, bool) {
	if idx < 0 || depth > maxDepth {
		return i, false
	}
	i = skipSpace(s, i+1)
	if i < len(s) && s[i] == ']' {
		return i, false
	}
	for n := int64(0); ; n++ {
		if n == idx {
			return i, true
		}
		var ok bool
		if i, _, ok = skipValue(s, i, depth); !ok {
			return i, false
		}
		i = skipSpace(s, i)
		if i >= len(s) || s[i] != ',' {
			return i, false
		}
		i = skipSpace(s, i+1)
	}
}

// unquote decodes a complete, already validated string token.
func unquote(raw string) string {
	return gjson.Parse(raw).Str
}

// GJSON returns a Navigator backed by github.com/tidwall/gjson. It follows
// the same accessor rules as Lazy on well-formed documents but is more
// forgiving of malformed text outside the located value. Empty keys never
// match.
func GJSON() Navigator {
	return gjsonNavigator{}
}

type gjsonNavigator struct{}

func (gjsonNavigator) Navigate(json string, p Path) (Cursor, bool) {
	cur := gjson.Parse(json)
	if !cur.Exists() {
		return Cursor{}, false
	}
	for _, a := range p.steps {
		if k, isKey := a.Key(); isKey {
			if !cur.IsObject() || k == "" {
				return Cursor{}, false
			}
			cur = cur.Get(gjson.Escape(k))
		} else {
			idx, _ := a.Index()
			if !cur.IsArray() || idx < 0 {
				return Cursor{}, false
			}
			cur = cur.Get(strconv.FormatInt(idx, 10))
		}
		if !cur.Exists() {
			return Cursor{}, false
		}
	}
	return Cursor{Raw: strings.TrimRight(cur.Raw, " \t\r\n"), Kind: gjsonKind(cur)}, true
}

func gjsonKind(r gjson.Result) Kind {
	switch r.Type {
	case gjson.Null:
		return Null
	case gjson.False:
		return False
	case gjson.True:
		return True
	case gjson.Number:
		return Number
	case gjson.String:
		return String
	case gjson.JSON:
		if r.IsArray() {
			return Array
		}
		return Object
	default:
		return Invalid
	}
}

package jsonget

import (
	"math"
	"strconv"
	"strings"
)

// Coercer decodes a located value as T. It returns false when the value's
// kind cannot be represented as T; the caller treats that exactly like a
// path that did not resolve.
type Coercer[T any] interface {
	Coerce(c Cursor) (T, bool)
}

// CoercerFunc is a function adapter for Coercer:
//
//	upper := jsonget.CoercerFunc[string](func(c jsonget.Cursor) (string, bool) {
//	    s, ok := jsonget.AsString().Coerce(c)
//	    return strings.ToUpper(s), ok
//	})
type CoercerFunc[T any] func(c Cursor) (T, bool)

// Coerce implements the Coercer interface.
func (f CoercerFunc[T]) Coerce(c Cursor) (T, bool) {
	return f(c)
}

// AsString accepts strings and returns their unescaped text.
func AsString() Coercer[string] {
	return CoercerFunc[string](func(c Cursor) (string, bool) {
		if c.Kind != String {
			return "", false
		}
		if strings.IndexByte(c.Raw, '\\') < 0 {
			return c.Raw[1 : len(c.Raw)-1], true
		}
		return unquote(c.Raw), true
	})
}

// AsInt accepts numbers written as integers that fit in an int64. A number
// with a fraction or an exponent is rejected, never truncated.
func AsInt() Coercer[int64] {
	return CoercerFunc[int64](func(c Cursor) (int64, bool) {
		if c.Kind != Number || strings.ContainsAny(c.Raw, ".eE") {
			return 0, false
		}
		n, err := strconv.ParseInt(c.Raw, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	})
}

// AsFloat accepts any number. Integers are widened; values beyond the float64
// range are rejected.
func AsFloat() Coercer[float64] {
	return CoercerFunc[float64](func(c Cursor) (float64, bool) {
		if c.Kind != Number {
			return 0, false
		}
		f, err := strconv.ParseFloat(c.Raw, 64)
		if err != nil || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	})
}

// AsBool accepts true and false.
func AsBool() Coercer[bool] {
	return CoercerFunc[bool](func(c Cursor) (bool, bool) {
		switch c.Kind {
		case True:
			return true, true
		case False:
			return false, true
		default:
			return false, false
		}
	})
}

// AsBoolText accepts true and false and returns them as text.
func AsBoolText() Coercer[string] {
	return CoercerFunc[string](func(c Cursor) (string, bool) {
		switch c.Kind {
		case True:
			return "true", true
		case False:
			return "false", true
		default:
			return "", false
		}
	})
}

// AsRaw accepts any value and returns its unparsed source text.
func AsRaw() Coercer[string] {
	return CoercerFunc[string](func(c Cursor) (string, bool) {
		return c.Raw, c.Kind != Invalid
	})
}

// Extract navigates json with the Lazy navigator and decodes the located
// value with c.
func Extract[T any](json string, p Path, c Coercer[T]) (T, bool) {
	cur, ok := Navigate(json, p)
	if !ok {
		var zero T
		return zero, false
	}
	return c.Coerce(cur)
}

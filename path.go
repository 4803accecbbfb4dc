package jsonget

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Accessor is one step of a Path: an object key lookup or an array index
// lookup. The zero value is the empty key.
type Accessor struct {
	key     string
	index   int64
	isIndex bool
}

// Key returns an accessor that descends into the object member named k.
func Key(k string) Accessor {
	return Accessor{key: k}
}

// Index returns an accessor that descends into the array element at the
// zero-based position i. Negative positions never match; use NewPath to
// reject them up front.
func Index(i int64) Accessor {
	return Accessor{index: i, isIndex: true}
}

// IsKey reports whether a is an object key accessor.
func (a Accessor) IsKey() bool { return !a.isIndex }

// Key returns the member name and true for key accessors.
func (a Accessor) Key() (string, bool) { return a.key, !a.isIndex }

// Index returns the element position and true for index accessors.
func (a Accessor) Index() (int64, bool) { return a.index, a.isIndex }

func (a Accessor) String() string {
	if a.isIndex {
		return strconv.FormatInt(a.index, 10)
	}
	return strconv.Quote(a.key)
}

// Path is an ordered, immutable sequence of accessors. The zero value is the
// empty path, which addresses the document root.
type Path struct {
	steps []Accessor
}

// NewPath builds a Path from accessor tokens. A string becomes a Key and any
// Go integer becomes an Index. An Accessor is used as given.
//
// NewPath fails with an error matching ErrInvalidPathArgument when segments is
// empty, when a token has another type, or when an integer is negative or
// exceeds the signed 64-bit range.
func NewPath(segments ...any) (Path, error) {
	if len(segments) == 0 {
		return Path{}, &PathArgError{Position: -1, Reason: "at least one accessor is required"}
	}
	steps := make([]Accessor, 0, len(segments))
	for i, seg := range segments {
		a, err := toAccessor(i, seg)
		if err != nil {
			return Path{}, err
		}
		steps = append(steps, a)
	}
	return Path{steps: steps}, nil
}

// MustPath is like NewPath but panics on error. Use it for literal paths.
func MustPath(segments ...any) Path {
	p, err := NewPath(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePathJSON builds a Path from a JSON array such as ["a", 1, "b"].
// Strings become keys and integral numbers become indexes.
func ParsePathJSON(text string) (Path, error) {
	if !gjson.Valid(text) {
		return Path{}, &PathArgError{Position: -1, Value: text, Reason: "path is not valid JSON"}
	}
	doc := gjson.Parse(text)
	if !doc.IsArray() {
		return Path{}, &PathArgError{Position: -1, Value: text, Reason: "path must be a JSON array"}
	}

	var (
		segments []any
		err      error
	)
	doc.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.String:
			segments = append(segments, v.Str)
		case gjson.Number:
			n, perr := strconv.ParseInt(v.Raw, 10, 64)
			if perr != nil {
				err = &PathArgError{Position: len(segments), Value: v.Raw, Reason: "index must be a non-negative integer"}
				return false
			}
			segments = append(segments, n)
		default:
			err = &PathArgError{Position: len(segments), Value: v.Raw, Reason: "accessor must be a string or an integer"}
			return false
		}
		return true
	})
	if err != nil {
		return Path{}, err
	}
	return NewPath(segments...)
}

// Len returns the number of accessors.
func (p Path) Len() int { return len(p.steps) }

// At returns the i-th accessor.
func (p Path) At(i int) Accessor { return p.steps[i] }

// String renders the path as a JSON array, e.g. ["a",1].
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, a := range p.steps {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	b.WriteByte(']')
	return b.String()
}

func toAccessor(pos int, seg any) (Accessor, error) {
	switch v := seg.(type) {
	case string:
		return Key(v), nil
	case Accessor:
		if v.isIndex && v.index < 0 {
			return Accessor{}, negativeIndex(pos, v.index)
		}
		return v, nil
	case int:
		return signedIndex(pos, int64(v))
	case int8:
		return signedIndex(pos, int64(v))
	case int16:
		return signedIndex(pos, int64(v))
	case int32:
		return signedIndex(pos, int64(v))
	case int64:
		return signedIndex(pos, v)
	case uint:
		return unsignedIndex(pos, uint64(v))
	case uint8:
		return unsignedIndex(pos, uint64(v))
	case uint16:
		return unsignedIndex(pos, uint64(v))
	case uint32:
		return unsignedIndex(pos, uint64(v))
	case uint64:
		return unsignedIndex(pos, v)
	case nil:
		return Accessor{}, &PathArgError{Position: pos, Reason: "accessor is null"}
	default:
		return Accessor{}, &PathArgError{Position: pos, Value: seg, Reason: "accessor must be a string or a non-negative integer"}
	}
}

func signedIndex(pos int, v int64) (Accessor, error) {
	if v < 0 {
		return Accessor{}, negativeIndex(pos, v)
	}
	return Index(v), nil
}

func unsignedIndex(pos int, v uint64) (Accessor, error) {
	if v > math.MaxInt64 {
		return Accessor{}, &PathArgError{Position: pos, Value: v, Reason: "index exceeds the signed 64-bit range"}
	}
	return Index(int64(v)), nil
}

func negativeIndex(pos int, v int64) error {
	return &PathArgError{Position: pos, Value: v, Reason: "negative indexes are not supported"}
}

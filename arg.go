package jsonget

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Arg is one function argument: a single value shared by every row, or a
// column with one value per row.
type Arg struct {
	scalar any
	column arrow.Array
}

// Scalar returns an argument whose value applies to every row. v is a
// string, a Go integer, or nil for NULL.
func Scalar(v any) Arg {
	return Arg{scalar: v}
}

// Column returns an argument with one value per row. The array is borrowed
// for the duration of the call and not released.
func Column(arr arrow.Array) Arg {
	return Arg{column: arr}
}

// IsScalar reports whether the argument is a scalar.
func (a Arg) IsScalar() bool { return a.column == nil }

// Value returns the scalar value, or nil for columns.
func (a Arg) Value() any { return a.scalar }

// Array returns the column, or nil for scalars.
func (a Arg) Array() arrow.Array { return a.column }

// DataType returns the Arrow type of the argument. Scalars report the type
// their value would have as a column; unsupported scalar values report nil.
func (a Arg) DataType() arrow.DataType {
	if a.column != nil {
		return a.column.DataType()
	}
	switch v := a.scalar.(type) {
	case nil:
		return arrow.Null
	case string:
		return arrow.BinaryTypes.String
	case int, int8, int16, int32, int64:
		return arrow.PrimitiveTypes.Int64
	case uint, uint8, uint16, uint32, uint64:
		return arrow.PrimitiveTypes.Uint64
	case Accessor:
		if v.IsKey() {
			return arrow.BinaryTypes.String
		}
		return arrow.PrimitiveTypes.Int64
	default:
		return nil
	}
}

// Args returns the accessors of p as scalar arguments.
func (p Path) Args() []Arg {
	args := make([]Arg, len(p.steps))
	for i, a := range p.steps {
		args[i] = Scalar(a)
	}
	return args
}

func isTextType(dt arrow.DataType) bool {
	if dt == nil {
		return false
	}
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW, arrow.NULL:
		return true
	default:
		return false
	}
}

func isAccessorType(dt arrow.DataType) bool {
	if dt == nil {
		return false
	}
	if isTextType(dt) {
		return true
	}
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return true
	default:
		return false
	}
}

// textAt reads the JSON text of row i; false means NULL.
type textAt func(i int) (string, bool)

// textColumn is implemented by the Arrow string array flavours.
type textColumn interface {
	arrow.Array
	Value(i int) string
}

func jsonReader(a Arg) (textAt, error) {
	if a.IsScalar() {
		switch v := a.scalar.(type) {
		case nil:
			return func(int) (string, bool) { return "", false }, nil
		case string:
			return func(int) (string, bool) { return v, true }, nil
		default:
			return nil, argTypeError("JSON argument must be text, got %T", a.scalar)
		}
	}
	if a.column.DataType().ID() == arrow.NULL {
		return func(int) (string, bool) { return "", false }, nil
	}
	col, ok := a.column.(textColumn)
	if !ok || !isTextType(a.column.DataType()) {
		return nil, argTypeError("JSON argument must be a string column, got %s", a.column.DataType())
	}
	return func(i int) (string, bool) {
		if col.IsNull(i) {
			return "", false
		}
		return col.Value(i), true
	}, nil
}

// segmentState is the per-row result of reading one path argument. Higher
// states take precedence when a row combines several.
type segmentState uint8

const (
	segmentOK segmentState = iota
	segmentInvalid
	segmentNull
)

// segmentAt reads the accessor for row i of one path argument.
type segmentAt func(i int) (Accessor, segmentState)

func segmentReader(pos int, a Arg) (segmentAt, error) {
	if a.IsScalar() {
		if a.scalar == nil {
			return func(int) (Accessor, segmentState) { return Accessor{}, segmentNull }, nil
		}
		acc, err := toAccessor(pos, a.scalar)
		if err != nil {
			return nil, err
		}
		return func(int) (Accessor, segmentState) { return acc, segmentOK }, nil
	}

	switch col := a.column.(type) {
	case *array.Null:
		return func(int) (Accessor, segmentState) { return Accessor{}, segmentNull }, nil
	case textColumn:
		if !isTextType(col.DataType()) {
			break
		}
		return func(i int) (Accessor, segmentState) {
			if col.IsNull(i) {
				return Accessor{}, segmentNull
			}
			return Key(col.Value(i)), segmentOK
		}, nil
	case *array.Int8:
		return signedReader(col, func(i int) int64 { return int64(col.Value(i)) }), nil
	case *array.Int16:
		return signedReader(col, func(i int) int64 { return int64(col.Value(i)) }), nil
	case *array.Int32:
		return signedReader(col, func(i int) int64 { return int64(col.Value(i)) }), nil
	case *array.Int64:
		return signedReader(col, col.Value), nil
	case *array.Uint8:
		return unsignedReader(col, func(i int) uint64 { return uint64(col.Value(i)) }), nil
	case *array.Uint16:
		return unsignedReader(col, func(i int) uint64 { return uint64(col.Value(i)) }), nil
	case *array.Uint32:
		return unsignedReader(col, func(i int) uint64 { return uint64(col.Value(i)) }), nil
	case *array.Uint64:
		return unsignedReader(col, col.Value), nil
	}
	return nil, argTypeError("path argument %d must be a string or integer column, got %s", pos, a.column.DataType())
}

func signedReader(col arrow.Array, value func(int) int64) segmentAt {
	return func(i int) (Accessor, segmentState) {
		if col.IsNull(i) {
			return Accessor{}, segmentNull
		}
		v := value(i)
		if v < 0 {
			return Accessor{}, segmentInvalid
		}
		return Index(v), segmentOK
	}
}

func unsignedReader(col arrow.Array, value func(int) uint64) segmentAt {
	return func(i int) (Accessor, segmentState) {
		if col.IsNull(i) {
			return Accessor{}, segmentNull
		}
		v := value(i)
		if v > math.MaxInt64 {
			return Accessor{}, segmentInvalid
		}
		return Index(int64(v)), segmentOK
	}
}

// batchLen returns the number of rows described by args: the shared length
// of all columns, or 1 when every argument is a scalar.
func batchLen(args []Arg) (int, error) {
	n := -1
	for _, a := range args {
		if a.IsScalar() {
			continue
		}
		switch l := a.column.Len(); {
		case n < 0:
			n = l
		case l != n:
			return 0, fmt.Errorf("%w: columns have %d and %d rows", ErrColumnLength, n, l)
		}
	}
	if n < 0 {
		return 1, nil
	}
	return n, nil
}

package jsonget

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Stats counts the rows of one invocation by outcome.
type Stats struct {
	Rows       int
	NullInputs int
	Absent     int
}

// Nulls returns the number of null output rows.
func (s Stats) Nulls() int { return s.NullInputs + s.Absent }

// builder is the subset of the Arrow array builders a Function appends to.
type builder[T any] interface {
	Append(v T)
	AppendNull()
	Reserve(n int)
	NewArray() arrow.Array
	Release()
}

// Function is one extraction variant: it navigates every row's JSON text to
// the requested path and decodes the value with a fixed coercer into a column
// of a fixed type.
//
// Function is safe for concurrent use. Do not modify its fields after the
// first call to Invoke.
type Function struct {
	// Name is the primary function name, e.g. "json_get_str".
	Name string

	// Aliases are additional names a Registry resolves to this function.
	Aliases []string

	// Doc is a one-line description.
	Doc string

	// OutputType is the Arrow type of every column Invoke returns.
	OutputType arrow.DataType

	// Navigator overrides the navigator used to locate values. When nil, the
	// registry's navigator is used, falling back to Lazy.
	Navigator Navigator

	run func(mem memory.Allocator, nav Navigator, b *batch) (arrow.Array, Stats)
}

// NewFunction creates a Function that appends values decoded by c to
// builders created by newBuilder. Pass the Arrow constructor directly:
//
//	fn := jsonget.NewFunction[string]("json_get_upper", "Get an upper-cased string",
//	    arrow.BinaryTypes.String, array.NewStringBuilder, upper)
func NewFunction[T any, B builder[T]](name, doc string, dt arrow.DataType, newBuilder func(memory.Allocator) B, c Coercer[T]) *Function {
	f := &Function{Name: name, Doc: doc, OutputType: dt}
	f.run = func(mem memory.Allocator, nav Navigator, b *batch) (arrow.Array, Stats) {
		bld := newBuilder(mem)
		defer bld.Release()
		bld.Reserve(b.rows)

		st := Stats{Rows: b.rows}
		b.each(nav, func(cur Cursor, found, nullInput bool) {
			var (
				v       T
				coerced bool
			)
			if found {
				v, coerced = c.Coerce(cur)
			}
			switch Classify(nullInput, found, coerced) {
			case Found:
				bld.Append(v)
			case NullInput:
				st.NullInputs++
				bld.AppendNull()
			default:
				st.Absent++
				bld.AppendNull()
			}
		})
		return bld.NewArray(), st
	}
	return f
}

// ReturnType checks the argument types of a call and returns OutputType. The
// first argument must be text and every following argument text or integer;
// at least one path argument is required.
func (f *Function) ReturnType(args []arrow.DataType) (arrow.DataType, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%s: %w", f.Name,
			argCountError("expected a JSON argument and at least one path argument, got %d arguments", len(args)))
	}
	if !isTextType(args[0]) {
		return nil, fmt.Errorf("%s: %w", f.Name, argTypeError("JSON argument must be text, got %s", typeName(args[0])))
	}
	for i, dt := range args[1:] {
		if !isAccessorType(dt) {
			return nil, fmt.Errorf("%s: %w", f.Name, argTypeError("path argument %d must be text or integer, got %s", i, typeName(dt)))
		}
	}
	return f.OutputType, nil
}

// Invoke evaluates the function over a batch. json holds the documents and
// path one argument per accessor; each may be a scalar or a column, and all
// columns must have the same length. The result has one row per batch row
// (one row when every argument is a scalar) and is owned by the caller.
//
// A row is null when its JSON text or any of its path values is null, when
// its path values do not form a valid path, or when the path does not
// resolve to a value of the output type. Invoke only fails for calls that
// are wrong as a whole: no path arguments, unsupported argument types,
// mismatched column lengths, or a scalar accessor that is neither text nor a
// non-negative integer.
//
// mem may be nil to use memory.DefaultAllocator.
func (f *Function) Invoke(mem memory.Allocator, json Arg, path ...Arg) (arrow.Array, error) {
	arr, _, err := f.invoke(mem, nil, json, path)
	return arr, err
}

func (f *Function) invoke(mem memory.Allocator, nav Navigator, json Arg, path []Arg) (arrow.Array, Stats, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	if f.Navigator != nil {
		nav = f.Navigator
	}
	if nav == nil {
		nav = Lazy()
	}
	b, err := newBatch(json, path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%s: %w", f.Name, err)
	}
	arr, st := f.run(mem, nav, b)
	return arr, st, nil
}

// batch is the validated argument set of one call.
type batch struct {
	rows int
	text textAt

	// shared is the path of every row when all path arguments are scalars;
	// segs is set instead when at least one path argument is a column.
	shared Path
	segs   []segmentAt

	// null marks a scalar NULL path argument: every row is null.
	null bool
}

func newBatch(json Arg, path []Arg) (*batch, error) {
	if len(path) == 0 {
		return nil, argCountError("at least one path argument is required")
	}
	rows, err := batchLen(append([]Arg{json}, path...))
	if err != nil {
		return nil, err
	}
	text, err := jsonReader(json)
	if err != nil {
		return nil, err
	}

	b := &batch{rows: rows, text: text}
	segs := make([]segmentAt, len(path))
	perRow := false
	for i, a := range path {
		if segs[i], err = segmentReader(i, a); err != nil {
			return nil, err
		}
		perRow = perRow || !a.IsScalar()
	}
	if perRow {
		b.segs = segs
		return b, nil
	}

	steps := make([]Accessor, len(segs))
	for i, seg := range segs {
		acc, state := seg(0)
		if state == segmentNull {
			b.null = true
			return b, nil
		}
		steps[i] = acc
	}
	b.shared = Path{steps: steps}
	return b, nil
}

// each resolves every row in order and calls fn with the navigation result.
// Per-row paths reuse one accessor buffer; navigators must not retain it.
func (b *batch) each(nav Navigator, fn func(cur Cursor, found, nullInput bool)) {
	var steps []Accessor
	if b.segs != nil {
		steps = make([]Accessor, len(b.segs))
	}
	for i := 0; i < b.rows; i++ {
		text, ok := b.text(i)
		if !ok || b.null {
			fn(Cursor{}, false, true)
			continue
		}

		p := b.shared
		if b.segs != nil {
			row := segmentOK
			for k, seg := range b.segs {
				var state segmentState
				steps[k], state = seg(i)
				if state > row {
					row = state
				}
			}
			switch row {
			case segmentNull:
				fn(Cursor{}, false, true)
				continue
			case segmentInvalid:
				fn(Cursor{}, false, false)
				continue
			}
			p = Path{steps: steps}
		}

		cur, found := nav.Navigate(text, p)
		fn(cur, found, false)
	}
}

func typeName(dt arrow.DataType) string {
	if dt == nil {
		return "unsupported value"
	}
	return dt.String()
}

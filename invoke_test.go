package jsonget

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
)

type InvokeSuite struct {
	suite.Suite
	mem *memory.CheckedAllocator
}

func TestInvokeSuite(t *testing.T) {
	suite.Run(t, new(InvokeSuite))
}

func (s *InvokeSuite) SetupTest() {
	s.mem = memory.NewCheckedAllocator(memory.NewGoAllocator())
}

func (s *InvokeSuite) TearDownTest() {
	s.mem.AssertSize(s.T(), 0)
}

// texts builds a string column; nil entries are nulls.
func (s *InvokeSuite) texts(values ...*string) *array.String {
	b := array.NewStringBuilder(s.mem)
	defer b.Release()
	for _, v := range values {
		if v == nil {
			b.AppendNull()
			continue
		}
		b.Append(*v)
	}
	return b.NewStringArray()
}

func (s *InvokeSuite) ints(values []int64, valid []bool) *array.Int64 {
	b := array.NewInt64Builder(s.mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewInt64Array()
}

func ptr(s string) *string { return &s }

// values renders a column as Go values with nil for nulls.
func values(arr arrow.Array) []any {
	out := make([]any, arr.Len())
	for i := range out {
		if arr.IsNull(i) {
			continue
		}
		out[i] = arr.GetOneForMarshal(i)
	}
	return out
}

func (s *InvokeSuite) invoke(fn *Function, json Arg, path ...Arg) []any {
	out, err := fn.Invoke(s.mem, json, path...)
	s.Require().NoError(err)
	defer out.Release()
	s.Require().True(arrow.TypeEqual(fn.OutputType, out.DataType()))
	return values(out)
}

func (s *InvokeSuite) TestMixedRows() {
	docs := s.texts(
		ptr(`{"a": {"b": "x"}}`),
		ptr(`{"a": {"b": 1}}`),
		nil,
		ptr(`{"a": {}}`),
		ptr(`not json`),
		ptr(`{"a": {"b": "café"}}`),
	)
	defer docs.Release()

	got := s.invoke(GetStr(), Column(docs), Scalar("a"), Scalar("b"))
	want := []any{"x", nil, nil, nil, nil, "café"}
	s.Assert().Empty(cmp.Diff(want, got))
}

func (s *InvokeSuite) TestBuiltins() {
	doc := `{"s": "text", "i": 42, "f": 2.5, "t": true, "n": null, "o": {"k": [1, 2]}}`
	tests := map[string]struct {
		fn   *Function
		key  string
		want any
	}{
		"str":             {GetStr(), "s", "text"},
		"str of int":      {GetStr(), "i", nil},
		"int":             {GetInt(), "i", int64(42)},
		"int of float":    {GetInt(), "f", nil},
		"float":           {GetFloat(), "f", 2.5},
		"float of int":    {GetFloat(), "i", 42.0},
		"bool":            {GetBool(), "t", true},
		"bool of null":    {GetBool(), "n", nil},
		"bool str":        {GetBoolStr(), "t", "true"},
		"bool str of str": {GetBoolStr(), "s", nil},
		"json object":     {GetJSON(), "o", `{"k": [1, 2]}`},
		"json null":       {GetJSON(), "n", "null"},
		"json missing":    {GetJSON(), "x", nil},
	}

	for name, tt := range tests {
		s.Run(name, func() {
			got := s.invoke(tt.fn, Scalar(doc), Scalar(tt.key))
			s.Assert().Equal([]any{tt.want}, got)
		})
	}
}

func (s *InvokeSuite) TestPerRowPath() {
	docs := s.texts(
		ptr(`{"a": [10, 20, 30]}`),
		ptr(`{"b": [10, 20, 30]}`),
		ptr(`{"a": [10, 20, 30]}`),
		ptr(`{"a": [10, 20, 30]}`),
		ptr(`{"a": [10, 20, 30]}`),
	)
	defer docs.Release()
	keys := s.texts(ptr("a"), ptr("b"), nil, ptr("a"), ptr("a"))
	defer keys.Release()
	idx := s.ints([]int64{0, 2, 1, -1, 0}, []bool{true, true, true, true, false})
	defer idx.Release()

	got := s.invoke(GetInt(), Column(docs), Column(keys), Column(idx))
	want := []any{int64(10), int64(30), nil, nil, nil}
	s.Assert().Empty(cmp.Diff(want, got))
}

func (s *InvokeSuite) TestMixedScalarAndColumnPath() {
	docs := s.texts(ptr(`{"a": ["x", "y"]}`), ptr(`{"a": ["z"]}`))
	defer docs.Release()
	idx := s.ints([]int64{1, 1}, nil)
	defer idx.Release()

	got := s.invoke(GetStr(), Column(docs), Scalar("a"), Column(idx))
	s.Assert().Equal([]any{"y", nil}, got)
}

func (s *InvokeSuite) TestScalarNullPath() {
	docs := s.texts(ptr(`{"a": 1}`), ptr(`{"a": 2}`))
	defer docs.Release()

	got := s.invoke(GetInt(), Column(docs), Scalar(nil))
	s.Assert().Equal([]any{nil, nil}, got)
}

func (s *InvokeSuite) TestNullJSONColumn() {
	nulls := array.NewNull(3)
	defer nulls.Release()

	got := s.invoke(GetInt(), Column(nulls), Scalar("a"))
	s.Assert().Equal([]any{nil, nil, nil}, got)
}

func (s *InvokeSuite) TestAllScalarsYieldOneRow() {
	got := s.invoke(GetFloat(), Scalar(`[1, 2.5]`), Scalar(1))
	s.Assert().Equal([]any{2.5}, got)

	got = s.invoke(GetFloat(), Scalar(nil), Scalar(1))
	s.Assert().Equal([]any{nil}, got)
}

func (s *InvokeSuite) TestCallErrors() {
	docs := s.texts(ptr(`{}`), ptr(`{}`))
	defer docs.Release()
	short := s.texts(ptr("a"))
	defer short.Release()
	floats := array.NewFloat64Builder(s.mem)
	floats.AppendValues([]float64{1, 2}, nil)
	fcol := floats.NewFloat64Array()
	floats.Release()
	defer fcol.Release()

	tests := map[string]struct {
		json Arg
		path []Arg
		err  error
	}{
		"no path":         {Column(docs), nil, ErrArgumentCount},
		"negative scalar": {Column(docs), []Arg{Scalar("a"), Scalar(-1)}, ErrInvalidPathArgument},
		"float scalar":    {Column(docs), []Arg{Scalar(1.5)}, ErrInvalidPathArgument},
		"float column":    {Column(docs), []Arg{Column(fcol)}, ErrArgumentType},
		"json not text":   {Scalar(1), []Arg{Scalar("a")}, ErrArgumentType},
		"json float col":  {Column(fcol), []Arg{Scalar("a")}, ErrArgumentType},
		"length mismatch": {Column(docs), []Arg{Column(short)}, ErrColumnLength},
	}

	for name, tt := range tests {
		s.Run(name, func() {
			out, err := GetStr().Invoke(s.mem, tt.json, tt.path...)
			s.Require().ErrorIs(err, tt.err)
			s.Assert().Nil(out)
			s.Assert().Contains(err.Error(), NameGetStr)
		})
	}
}

func (s *InvokeSuite) TestFunctionNavigator() {
	fn := GetStr()
	calls := 0
	fn.Navigator = NavigatorFunc(func(json string, p Path) (Cursor, bool) {
		calls++
		return GJSON().Navigate(json, p)
	})

	docs := s.texts(ptr(`{"a": "x"}`), ptr(`{"a": "y"}`))
	defer docs.Release()

	got := s.invoke(fn, Column(docs), Scalar("a"))
	s.Assert().Equal([]any{"x", "y"}, got)
	s.Assert().Equal(2, calls)
}

func (s *InvokeSuite) TestStats() {
	docs := s.texts(ptr(`{"a": 1}`), nil, ptr(`{"a": "x"}`), ptr(`{}`))
	defer docs.Release()

	out, st, err := GetInt().invoke(s.mem, nil, Column(docs), []Arg{Scalar("a")})
	s.Require().NoError(err)
	defer out.Release()

	s.Assert().Equal(Stats{Rows: 4, NullInputs: 1, Absent: 2}, st)
	s.Assert().Equal(3, st.Nulls())
}

func TestReturnType(t *testing.T) {
	fn := GetInt()
	tests := map[string]struct {
		args []arrow.DataType
		err  error
	}{
		"string and key":   {[]arrow.DataType{arrow.BinaryTypes.String, arrow.BinaryTypes.String}, nil},
		"large and index":  {[]arrow.DataType{arrow.BinaryTypes.LargeString, arrow.PrimitiveTypes.Uint16}, nil},
		"null arguments":   {[]arrow.DataType{arrow.Null, arrow.Null}, nil},
		"no path":          {[]arrow.DataType{arrow.BinaryTypes.String}, ErrArgumentCount},
		"nothing":          {nil, ErrArgumentCount},
		"binary json":      {[]arrow.DataType{arrow.BinaryTypes.Binary, arrow.BinaryTypes.String}, ErrArgumentType},
		"float path":       {[]arrow.DataType{arrow.BinaryTypes.String, arrow.PrimitiveTypes.Float64}, ErrArgumentType},
		"unsupported type": {[]arrow.DataType{arrow.BinaryTypes.String, nil}, ErrArgumentType},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dt, err := fn.ReturnType(tt.args)
			if tt.err != nil {
				if err == nil || !errors.Is(err, tt.err) {
					t.Fatalf("ReturnType() error = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReturnType() unexpected error: %v", err)
			}
			if !arrow.TypeEqual(dt, arrow.PrimitiveTypes.Int64) {
				t.Errorf("ReturnType() = %s, want int64", dt)
			}
		})
	}
}

func TestScalarArgDataType(t *testing.T) {
	tests := map[string]struct {
		arg  Arg
		want arrow.DataType
	}{
		"nil":          {Scalar(nil), arrow.Null},
		"string":       {Scalar("a"), arrow.BinaryTypes.String},
		"int":          {Scalar(3), arrow.PrimitiveTypes.Int64},
		"uint":         {Scalar(uint8(3)), arrow.PrimitiveTypes.Uint64},
		"key accessor": {Scalar(Key("a")), arrow.BinaryTypes.String},
		"unsupported":  {Scalar(1.5), nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := tt.arg.DataType()
			if tt.want == nil {
				if got != nil {
					t.Errorf("DataType() = %s, want nil", got)
				}
				return
			}
			if !arrow.TypeEqual(tt.want, got) {
				t.Errorf("DataType() = %s, want %s", got, tt.want)
			}
		})
	}
}

package jsonget

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Names of the built-in functions.
const (
	NameGetStr     = "json_get_str"
	NameGetInt     = "json_get_int"
	NameGetFloat   = "json_get_float"
	NameGetBool    = "json_get_bool"
	NameGetBoolStr = "json_get_bool_str"
	NameGetJSON    = "json_get_json"
)

// GetStr returns json_get_str, which extracts strings into a Utf8 column.
func GetStr() *Function {
	return NewFunction(NameGetStr, `Get a string value from a JSON string by its "path"`,
		arrow.BinaryTypes.String, array.NewStringBuilder, AsString())
}

// GetInt returns json_get_int, which extracts integers into an Int64 column.
func GetInt() *Function {
	return NewFunction(NameGetInt, `Get an integer value from a JSON string by its "path"`,
		arrow.PrimitiveTypes.Int64, array.NewInt64Builder, AsInt())
}

// GetFloat returns json_get_float, which extracts numbers into a Float64
// column.
func GetFloat() *Function {
	return NewFunction(NameGetFloat, `Get a float value from a JSON string by its "path"`,
		arrow.PrimitiveTypes.Float64, array.NewFloat64Builder, AsFloat())
}

// GetBool returns json_get_bool, which extracts booleans into a Boolean
// column.
func GetBool() *Function {
	return NewFunction(NameGetBool, `Get a boolean value from a JSON string by its "path"`,
		arrow.FixedWidthTypes.Boolean, array.NewBooleanBuilder, AsBool())
}

// GetBoolStr returns json_get_bool_str, which extracts booleans as the text
// "true" or "false" into a Utf8 column.
func GetBoolStr() *Function {
	return NewFunction(NameGetBoolStr, `Get a boolean value as text from a JSON string by its "path"`,
		arrow.BinaryTypes.String, array.NewStringBuilder, AsBoolText())
}

// GetJSON returns json_get_json, which extracts the unparsed source text of
// any value into a Utf8 column.
func GetJSON() *Function {
	return NewFunction(NameGetJSON, `Get the raw JSON text of a value from a JSON string by its "path"`,
		arrow.BinaryTypes.String, array.NewStringBuilder, AsRaw())
}

// Functions returns new instances of every built-in function.
func Functions() []*Function {
	return []*Function{GetStr(), GetInt(), GetFloat(), GetBool(), GetBoolStr(), GetJSON()}
}

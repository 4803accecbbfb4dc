// Package jsonget extracts scalar values from JSON text by path, one row at
// a time across Arrow columns.
//
// A path is a list of accessors: object keys and array indexes. For every
// row, the JSON text is walked lazily up to the addressed value, and the
// value is decoded as the function's output type. Rows whose path does not
// resolve, or resolves to a value of another kind, become null instead of
// failing the batch.
//
// # Quick Start
//
// Extract one value from one document:
//
//	p := jsonget.MustPath("a", 1)
//	n, ok := jsonget.Extract(`{"a": [1, 2, 3]}`, p, jsonget.AsInt())
//	// n == 2, ok == true
//
// Extract a column from a batch:
//
//	r := jsonget.New()
//
//	docs := b.NewStringArray() // *array.String of JSON texts
//	out, err := r.Invoke(ctx, "json_get_int", jsonget.Column(docs),
//	    jsonget.Scalar("a"), jsonget.Scalar(1))
//	if err != nil {
//	    return err // the call itself was wrong, e.g. no path arguments
//	}
//	defer out.Release()
//	ints := out.(*array.Int64)
//
// # Functions
//
// Each function has a fixed output type, independent of what a row contains:
//
//   - json_get_str: strings, unescaped (Utf8)
//   - json_get_int: integers without fraction or exponent (Int64)
//   - json_get_float: any number (Float64)
//   - json_get_bool: true and false (Boolean)
//   - json_get_bool_str: true and false as "true"/"false" (Utf8)
//   - json_get_json: the source text of any value (Utf8)
//
// Custom functions pair an Arrow builder with a Coercer:
//
//	upper := jsonget.CoercerFunc[string](func(c jsonget.Cursor) (string, bool) {
//	    s, ok := jsonget.AsString().Coerce(c)
//	    return strings.ToUpper(s), ok
//	})
//	r := jsonget.New(jsonget.WithFunctions(
//	    jsonget.NewFunction[string]("json_get_upper", "Upper-cased string",
//	        arrow.BinaryTypes.String, array.NewStringBuilder, upper),
//	))
//
// # Arguments
//
// Every argument is a Scalar, shared by all rows, or a Column with one value
// per row. When every path argument is a scalar the path is built once for
// the call; otherwise a path is assembled per row. Per-row path values that
// are null or negative make that row null.
//
// # Errors and Nulls
//
// Invoke fails only when the call is wrong as a whole:
//
//   - no path arguments (ErrArgumentCount)
//   - argument columns of unsupported types (ErrArgumentType)
//   - columns of different lengths (ErrColumnLength)
//   - a scalar accessor that is neither text nor a non-negative integer
//     (ErrInvalidPathArgument)
//
// Everything else is per row and renders as null: null input, a missing key,
// an index out of bounds, a key applied to a non-object or an index to a
// non-array, malformed JSON along the path, or a value of the wrong kind.
//
// # Navigators
//
// Lazy, the default navigator, scans the text front to back once, skipping
// values that are not on the path without decoding them. Cost is
// proportional to the bytes before the end of the located value, not to the
// size of the document. Duplicate keys resolve to the first occurrence.
//
// GJSON is an alternative backed by github.com/tidwall/gjson. Select it per
// registry with WithNavigator or per function with Function.Navigator.
//
// # Hooks
//
// Hooks provide observability without coupling to specific logging or
// metrics systems:
//
//	r := jsonget.New(
//	    jsonget.WithOnComplete(func(ctx context.Context, function string, s jsonget.Stats, d time.Duration) {
//	        metrics.Timing("jsonget.invoke", d, "function:"+function)
//	    }),
//	    jsonget.WithOnError(func(ctx context.Context, function string, err error, d time.Duration) {
//	        metrics.Incr("jsonget.error", "function:"+function)
//	    }),
//	)
//
// Package jsongetprom provides ready-made Prometheus hooks.
//
// # Thread Safety
//
// Navigation and coercion keep no state between calls. Registry and Function
// are safe for concurrent use after configuration; batches may be split
// across goroutines freely.
package jsonget

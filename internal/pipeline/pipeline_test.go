package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bjaus/jsonget"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func input(n int) string {
	var b strings.Builder
	for i := range n {
		switch {
		case i%7 == 3:
			b.WriteString("\n")
		case i%5 == 4:
			fmt.Fprintf(&b, "{\"id\": \"s%d\"}\n", i)
		default:
			fmt.Fprintf(&b, "{\"id\": %d, \"tags\": [%d]}\n", i, i*10)
		}
	}
	return b.String()
}

func expected(n int) string {
	var b strings.Builder
	for i := range n {
		switch {
		case i%7 == 3, i%5 == 4:
			b.WriteString("null\n")
		default:
			fmt.Fprintf(&b, "%d\n", i)
		}
	}
	return b.String()
}

func TestRun_PreservesOrder(t *testing.T) {
	tests := map[string]struct {
		batch   int
		workers int
	}{
		"single worker":       {batch: 4, workers: 1},
		"many workers":        {batch: 3, workers: 8},
		"one batch":           {batch: 1000, workers: 4},
		"one row per batch":   {batch: 1, workers: 5},
		"defaults from zeros": {batch: 0, workers: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
			defer mem.AssertSize(t, 0)

			var out bytes.Buffer
			cfg := Config{
				Function:  jsonget.NameGetInt,
				Path:      jsonget.MustPath("id"),
				BatchSize: tt.batch,
				Workers:   tt.workers,
				Allocator: mem,
			}
			sum, err := Run(context.Background(), jsonget.New(jsonget.WithAllocator(mem)), cfg, strings.NewReader(input(50)), &out)
			require.NoError(t, err)

			if diff := cmp.Diff(expected(50), out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 50, sum.Rows)
			assert.Equal(t, strings.Count(expected(50), "null"), sum.Nulls)
			assert.Equal(t, int64(len(input(50))), sum.Bytes)
		})
	}
}

func TestRun_PerElementPath(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{Function: jsonget.NameGetJSON, Path: jsonget.MustPath("tags", 0)}
	in := "{\"tags\": [\"a\", 1]}\n{\"tags\": {}}\n{\"tags\": [{\"k\": true}]}\n"

	_, err := Run(context.Background(), jsonget.New(), cfg, strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, "\"\\\"a\\\"\"\nnull\n\"{\\\"k\\\": true}\"\n", out.String())
}

func TestRun_YAML(t *testing.T) {
	var out bytes.Buffer
	cfg := Config{
		Function:  jsonget.NameGetStr,
		Path:      jsonget.MustPath("name"),
		BatchSize: 2,
		Workers:   3,
		Format:    FormatYAML,
	}
	in := "{\"name\": \"ann\"}\n{\"name\": 1}\n\n{\"name\": \"true\"}\n{\"name\": \"dee\"}\n"

	_, err := Run(context.Background(), jsonget.New(), cfg, strings.NewReader(in), &out)
	require.NoError(t, err)

	var got []any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []any{"ann", nil, nil, "true", "dee"}, got)
}

func TestRun_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	sum, err := Run(context.Background(), jsonget.New(), Config{Function: jsonget.NameGetStr, Path: jsonget.MustPath("a")}, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Equal(t, Summary{}, sum)
}

func TestRun_Errors(t *testing.T) {
	reg := jsonget.New()
	in := strings.NewReader("{}\n")

	_, err := Run(context.Background(), reg, Config{Function: "nope", Path: jsonget.MustPath("a")}, in, &bytes.Buffer{})
	assert.ErrorIs(t, err, jsonget.ErrUnknownFunction)

	_, err = Run(context.Background(), reg, Config{Function: jsonget.NameGetStr, Path: jsonget.MustPath("a"), Format: "xml"}, in, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Run(context.Background(), reg, Config{Function: jsonget.NameGetStr}, in, &bytes.Buffer{})
	assert.ErrorIs(t, err, jsonget.ErrArgumentCount)
}

func TestRun_LineTooLong(t *testing.T) {
	cfg := Config{Function: jsonget.NameGetStr, Path: jsonget.MustPath("a"), MaxLine: 16}
	in := strings.NewReader(`{"a": "` + strings.Repeat("x", 64) + `"}` + "\n")

	_, err := Run(context.Background(), jsonget.New(), cfg, in, &bytes.Buffer{})
	assert.ErrorContains(t, err, "read input")
}

type failingWriter struct{ after int }

var errWrite = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.after == 0 {
		return 0, errWrite
	}
	w.after--
	return len(p), nil
}

func TestRun_WriteError(t *testing.T) {
	cfg := Config{Function: jsonget.NameGetInt, Path: jsonget.MustPath("id"), BatchSize: 2, Workers: 4}

	sum, err := Run(context.Background(), jsonget.New(), cfg, strings.NewReader(input(100)), &failingWriter{after: 3})
	require.ErrorIs(t, err, errWrite)
	assert.Equal(t, 3, sum.Batches)
	assert.Equal(t, 6, sum.Rows)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Function: jsonget.NameGetInt, Path: jsonget.MustPath("id"), BatchSize: 1, Workers: 2}
	_, err := Run(ctx, jsonget.New(), cfg, strings.NewReader(input(100)), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

// Package pipeline runs a jsonget function over newline delimited JSON
// documents in concurrent Arrow batches and writes one output value per line.
package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"

	"github.com/bjaus/jsonget"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Defaults applied to zero Config fields.
const (
	DefaultBatchSize = 1024
	DefaultMaxLine   = 64 << 20
)

// ErrFormat is returned for an unknown output format.
var ErrFormat = errors.New("unsupported output format")

// Config selects the function and shapes the batches of a Run.
type Config struct {
	// Function is a registered function name or alias.
	Function string

	// Path is passed to every row as scalar accessors.
	Path jsonget.Path

	// BatchSize is the number of lines per Arrow batch.
	BatchSize int

	// Workers is the number of batches evaluated concurrently.
	Workers int

	// Format is FormatJSON (one JSON value per line, null for nulls) or
	// FormatYAML (a single YAML sequence).
	Format string

	// MaxLine bounds the length of one input line in bytes.
	MaxLine int

	// Allocator backs the input and output columns.
	Allocator memory.Allocator
}

func (c *Config) setDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.MaxLine <= 0 {
		c.MaxLine = DefaultMaxLine
	}
	if c.Allocator == nil {
		c.Allocator = memory.DefaultAllocator
	}
}

// Summary describes a completed Run.
type Summary struct {
	Rows    int
	Nulls   int
	Batches int
	Bytes   int64
}

type job struct {
	seq   int
	lines []string
}

type result struct {
	seq   int
	out   []byte
	rows  int
	nulls int
	bytes int64
}

// Run reads documents from in, one per line, and writes the function's
// output for each to out in input order. An empty line is a NULL document.
func Run(ctx context.Context, reg *jsonget.Registry, cfg Config, in io.Reader, out io.Writer) (Summary, error) {
	cfg.setDefaults()
	render, err := renderer(cfg.Format)
	if err != nil {
		return Summary{}, err
	}
	if _, ok := reg.Lookup(cfg.Function); !ok {
		return Summary{}, fmt.Errorf("%w: %s", jsonget.ErrUnknownFunction, cfg.Function)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, cfg.Workers)
	results := make(chan result, cfg.Workers)

	g.Go(func() error {
		defer close(jobs)
		return produce(gctx, in, cfg, jobs)
	})

	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				r, err := evaluate(gctx, reg, cfg, render, j)
				if err != nil {
					return err
				}
				select {
				case results <- r:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		sum     Summary
		werr    error
		next    int
		pending = make(map[int]result)
	)
	for r := range results {
		pending[r.seq] = r
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if werr != nil {
				continue
			}
			if _, werr = out.Write(p.out); werr != nil {
				cancel()
				continue
			}
			sum.Rows += p.rows
			sum.Nulls += p.nulls
			sum.Bytes += p.bytes
			sum.Batches++
		}
	}

	err = g.Wait()
	if werr != nil {
		return sum, fmt.Errorf("write output: %w", werr)
	}
	return sum, err
}

func produce(ctx context.Context, in io.Reader, cfg Config, jobs chan<- job) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, min(64*1024, cfg.MaxLine)), cfg.MaxLine)

	seq := 0
	lines := make([]string, 0, cfg.BatchSize)
	flush := func() error {
		if len(lines) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case jobs <- job{seq: seq, lines: lines}:
		case <-ctx.Done():
			return ctx.Err()
		}
		seq++
		lines = make([]string, 0, cfg.BatchSize)
		return nil
	}

	for sc.Scan() {
		lines = append(lines, sc.Text())
		if len(lines) == cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return flush()
}

func evaluate(ctx context.Context, reg *jsonget.Registry, cfg Config, render renderFunc, j job) (result, error) {
	b := array.NewStringBuilder(cfg.Allocator)
	b.Reserve(len(j.lines))
	var size int64
	for _, line := range j.lines {
		size += int64(len(line)) + 1
		if strings.TrimSpace(line) == "" {
			b.AppendNull()
			continue
		}
		b.Append(line)
	}
	docs := b.NewStringArray()
	b.Release()
	defer docs.Release()

	col, err := reg.Invoke(ctx, cfg.Function, jsonget.Column(docs), cfg.Path.Args()...)
	if err != nil {
		return result{}, fmt.Errorf("batch %d: %w", j.seq, err)
	}
	defer col.Release()

	out, err := render(values(col))
	if err != nil {
		return result{}, fmt.Errorf("batch %d: %w", j.seq, err)
	}
	return result{seq: j.seq, out: out, rows: col.Len(), nulls: col.NullN(), bytes: size}, nil
}

func values(col arrow.Array) []any {
	vals := make([]any, col.Len())
	for i := range vals {
		if col.IsValid(i) {
			vals[i] = col.GetOneForMarshal(i)
		}
	}
	return vals
}

type renderFunc func(vals []any) ([]byte, error)

func renderer(format string) (renderFunc, error) {
	switch format {
	case FormatJSON:
		return renderJSON, nil
	case FormatYAML:
		return renderYAML, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

func renderJSON(vals []any) ([]byte, error) {
	var buf []byte
	for _, v := range vals {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
		buf = append(buf, '\n')
	}
	return buf, nil
}

// renderYAML renders vals as sequence entries; consecutive batches
// concatenate into one sequence.
func renderYAML(vals []any) ([]byte, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	payload, err := yaml.Marshal(vals)
	if err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return payload, nil
}

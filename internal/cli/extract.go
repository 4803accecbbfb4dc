package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bjaus/jsonget"
	"github.com/bjaus/jsonget/internal/logger"
	"github.com/bjaus/jsonget/internal/pipeline"
	"github.com/bjaus/jsonget/jsongetprom"
)

// ExtractOpts is the resolved configuration of the extract command.
type ExtractOpts struct {
	Function  string
	Path      jsonget.Path
	BatchSize int
	Workers   int
	Format    string
	Navigator string
	MaxLine   int
	Metrics   bool
}

func newExtractCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Evaluate a function over newline delimited JSON",
		Long: `Evaluate a function over newline delimited JSON read from file, or from
stdin when no file is given. The path is a JSON array of object keys and
array indexes, for example '["user", "tags", 0]'.`,
		Example: `  jsonget extract --func json_get_int --path '["a", 1]' events.ndjson
  cat events.ndjson | jsonget extract --func json_get_str --path '["user","name"]' --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadExtractOpts(NewFlagLoader(cmd, v))
			if err != nil {
				return err
			}
			return runExtract(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.String("func", jsonget.NameGetJSON, "Function name or alias")
	f.String("path", "", `Path as a JSON array, e.g. '["a", 1]' (required)`)
	f.Int("batch-size", pipeline.DefaultBatchSize, "Rows per Arrow batch")
	f.Int("workers", runtime.GOMAXPROCS(0), "Batches evaluated concurrently")
	f.String("format", pipeline.FormatJSON, "Output format (json, yaml)")
	f.String("navigator", "lazy", "Navigator backend (lazy, gjson)")
	f.String("max-line", "64MiB", "Maximum input line size")
	f.Bool("metrics", false, "Write Prometheus metrics to stderr when done")
	return cmd
}

func loadExtractOpts(fl *FlagLoader) (ExtractOpts, error) {
	text := fl.String("path")
	if text == "" {
		return ExtractOpts{}, fmt.Errorf("--path is required")
	}
	p, err := jsonget.ParsePathJSON(text)
	if err != nil {
		return ExtractOpts{}, fmt.Errorf("--path: %w", err)
	}

	maxLine, err := humanize.ParseBytes(fl.String("max-line"))
	if err != nil {
		return ExtractOpts{}, fmt.Errorf("--max-line: %w", err)
	}

	nav := fl.String("navigator")
	switch nav {
	case "lazy", "gjson":
	default:
		return ExtractOpts{}, fmt.Errorf("--navigator: unknown navigator %q", nav)
	}

	return ExtractOpts{
		Function:  fl.String("func"),
		Path:      p,
		BatchSize: fl.Int("batch-size"),
		Workers:   fl.Int("workers"),
		Format:    fl.String("format"),
		Navigator: nav,
		MaxLine:   int(maxLine),
		Metrics:   fl.Bool("metrics"),
	}, nil
}

func runExtract(cmd *cobra.Command, opts ExtractOpts, args []string) error {
	in := cmd.InOrStdin()
	source := "stdin"
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in, source = f, args[0]
	}

	regOpts := logHooks()
	if opts.Navigator == "gjson" {
		regOpts = append(regOpts, jsonget.WithNavigator(jsonget.GJSON()))
	}
	var metrics *prometheus.Registry
	if opts.Metrics {
		metrics = prometheus.NewRegistry()
		c, err := jsongetprom.New(metrics, "")
		if err != nil {
			return err
		}
		regOpts = append(regOpts, c.Options()...)
	}
	reg := jsonget.New(regOpts...)

	logger.Debug().
		Str("function", opts.Function).
		Stringer("path", opts.Path).
		Str("source", source).
		Int("batch_size", opts.BatchSize).
		Int("workers", opts.Workers).
		Msg("starting extract")

	start := time.Now()
	sum, err := pipeline.Run(cmd.Context(), reg, pipeline.Config{
		Function:  opts.Function,
		Path:      opts.Path,
		BatchSize: opts.BatchSize,
		Workers:   opts.Workers,
		Format:    opts.Format,
		MaxLine:   opts.MaxLine,
	}, in, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info().
		Str("function", opts.Function).
		Str("rows", humanize.Comma(int64(sum.Rows))).
		Str("nulls", humanize.Comma(int64(sum.Nulls))).
		Str("input", humanize.Bytes(uint64(sum.Bytes))).
		Int("batches", sum.Batches).
		Dur("elapsed", time.Since(start)).
		Msg("extract complete")

	if metrics != nil {
		return writeMetrics(cmd.ErrOrStderr(), metrics)
	}
	return nil
}

func logHooks() []jsonget.Option {
	return []jsonget.Option{
		jsonget.WithOnInvoke(func(ctx context.Context, function string) context.Context {
			l := logger.Ctx(ctx).With().Str("function", function).Logger()
			return logger.WithLogger(ctx, &l)
		}),
		jsonget.WithOnComplete(func(ctx context.Context, function string, s jsonget.Stats, d time.Duration) {
			logger.Ctx(ctx).Debug().
				Int("rows", s.Rows).
				Int("absent", s.Absent).
				Int("null_inputs", s.NullInputs).
				Dur("duration", d).
				Msg("batch evaluated")
		}),
		jsonget.WithOnError(func(ctx context.Context, function string, err error, d time.Duration) {
			logger.Ctx(ctx).Error().Err(err).Str("function", function).Msg("invocation failed")
		}),
	}
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

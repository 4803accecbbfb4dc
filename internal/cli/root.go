// Package cli implements the jsonget command line tool.
package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bjaus/jsonget/internal/logger"
)

// EnvPrefix prefixes the environment variables that override flags, e.g.
// JSONGET_BATCH_SIZE for --batch-size.
const EnvPrefix = "JSONGET"

// NewRootCommand builds the jsonget command tree. Every call returns an
// independent tree with its own configuration.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "jsonget",
		Short: "Extract values from newline delimited JSON by path",
		Long: `jsonget evaluates the json_get family of functions over newline delimited
JSON documents. Each input line is one document; an empty line is NULL.
Output has one line per input line, null where the path does not resolve
to a value of the function's type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initialize(cmd, v)
		},
	}
	root.SetVersionTemplate("jsonget {{.Version}}\n")

	f := root.PersistentFlags()
	f.String("config", "", "Path to a config file (yaml, json or toml)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "console", "Log format (console, json)")

	root.AddCommand(newExtractCommand(v), newFunctionsCommand(), newVersionCommand())
	return root
}

func initialize(cmd *cobra.Command, v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	fl := NewFlagLoader(cmd, v)
	if path := fl.String("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	if err := logger.Setup(cmd.ErrOrStderr(), fl.String("log-level"), fl.String("log-format")); err != nil {
		return err
	}
	if path := v.ConfigFileUsed(); path != "" {
		logger.Debug().Str("path", path).Msg("loaded config file")
	}
	return nil
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("interrupted")
			return 130
		}
		logger.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

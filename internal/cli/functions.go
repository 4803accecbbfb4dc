package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bjaus/jsonget"
)

func newFunctionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the available functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := jsonget.New()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FUNCTION\tRETURNS\tALIASES\tDESCRIPTION")
			for _, name := range reg.Names() {
				fn, _ := reg.Lookup(name)
				aliases := "-"
				if len(fn.Aliases) > 0 {
					aliases = strings.Join(fn.Aliases, ",")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fn.Name, fn.OutputType, aliases, fn.Doc)
			}
			return w.Flush()
		},
	}
}

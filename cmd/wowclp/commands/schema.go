package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	errs "github.com/livp123/wowclp/pkg/errors"
)

func (a *app) newSchemaCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema [event]",
		Short: "Show registered event schemas",
		// Short: 显示已注册的事件 schema
		Long: `List every registered event with its field count, or the ordered
fields of one event. --format yaml prints a schema file that can be edited
and passed back through parser.schema_file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry(a.cfg.Parser)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if _, ok := reg.Lookup(args[0]); !ok {
					return fmt.Errorf("%w: %s", errs.ErrUnknownEvent, args[0])
				}
			}

			if strings.EqualFold(format, "yaml") {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(reg.Export(args...))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if len(args) == 0 {
				fmt.Fprintln(tw, "EVENT\tFIELDS\tREQUIRED")
				for _, name := range reg.Events() {
					s, _ := reg.Lookup(name)
					fmt.Fprintf(tw, "%s\t%d\t%d\n", name, s.Arity(), s.MinArity())
				}
				return nil
			}

			s, _ := reg.Lookup(args[0])
			fmt.Fprintln(tw, "#\tFIELD\tKIND\tNIL\tNOTES")
			for i, f := range s.Fields {
				var notes []string
				if f.Enum != nil {
					notes = append(notes, "enum "+f.Enum.Name)
				}
				if f.Optional {
					notes = append(notes, "optional")
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", 7+i, f.Name, f.Kind, f.NilDefault, strings.Join(notes, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or yaml")
	return cmd
}

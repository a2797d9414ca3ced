package main

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Print column kinds and the first rows of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return preview(cmd.OutOrStdout(), args[0], rows)
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 5, "number of rows to show")
	return cmd
}

func preview(w io.Writer, path string, rows int) error {
	ds, err := loadFile(path)
	if err != nil {
		return err
	}

	schema := pterm.TableData{{"Column", "Kind"}}
	for _, c := range ds.Schema() {
		schema = append(schema, []string{c.Name, c.Kind.String()})
	}

	head, err := ds.Head(rows).Rows()
	if err != nil {
		return err
	}
	data := pterm.TableData{ds.Columns()}
	data = append(data, head...)

	fmt.Fprintf(w, "%s: %d rows, %d columns\n\n", path, ds.Len(), len(ds.Columns()))
	for _, table := range []pterm.TableData{schema, data} {
		out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(table).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	}
	return nil
}

func printError(err error) {
	pterm.Error.Println(err)
}

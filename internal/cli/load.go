package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/pex/internal/loader"
)

// loadReport is the json/yaml output of the load command.
type loadReport struct {
	LoadID string           `json:"load_id" yaml:"load_id"`
	File   string           `json:"file" yaml:"file"`
	Sheets []loader.Summary `json:"sheets" yaml:"sheets"`
}

func newLoadCmd(a *app) *cobra.Command {
	var (
		flags  loadFlags
		rows   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a file and print its columns and first rows",
		Example: `  pexload load sales.csv
  pexload load --sep ';' --dtype amount=float64 --na - export.csv
  pexload load --all-sheets -o yaml workbook.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("invalid argument %q for \"--output\": want table, json, or yaml", output)
			}

			opts, err := flags.options(cmd, a.cfg.Loader.Options())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rows") {
				rows = a.cfg.Loader.PreviewRows
			}

			path := args[0]
			l, err := loader.Load(cmd.Context(), path, loader.WithOptions(opts))
			if err != nil {
				return err
			}

			report := loadReport{
				LoadID: l.LoadID,
				File:   filepath.Base(path),
				Sheets: l.Summaries(rows),
			}
			return writeReport(cmd.OutOrStdout(), output, report)
		},
	}

	addLoadFlags(cmd, &flags)
	cmd.Flags().IntVarP(&rows, "rows", "n", 20, "preview rows to print (-1 for all)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json, or yaml")
	return cmd
}

func writeReport(w io.Writer, format string, r loadReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(r.Sheets) == 0 {
		_, err := fmt.Fprintf(w, "%s: no non-empty sheets\n", r.File)
		return err
	}
	for i, sum := range r.Sheets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeSummaryTable(w, r.File, sum); err != nil {
			return err
		}
	}
	return nil
}

// writeSummaryTable prints the column listing followed by the preview rows.
func writeSummaryTable(w io.Writer, file string, sum loader.Summary) error {
	title := file
	if sum.Sheet != "" {
		title += " [" + sum.Sheet + "]"
	}
	fmt.Fprintf(w, "%s: %d rows x %d columns\n\n", title, sum.Rows, len(sum.Columns))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tDTYPE\tMISSING")
	fmt.Fprintln(tw, "------\t-----\t-------")
	for _, c := range sum.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Name, c.DType, c.Missing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(sum.Preview) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	names := make([]string, len(sum.Columns))
	for j, c := range sum.Columns {
		names[j] = c.Name
	}
	fmt.Fprintln(tw, strings.Join(names, "\t"))
	for _, row := range sum.Preview {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				cells[j] = "NaN"
				continue
			}
			cells[j] = fmt.Sprint(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if sum.Rows > len(sum.Preview) {
		fmt.Fprintf(w, "... %d more rows\n", sum.Rows-len(sum.Preview))
	}
	return nil
}

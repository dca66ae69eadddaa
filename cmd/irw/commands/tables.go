package commands

import (
	"context"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// TablesCmd represents the tables command
var TablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables with warehouse metadata",
	Long: `tables — List the available warehouse tables

Shows the enriched listing joined with warehouse statistics, tags, and
bibliography metadata. Use --basic for snapshots without metadata tables.

Examples:
  irw tables           # Enriched listing
  irw tables --basic   # Name, rows, and column count only`,
	RunE: runTables,
}

var tablesBasicFlag bool

func init() {
	TablesCmd.Flags().BoolVar(&tablesBasicFlag, "basic", false, "Show base table properties only")
}

func runTables(cmd *cobra.Command, args []string) error {
	client, closer, err := newClient()
	if err != nil {
		return err
	}
	defer closer()
	ctx := context.Background()

	if tablesBasicFlag {
		data := pterm.TableData{{"name", "rows", "columns"}}
		for _, p := range client.ListTablesBasic(ctx) {
			data = append(data, []string{p.Name, fmtInt(p.NumRows), fmtInt(p.VariableCount)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	rows, err := client.ListTables(ctx)
	if err != nil {
		return err
	}
	data := pterm.TableData{{
		"name", "n_responses", "n_items", "density", "longitudinal",
		"construct_type", "language", "license",
	}}
	for _, r := range rows {
		data = append(data, []string{
			r.Name,
			fmtFloat(r.NResponses),
			fmtFloat(r.NItems),
			fmtFloat(r.Density),
			fmtBool(r.Longitudinal),
			fmtString(r.ConstructType),
			fmtString(r.Language),
			fmtString(r.License),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func fmtInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func fmtString(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func fmtBool(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}

package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// FiltersCmd represents the filters command
var FiltersCmd = &cobra.Command{
	Use:   "filters [name]",
	Short: "Show the filter catalog and observed values",
	Long: `filters — Explore the available metadata filters

Without arguments, lists every filter with its usage help. With a filter
name, additionally shows the values observed across the current listing.

Examples:
  irw filters               # Full catalog
  irw filters density       # Distribution of matrix densities
  irw filters construct_type`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFilters,
}

func runFilters(cmd *cobra.Command, args []string) error {
	client, closer, err := newClient()
	if err != nil {
		return err
	}
	defer closer()

	if len(args) == 0 {
		for _, d := range client.Filters() {
			pterm.DefaultSection.Println(d.Name)
			pterm.Println(d.Help)
		}
		return nil
	}

	info, err := client.DescribeFilter(context.Background(), args[0])
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println(info.Name)
	pterm.Println(info.Help)
	pterm.Println()

	switch {
	case info.Numeric != nil:
		n := info.Numeric
		data := pterm.TableData{
			{"min", strconv.FormatFloat(n.Min, 'g', -1, 64)},
			{"max", strconv.FormatFloat(n.Max, 'g', -1, 64)},
			{"mean", strconv.FormatFloat(n.Mean, 'g', 4, 64)},
			{"median", strconv.FormatFloat(n.Median, 'g', -1, 64)},
			{"std", strconv.FormatFloat(n.Std, 'g', 4, 64)},
			{"count", strconv.Itoa(n.Count)},
			{"null count", strconv.Itoa(n.NullCount)},
		}
		return pterm.DefaultTable.WithData(data).Render()
	case info.Availability != nil:
		fmt.Printf("longitudinal: %d\nnot longitudinal: %d\n",
			info.Availability.True, info.Availability.False)
		return nil
	default:
		data := pterm.TableData{{"value", "tables"}}
		for _, vc := range info.Values {
			data = append(data, []string{vc.Value, strconv.Itoa(vc.Count)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
}

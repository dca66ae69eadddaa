package commands

import (
	"context"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show collection-level statistics",
	Long: `info — Show statistics aggregated across the configured sources

Examples:
  irw info`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, closer, err := newClient()
	if err != nil {
		return err
	}
	defer closer()

	sum := client.Info(context.Background())

	pterm.DefaultSection.Println("Collection Information")
	data := pterm.TableData{
		{"tables", strconv.Itoa(sum.TableCount)},
		{"total size", formatBytes(sum.TotalBytes)},
		{"earliest created", formatTime(sum.EarliestCreated)},
		{"latest updated", formatTime(sum.LatestUpdated)},
	}
	return pterm.DefaultTable.WithData(data).Render()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

package commands

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/spf13/cobra"

	"github.com/datapages/irw-go/fetch"
	"github.com/datapages/irw-go/frame"
	"github.com/datapages/irw-go/internal/util"
	"github.com/datapages/irw-go/reshape"
)

// FetchCmd represents the fetch command
var FetchCmd = &cobra.Command{
	Use:   "fetch <table>",
	Short: "Fetch a long-format table",
	Long: `fetch — Fetch a long-format response table as CSV on stdout

With --wide the table is converted to a wide id-by-item response matrix
first; --wave, --density-threshold, and --agg tune that conversion.

Examples:
  irw fetch agn_kay_2025                  # Long format
  irw fetch agn_kay_2025 --dedup          # One response per (id,item[,wave])
  irw fetch agn_kay_2025 --wide --agg median`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var (
	fetchDedupFlag     bool
	fetchWideFlag      bool
	fetchWaveFlag      string
	fetchThresholdFlag float64
	fetchAggFlag       string
)

func init() {
	f := FetchCmd.Flags()
	f.BoolVar(&fetchDedupFlag, "dedup", false, "Keep one response per (id, item[, wave]) group")
	f.BoolVar(&fetchWideFlag, "wide", false, "Convert to a wide response matrix")
	f.StringVar(&fetchWaveFlag, "wave", "", "Wave to keep; defaults to the most frequent")
	f.Float64Var(&fetchThresholdFlag, "density-threshold", 0.1, "Drop ids below this response density; negative disables")
	f.StringVar(&fetchAggFlag, "agg", "mean", "Duplicate aggregation: mean, median, mode, or first")
}

func runFetch(cmd *cobra.Command, args []string) error {
	client, closer, err := newClient()
	if err != nil {
		return err
	}
	defer closer()

	f, err := client.Fetch(context.Background(), args[0], fetch.Options{Dedup: fetchDedupFlag})
	if err != nil {
		return err
	}

	if fetchWideFlag {
		opts := reshape.Options{AggMethod: reshape.Method(fetchAggFlag)}
		if fetchWaveFlag != "" {
			opts.Wave = util.Ptr(fetchWaveFlag)
		}
		if fetchThresholdFlag >= 0 {
			opts.IDDensityThreshold = util.Ptr(fetchThresholdFlag)
		}
		f, _, err = client.Long2Resp(f, opts)
		if err != nil {
			return err
		}
	}

	return writeCSV(f)
}

func writeCSV(f *frame.Frame) error {
	w := csv.NewWriter(os.Stdout)
	if err := w.Write(f.Columns()); err != nil {
		return err
	}
	record := make([]string, f.NumCols())
	for r := 0; r < f.NumRows(); r++ {
		for i, v := range f.Row(r) {
			if v.IsNull() {
				record[i] = ""
			} else {
				record[i] = v.Key()
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

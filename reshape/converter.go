// Package reshape converts long-format response tables into wide id-by-item
// response matrices.
package reshape

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/frame"
)

// Method selects how duplicate (id, item) responses are aggregated.
type Method string

const (
	MethodMean   Method = "mean"
	MethodMedian Method = "median"
	MethodMode   Method = "mode"
	MethodFirst  Method = "first"
)

// itemPrefix disambiguates item identifiers from other column names during
// pivoting. It is stripped again from the output columns.
const itemPrefix = "item_"

// Options configures a conversion. The zero value aggregates duplicates with
// the mean and applies no wave or density filtering; use DefaultOptions for
// the standard sparse-id threshold.
type Options struct {
	// Wave restricts rows to one wave, given in canonical key form
	// (frame.Value.Key). Nil selects the most frequent wave when a wave
	// column exists.
	Wave *string

	// IDDensityThreshold drops ids answering fewer than this fraction of
	// the table's distinct items. Nil disables the filter. Inclusive
	// boundary: an id exactly at the threshold is kept.
	IDDensityThreshold *float64

	AggMethod Method
}

// DefaultOptions returns the standard configuration: most frequent wave,
// density threshold 0.1, mean aggregation.
func DefaultOptions() Options {
	th := 0.1
	return Options{IDDensityThreshold: &th, AggMethod: MethodMean}
}

// Report carries the human-readable notes accumulated during a conversion.
// Notes are observational only and never alter the returned matrix.
type Report struct {
	Notes []string
}

func (r *Report) add(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// Converter reshapes long response tables.
type Converter struct {
	logger *zap.SugaredLogger
}

// NewConverter creates a converter. A nil logger silences note output.
func NewConverter(logger *zap.SugaredLogger) *Converter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Converter{logger: logger}
}

// record is one working row after column projection. The item identifier is
// held in prefixed string form.
type record struct {
	id    frame.Value
	idKey string
	item  string
	resp  frame.Value
}

// Long2Resp converts a long table with id, item, resp columns (and
// optionally wave) into a wide response matrix: one row per id, one column
// per item, cells holding the aggregated numeric response or null.
func (c *Converter) Long2Resp(f *frame.Frame, opts Options) (*frame.Frame, *Report, error) {
	method := opts.AggMethod
	if method == "" {
		method = MethodMean
	}
	switch method {
	case MethodMean, MethodMedian, MethodMode, MethodFirst:
	default:
		return nil, nil, errors.Wrapf(errors.ErrConfiguration,
			"invalid aggregation method %q: choose mean, median, mode, or first", method)
	}

	var missing []string
	for _, col := range []string{"id", "item", "resp"} {
		if !f.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errors.Wrapf(errors.ErrSchema,
			"missing required columns: %s", strings.Join(missing, ", "))
	}
	if f.HasColumn("date") {
		return nil, nil, errors.Wrap(errors.ErrUnsupportedFormat,
			"date-bearing data is not supported by this conversion")
	}

	report := &Report{}

	if f.HasColumn("rater") {
		raters := map[string]struct{}{}
		for _, v := range f.Column("rater") {
			raters[v.Key()] = struct{}{}
		}
		report.add("dataset contains rater information with %d unique raters", len(raters))
	}

	ids := f.Column("id")
	items := f.Column("item")
	resps := f.Column("resp")

	keep := c.selectWave(f, opts.Wave, report)

	recs := make([]record, 0, len(keep))
	coercionFailed := false
	for _, r := range keep {
		resp, failed := frame.CoerceNumber(resps[r])
		coercionFailed = coercionFailed || failed

		item := items[r].Key()
		if !strings.HasPrefix(item, itemPrefix) {
			item = itemPrefix + item
		}
		recs = append(recs, record{
			id:    ids[r],
			idKey: ids[r].Key(),
			item:  item,
			resp:  resp,
		})
	}
	if coercionFailed {
		report.add("some responses could not be converted to numeric and were set to missing")
	}

	if opts.IDDensityThreshold != nil {
		recs = c.filterSparseIDs(recs, *opts.IDDensityThreshold, report)
	}

	cells := c.aggregate(recs, method, report)

	wide := pivot(recs, cells)

	for _, note := range report.Notes {
		c.logger.Infow("long2resp", "note", note)
	}
	return wide, report, nil
}

// selectWave returns the row indices surviving wave filtering. Without a
// wave column every row survives.
func (c *Converter) selectWave(f *frame.Frame, requested *string, report *Report) []int {
	all := make([]int, f.NumRows())
	for i := range all {
		all[i] = i
	}
	if !f.HasColumn("wave") || len(all) == 0 {
		return all
	}

	waves := f.Column("wave")
	counts := map[string]int{}
	var order []string
	for _, v := range waves {
		key := v.Key()
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	var target string
	if requested != nil {
		target = *requested
	} else if len(order) > 0 {
		// Most frequent wave, ties broken by first encounter
		target = order[0]
		for _, key := range order[1:] {
			if counts[key] > counts[target] {
				target = key
			}
		}
		report.add("defaulting to the most frequent wave: %s", target)
	}

	if counts[target] == 0 {
		report.add("wave %s not found in data; no filtering applied", target)
		return all
	}

	report.add("keeping only responses from wave %s", target)
	kept := all[:0]
	for r, v := range waves {
		if v.Key() == target {
			kept = append(kept, r)
		}
	}
	return kept
}

// filterSparseIDs drops ids whose response density falls below the
// threshold. Density is the fraction of the table's distinct items for
// which the id has at least one non-missing response.
func (c *Converter) filterSparseIDs(recs []record, threshold float64, report *Report) []record {
	totalItems := map[string]struct{}{}
	answered := map[string]map[string]struct{}{}
	totalIDs := map[string]struct{}{}
	for _, r := range recs {
		totalItems[r.item] = struct{}{}
		totalIDs[r.idKey] = struct{}{}
		if !r.resp.IsNull() {
			if answered[r.idKey] == nil {
				answered[r.idKey] = map[string]struct{}{}
			}
			answered[r.idKey][r.item] = struct{}{}
		}
	}
	if len(totalItems) == 0 {
		return recs
	}

	keep := map[string]bool{}
	removed := 0
	for id := range totalIDs {
		density := float64(len(answered[id])) / float64(len(totalItems))
		keep[id] = density >= threshold
		if !keep[id] {
			removed++
		}
	}
	if removed == 0 {
		return recs
	}

	percent := float64(removed) / float64(len(totalIDs)) * 100
	report.add("%d of %d ids removed (%.2f%%) due to response density below threshold (%g)",
		removed, len(totalIDs), percent, threshold)
	report.add("set IDDensityThreshold to nil to disable density filtering")

	out := recs[:0]
	for _, r := range recs {
		if keep[r.idKey] {
			out = append(out, r)
		}
	}
	return out
}

type pairKey struct {
	id   string
	item string
}

// aggregate collapses duplicate (id, item) responses into one cell value
// per pair using the chosen method.
func (c *Converter) aggregate(recs []record, method Method, report *Report) map[pairKey]frame.Value {
	groups := map[pairKey][]frame.Value{}
	var order []pairKey
	for _, r := range recs {
		key := pairKey{id: r.idKey, item: r.item}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r.resp)
	}

	affected, extra := 0, 0
	for _, vals := range groups {
		if len(vals) > 1 {
			affected++
			extra += len(vals) - 1
		}
	}
	if affected > 0 {
		percent := float64(affected) / float64(len(groups)) * 100
		report.add("found %d duplicate responses across %d id-item pairs (%.2f%% of pairs); aggregating with method %q",
			extra, affected, percent, method)
	}

	cells := make(map[pairKey]frame.Value, len(groups))
	for _, key := range order {
		cells[key] = aggregateValues(groups[key], method)
	}
	return cells
}

func aggregateValues(vals []frame.Value, method Method) frame.Value {
	if method == MethodFirst {
		return vals[0]
	}

	var nums []float64
	for _, v := range vals {
		if n, ok := v.Number(); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return frame.Null()
	}

	switch method {
	case MethodMean:
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return frame.Num(sum / float64(len(nums)))
	case MethodMedian:
		sorted := append([]float64(nil), nums...)
		sort.Float64s(sorted)
		n := len(sorted)
		if n%2 == 1 {
			return frame.Num(sorted[n/2])
		}
		return frame.Num((sorted[n/2-1] + sorted[n/2]) / 2)
	case MethodMode:
		counts := map[float64]int{}
		var order []float64
		for _, n := range nums {
			if counts[n] == 0 {
				order = append(order, n)
			}
			counts[n]++
		}
		// Ties break toward the first-encountered value
		best := order[0]
		for _, n := range order[1:] {
			if counts[n] > counts[best] {
				best = n
			}
		}
		return frame.Num(best)
	}
	return frame.Null()
}

// pivot builds the wide matrix. Row order is id first-encounter order,
// column order is item first-encounter order, both over the filtered row
// stream, so identical input always yields identical output.
func pivot(recs []record, cells map[pairKey]frame.Value) *frame.Frame {
	var idOrder []string
	idValues := map[string]frame.Value{}
	var itemOrder []string
	itemSeen := map[string]struct{}{}
	for _, r := range recs {
		if _, ok := idValues[r.idKey]; !ok {
			idOrder = append(idOrder, r.idKey)
			idValues[r.idKey] = r.id
		}
		if _, ok := itemSeen[r.item]; !ok {
			itemOrder = append(itemOrder, r.item)
			itemSeen[r.item] = struct{}{}
		}
	}

	cols := make([]string, 0, len(itemOrder)+1)
	cols = append(cols, "id")
	for _, item := range itemOrder {
		cols = append(cols, strings.TrimPrefix(item, itemPrefix))
	}

	wide := frame.New(cols...)
	for _, idKey := range idOrder {
		row := make([]frame.Value, 0, len(cols))
		row = append(row, idValues[idKey])
		for _, item := range itemOrder {
			if v, ok := cells[pairKey{id: idKey, item: item}]; ok {
				row = append(row, v)
			} else {
				row = append(row, frame.Null())
			}
		}
		wide.MustAppendRow(row...)
	}
	return wide
}

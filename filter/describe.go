package filter

import (
	"math"
	"sort"
	"strings"

	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/warehouse"
)

// Description pairs a filter name with its usage help.
type Description struct {
	Name string
	Help string
}

// descriptions is the fixed filter catalog. Order is the presentation order.
var descriptions = []Description{
	{"n_responses", "Total number of responses in the dataset. Use Exact for a single value or Between for an inclusive range (nil bound for no limit, e.g. Between(ptr(1000), nil) for >= 1000)."},
	{"n_categories", "Number of unique response categories. Use Exact for a single value or Between for an inclusive range (nil bound for no limit)."},
	{"n_participants", "Number of unique participants (id) in the dataset. Use Exact for a single value or Between for an inclusive range (nil bound for no limit)."},
	{"n_items", "Number of unique items. Use Exact for a single value or Between for an inclusive range (nil bound for no limit)."},
	{"responses_per_participant", "Average number of responses per participant. Use Exact for a single value or Between for an inclusive range (nil bound for no limit)."},
	{"responses_per_item", "Average number of responses per item. Use Exact for a single value or Between for an inclusive range (nil bound for no limit)."},
	{"density", "Matrix density (proportion of cells with valid responses). A density of 1 means every person responded to every item. Lower density indicates that some individuals did not respond to all items. Default is [0.5, 1] to exclude sparse matrices; clear the field to disable."},
	{"var", "Filter by presence of specific variables in the dataset. Use exact variable names (e.g. \"rt\", \"wave\") or prefix matching (e.g. \"cov_\" matches any variable starting with cov_). All listed variables must be present (AND logic)."},
	{"age_range", "Participant age group (e.g. \"Adult (18+)\"). Multiple values combine with OR logic."},
	{"child_age", "Child age subgroup (for child-focused studies). Multiple values combine with OR logic."},
	{"construct_type", "High-level construct category (e.g. \"Affective/mental health\"). Multiple values combine with OR logic."},
	{"construct_name", "Specific construct name (e.g. \"Big Five\"). Multiple values combine with OR logic."},
	{"sample", "Sample type or recruitment method (e.g. \"Educational\", \"Clinical\"). Multiple values combine with OR logic."},
	{"measurement_tool", "Instrument type (e.g. \"Survey/questionnaire\"). Multiple values combine with OR logic."},
	{"item_format", "Item format (e.g. \"Likert Scale/selected response\"). Multiple values combine with OR logic."},
	{"language", "Primary language used (e.g. \"eng\"). Multiple values combine with OR logic."},
	{"longitudinal", "Whether the dataset is longitudinal (has wave or date variables). True restricts to longitudinal datasets, false excludes them, nil disables the filter."},
	{"license", "Dataset license type (e.g. \"CC BY 4.0\"). Multiple values combine with OR logic."},
}

// Descriptions returns the full filter catalog in presentation order.
func Descriptions() []Description {
	out := make([]Description, len(descriptions))
	copy(out, descriptions)
	return out
}

// NumericSummary describes the observed distribution of a numeric filter
// column across the listing.
type NumericSummary struct {
	Min       float64
	Max       float64
	Mean      float64
	Median    float64
	Std       float64
	Count     int
	NullCount int
}

// ValueCount is one observed categorical value with its table count.
type ValueCount struct {
	Value string
	Count int
}

// Availability counts tables on each side of a boolean flag.
type Availability struct {
	True  int
	False int
}

// Info describes one filter: its help text plus the observed values for the
// given listing. Exactly one of Numeric, Values, Availability is set,
// matching the filter's type.
type Info struct {
	Name string
	Help string

	Numeric      *NumericSummary
	Values       []ValueCount
	Availability *Availability
}

// Describe returns usage help and observed values for a filter evaluated
// over the given listing. Unknown names are a configuration error.
func Describe(name string, rows []warehouse.TableInfo) (*Info, error) {
	var help string
	for _, d := range descriptions {
		if d.Name == name {
			help = d.Help
			break
		}
	}
	if help == "" {
		return nil, errors.Wrapf(errors.ErrConfiguration, "unknown filter %q", name)
	}

	info := &Info{Name: name, Help: help}
	switch name {
	case "n_responses", "n_categories", "n_participants", "n_items",
		"responses_per_participant", "responses_per_item", "density":
		info.Numeric = summarizeNumeric(rows, name)
	case "var":
		info.Values = countVariables(rows)
	case "longitudinal":
		info.Availability = countLongitudinal(rows)
	default:
		info.Values = countCategorical(rows, name)
	}
	return info, nil
}

func summarizeNumeric(rows []warehouse.TableInfo, name string) *NumericSummary {
	var vals []float64
	nulls := 0
	for i := range rows {
		if v := numericField(name, &rows[i]); v != nil {
			vals = append(vals, *v)
		} else {
			nulls++
		}
	}
	if len(vals) == 0 {
		return &NumericSummary{NullCount: nulls}
	}
	sort.Float64s(vals)

	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	var sq float64
	for _, v := range vals {
		sq += (v - mean) * (v - mean)
	}
	std := 0.0
	if len(vals) > 1 {
		std = math.Sqrt(sq / float64(len(vals)-1))
	}

	n := len(vals)
	median := vals[n/2]
	if n%2 == 0 {
		median = (vals[n/2-1] + vals[n/2]) / 2
	}

	return &NumericSummary{
		Min:       vals[0],
		Max:       vals[n-1],
		Mean:      mean,
		Median:    median,
		Std:       std,
		Count:     n,
		NullCount: nulls,
	}
}

// countCategorical counts whole cell values, not comma-split tokens, so
// compound tags show as published.
func countCategorical(rows []warehouse.TableInfo, name string) []ValueCount {
	counts := map[string]int{}
	for i := range rows {
		if cell := categoricalField(name, &rows[i]); cell != nil {
			counts[*cell]++
		}
	}
	return sortCounts(counts)
}

func countVariables(rows []warehouse.TableInfo) []ValueCount {
	counts := map[string]int{}
	for i := range rows {
		if rows[i].Variables == nil {
			continue
		}
		for _, v := range strings.Split(*rows[i].Variables, "|") {
			if v = strings.TrimSpace(v); v != "" {
				counts[v]++
			}
		}
	}
	return sortCounts(counts)
}

func countLongitudinal(rows []warehouse.TableInfo) *Availability {
	var a Availability
	for i := range rows {
		if rows[i].Longitudinal == nil {
			continue
		}
		if *rows[i].Longitudinal {
			a.True++
		} else {
			a.False++
		}
	}
	return &a
}

// sortCounts orders by count descending, then value ascending for ties.
func sortCounts(counts map[string]int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datapages/irw-go/filter"
	"github.com/datapages/irw-go/internal/util"
)

// FilterCmd represents the filter command
var FilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Select table names by metadata criteria",
	Long: `filter — Select warehouse tables matching metadata criteria

All given criteria combine with AND. By default sparse matrices are
excluded (density 0.5-1); pass --no-density to disable that.

Examples:
  irw filter --min-responses 1000 --language eng
  irw filter --var rt --var cov_
  irw filter --construct-type "Affective/mental health" --longitudinal=true
  irw filter --license "CC BY 4.0" --no-density`,
	RunE: runFilter,
}

var (
	filterMinResponses float64
	filterMaxResponses float64
	filterMinItems     float64
	filterMaxItems     float64
	filterVars         []string
	filterConstruct    []string
	filterSample       []string
	filterLanguage     []string
	filterLicense      []string
	filterLongitudinal string
	filterNoDensity    bool
)

func init() {
	f := FilterCmd.Flags()
	f.Float64Var(&filterMinResponses, "min-responses", -1, "Minimum total response count")
	f.Float64Var(&filterMaxResponses, "max-responses", -1, "Maximum total response count")
	f.Float64Var(&filterMinItems, "min-items", -1, "Minimum item count")
	f.Float64Var(&filterMaxItems, "max-items", -1, "Maximum item count")
	f.StringArrayVar(&filterVars, "var", nil, "Required variable, exact or prefix like cov_ (repeatable, AND)")
	f.StringArrayVar(&filterConstruct, "construct-type", nil, "Construct category (repeatable, OR)")
	f.StringArrayVar(&filterSample, "sample", nil, "Sample type (repeatable, OR)")
	f.StringArrayVar(&filterLanguage, "language", nil, "Primary language (repeatable, OR)")
	f.StringArrayVar(&filterLicense, "license", nil, "License (repeatable, OR)")
	f.StringVar(&filterLongitudinal, "longitudinal", "", "true or false; empty disables the filter")
	f.BoolVar(&filterNoDensity, "no-density", false, "Disable the default density filter")
}

func buildSpec() (filter.Spec, error) {
	spec := filter.Default()
	if filterNoDensity {
		spec.Density = nil
	}
	spec.NResponses = rangeFromFlags(filterMinResponses, filterMaxResponses)
	spec.NItems = rangeFromFlags(filterMinItems, filterMaxItems)
	spec.Var = filterVars
	spec.ConstructType = filterConstruct
	spec.Sample = filterSample
	spec.Language = filterLanguage
	spec.License = filterLicense

	switch filterLongitudinal {
	case "":
	case "true":
		spec.Longitudinal = util.Ptr(true)
	case "false":
		spec.Longitudinal = util.Ptr(false)
	default:
		return filter.Spec{}, fmt.Errorf("--longitudinal must be true or false, got %q", filterLongitudinal)
	}
	return spec, nil
}

// rangeFromFlags maps the -1 flag sentinel to an open bound.
func rangeFromFlags(min, max float64) *filter.Range {
	if min < 0 && max < 0 {
		return nil
	}
	var r filter.Range
	if min >= 0 {
		r.Min = util.Ptr(min)
	}
	if max >= 0 {
		r.Max = util.Ptr(max)
	}
	return &r
}

func runFilter(cmd *cobra.Command, args []string) error {
	spec, err := buildSpec()
	if err != nil {
		return err
	}

	client, closer, err := newClient()
	if err != nil {
		return err
	}
	defer closer()

	names, err := client.Filter(context.Background(), spec)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No tables match the given criteria")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

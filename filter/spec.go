// Package filter selects table names from an enriched listing by named
// metadata predicates. All active predicates compose with logical AND.
package filter

import "github.com/datapages/irw-go/warehouse"

// Range is an inclusive numeric interval. A nil bound is unbounded on that
// side, so Between(nil, nil) passes every non-null value.
type Range struct {
	Min *float64
	Max *float64
}

// Exact returns a range matching exactly v.
func Exact(v float64) *Range {
	return &Range{Min: &v, Max: &v}
}

// Between returns an inclusive range. Pass nil for an open bound.
func Between(min, max *float64) *Range {
	return &Range{Min: min, Max: max}
}

// contains reports whether v falls inside the range.
func (r *Range) contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Spec is a filter configuration. Nil or empty fields disable the
// corresponding predicate; the zero Spec matches every table.
//
// Numeric predicates exclude rows whose metadata field is null. Categorical
// predicates match with OR semantics across the supplied values, splitting
// comma-delimited cells. Var matches with AND semantics over the
// pipe-delimited variables cell, where a token containing an underscore is a
// prefix match.
type Spec struct {
	NResponses              *Range
	NCategories             *Range
	NParticipants           *Range
	NItems                  *Range
	ResponsesPerParticipant *Range
	ResponsesPerItem        *Range
	Density                 *Range

	Var []string

	AgeRange        []string
	ChildAge        []string
	ConstructType   []string
	ConstructName   []string
	Sample          []string
	MeasurementTool []string
	ItemFormat      []string
	Language        []string

	Longitudinal *bool

	License []string
}

// Sparse matrices are excluded unless the caller clears Density.
const (
	DefaultDensityMin = 0.5
	DefaultDensityMax = 1.0
)

// Default returns the standard configuration: density restricted to
// [0.5, 1.0], everything else disabled.
func Default() Spec {
	return Spec{Density: Between(ptr(DefaultDensityMin), ptr(DefaultDensityMax))}
}

func ptr(v float64) *float64 { return &v }

// isDefaultDensity reports whether the range equals the built-in default,
// which controls the removed-rows warning.
func isDefaultDensity(r *Range) bool {
	return r != nil &&
		r.Min != nil && *r.Min == DefaultDensityMin &&
		r.Max != nil && *r.Max == DefaultDensityMax
}

// numericField maps a numeric filter name to its listing field.
func numericField(name string, info *warehouse.TableInfo) *float64 {
	switch name {
	case "n_responses":
		return info.NResponses
	case "n_categories":
		return info.NCategories
	case "n_participants":
		return info.NParticipants
	case "n_items":
		return info.NItems
	case "responses_per_participant":
		return info.ResponsesPerParticipant
	case "responses_per_item":
		return info.ResponsesPerItem
	case "density":
		return info.Density
	}
	return nil
}

// categoricalField maps a categorical filter name to its listing field.
func categoricalField(name string, info *warehouse.TableInfo) *string {
	switch name {
	case "age_range":
		return info.AgeRange
	case "child_age":
		return info.ChildAge
	case "construct_type":
		return info.ConstructType
	case "construct_name":
		return info.ConstructName
	case "sample":
		return info.Sample
	case "measurement_tool":
		return info.MeasurementTool
	case "item_format":
		return info.ItemFormat
	case "language":
		return info.Language
	case "license":
		return info.License
	}
	return nil
}

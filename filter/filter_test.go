package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/internal/util"
	"github.com/datapages/irw-go/warehouse"
)

func listingFixture() []warehouse.TableInfo {
	return []warehouse.TableInfo{
		{
			Name:          "anger",
			NResponses:    util.Ptr(1000.0),
			NItems:        util.Ptr(10.0),
			NCategories:   util.Ptr(5.0),
			Density:       util.Ptr(0.9),
			Longitudinal:  util.Ptr(false),
			ConstructType: util.Ptr("Affective/mental health"),
			Sample:        util.Ptr("Clinical, Educational"),
			Language:      util.Ptr("eng"),
			Variables:     util.Ptr("id|item|resp|rt|cov_age"),
			License:       util.Ptr("CC BY 4.0"),
		},
		{
			Name:          "mood_waves",
			NResponses:    util.Ptr(500.0),
			NItems:        util.Ptr(20.0),
			NCategories:   util.Ptr(2.0),
			Density:       util.Ptr(0.4),
			Longitudinal:  util.Ptr(true),
			ConstructType: util.Ptr("Affective/mental health"),
			Sample:        util.Ptr("Educational"),
			Language:      util.Ptr("eng"),
			Variables:     util.Ptr("id|item|resp|wave|cov_ses"),
			License:       util.Ptr("CC0"),
		},
		{
			Name:         "math_fluency",
			NResponses:   util.Ptr(20000.0),
			NItems:       util.Ptr(60.0),
			NCategories:  util.Ptr(2.0),
			Density:      util.Ptr(0.7),
			Longitudinal: util.Ptr(false),
			Sample:       util.Ptr("Educational"),
			Language:     util.Ptr("spa"),
			Variables:    util.Ptr("id|item|resp|wave"),
			License:      util.Ptr("CC BY 4.0"),
		},
		// All metadata null; passes only when every filter is disabled
		{Name: "bare_table"},
	}
}

func newObservedEngine(t *testing.T) (*Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	return NewEngine(zap.New(core).Sugar()), logs
}

func TestZeroSpecMatchesEverything(t *testing.T) {
	e := NewEngine(nil)
	names := e.Apply(listingFixture(), Spec{})
	assert.Equal(t, []string{"anger", "bare_table", "math_fluency", "mood_waves"}, names)
}

func TestDefaultSpecExcludesSparseAndWarns(t *testing.T) {
	e, logs := newObservedEngine(t)
	names := e.Apply(listingFixture(), Default())

	// mood_waves fails density 0.4; bare_table has null density
	assert.Equal(t, []string{"anger", "math_fluency"}, names)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "removed 2 dataset(s)")
	assert.Contains(t, logs.All()[0].Message, "disable")
}

func TestNonDefaultDensityDoesNotWarn(t *testing.T) {
	e, logs := newObservedEngine(t)
	e.Apply(listingFixture(), Spec{Density: Between(util.Ptr(0.8), nil)})
	assert.Zero(t, logs.Len())
}

func TestNumericExactAndRange(t *testing.T) {
	e := NewEngine(nil)

	names := e.Apply(listingFixture(), Spec{NResponses: Exact(500)})
	assert.Equal(t, []string{"mood_waves"}, names)

	names = e.Apply(listingFixture(), Spec{NResponses: Between(util.Ptr(1000.0), nil)})
	assert.Equal(t, []string{"anger", "math_fluency"}, names)

	names = e.Apply(listingFixture(), Spec{NItems: Between(nil, util.Ptr(25.0))})
	assert.Equal(t, []string{"anger", "mood_waves"}, names)
}

func TestOpenRangePassesAllNonNullRows(t *testing.T) {
	e := NewEngine(nil)
	names := e.Apply(listingFixture(), Spec{NResponses: Between(nil, nil)})
	assert.Equal(t, []string{"anger", "math_fluency", "mood_waves"}, names,
		"null rows must fail even an unbounded range")
}

func TestCategoricalORSplitsCommaCells(t *testing.T) {
	e := NewEngine(nil)

	names := e.Apply(listingFixture(), Spec{Sample: []string{"Clinical"}})
	assert.Equal(t, []string{"anger"}, names, "token inside comma-delimited cell must match")

	names = e.Apply(listingFixture(), Spec{Language: []string{"spa", "deu"}})
	assert.Equal(t, []string{"math_fluency"}, names)

	names = e.Apply(listingFixture(), Spec{ConstructType: []string{"Cognitive"}})
	assert.Empty(t, names)
}

func TestVarExactAndPrefix(t *testing.T) {
	e := NewEngine(nil)

	names := e.Apply(listingFixture(), Spec{Var: []string{"rt"}})
	assert.Equal(t, []string{"anger"}, names)

	names = e.Apply(listingFixture(), Spec{Var: []string{"cov_"}})
	assert.Equal(t, []string{"anger", "mood_waves"}, names,
		"underscore token is a prefix match")

	names = e.Apply(listingFixture(), Spec{Var: []string{"WAVE"}})
	assert.Equal(t, []string{"math_fluency", "mood_waves"}, names,
		"variable matching is case-insensitive")
}

func TestVarIsMonotonic(t *testing.T) {
	e := NewEngine(nil)
	wide := e.Apply(listingFixture(), Spec{Var: []string{"wave"}})
	narrow := e.Apply(listingFixture(), Spec{Var: []string{"wave", "cov_"}})

	assert.Subset(t, wide, narrow, "adding tokens must never grow the match set")
	assert.Equal(t, []string{"mood_waves"}, narrow)
}

func TestLongitudinalTriState(t *testing.T) {
	e := NewEngine(nil)

	names := e.Apply(listingFixture(), Spec{Longitudinal: util.Ptr(true)})
	assert.Equal(t, []string{"mood_waves"}, names)

	names = e.Apply(listingFixture(), Spec{Longitudinal: util.Ptr(false)})
	assert.Equal(t, []string{"anger", "math_fluency"}, names, "null flag fails both settings")
}

func TestLicenseFilter(t *testing.T) {
	e := NewEngine(nil)
	names := e.Apply(listingFixture(), Spec{License: []string{"CC BY 4.0"}})
	assert.Equal(t, []string{"anger", "math_fluency"}, names)
}

func TestFiltersComposeWithAND(t *testing.T) {
	e := NewEngine(nil)
	names := e.Apply(listingFixture(), Spec{
		NCategories: Exact(2),
		Var:         []string{"wave"},
		Language:    []string{"eng"},
	})
	assert.Equal(t, []string{"mood_waves"}, names)
}

func TestDescriptionsCatalog(t *testing.T) {
	ds := Descriptions()
	assert.Len(t, ds, 18)
	assert.Equal(t, "n_responses", ds[0].Name)
	assert.Equal(t, "license", ds[len(ds)-1].Name)
	for _, d := range ds {
		assert.NotEmpty(t, d.Help, d.Name)
	}
}

func TestDescribeNumeric(t *testing.T) {
	info, err := Describe("n_responses", listingFixture())
	require.NoError(t, err)
	require.NotNil(t, info.Numeric)

	assert.Equal(t, 500.0, info.Numeric.Min)
	assert.Equal(t, 20000.0, info.Numeric.Max)
	assert.Equal(t, 1000.0, info.Numeric.Median)
	assert.Equal(t, 3, info.Numeric.Count)
	assert.Equal(t, 1, info.Numeric.NullCount)
	assert.InDelta(t, 7166.67, info.Numeric.Mean, 0.01)
}

func TestDescribeCategoricalOrder(t *testing.T) {
	info, err := Describe("language", listingFixture())
	require.NoError(t, err)
	require.Len(t, info.Values, 2)
	assert.Equal(t, ValueCount{Value: "eng", Count: 2}, info.Values[0])
	assert.Equal(t, ValueCount{Value: "spa", Count: 1}, info.Values[1])
}

func TestDescribeVarCountsTokens(t *testing.T) {
	info, err := Describe("var", listingFixture())
	require.NoError(t, err)
	require.NotEmpty(t, info.Values)

	// id, item, resp appear in all three tables; ties break alphabetically
	assert.Equal(t, ValueCount{Value: "id", Count: 3}, info.Values[0])
	assert.Equal(t, ValueCount{Value: "item", Count: 3}, info.Values[1])
	assert.Equal(t, ValueCount{Value: "resp", Count: 3}, info.Values[2])
	assert.Equal(t, ValueCount{Value: "wave", Count: 2}, info.Values[3])
}

func TestDescribeLongitudinal(t *testing.T) {
	info, err := Describe("longitudinal", listingFixture())
	require.NoError(t, err)
	require.NotNil(t, info.Availability)
	assert.Equal(t, 1, info.Availability.True)
	assert.Equal(t, 2, info.Availability.False)
}

func TestDescribeUnknownFilter(t *testing.T) {
	_, err := Describe("not_a_filter", listingFixture())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
	assert.Contains(t, err.Error(), "not_a_filter")
}

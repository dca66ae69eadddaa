package reshape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapages/irw-go/errors"
	"github.com/datapages/irw-go/frame"
	"github.com/datapages/irw-go/internal/util"
)

func longFrame(rows ...[3]any) *frame.Frame {
	f := frame.New("id", "item", "resp")
	for _, r := range rows {
		f.MustAppendRow(toValue(r[0]), toValue(r[1]), toValue(r[2]))
	}
	return f
}

func toValue(v any) frame.Value {
	switch x := v.(type) {
	case nil:
		return frame.Null()
	case string:
		return frame.Str(x)
	case int:
		return frame.Num(float64(x))
	case float64:
		return frame.Num(x)
	}
	panic("unsupported fixture value")
}

func cell(t *testing.T, f *frame.Frame, row int, col string) frame.Value {
	t.Helper()
	require.True(t, f.HasColumn(col), "column %q", col)
	return f.Value(row, col)
}

func noteContaining(r *Report, substr string) bool {
	for _, n := range r.Notes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

func TestMissingColumnsNamed(t *testing.T) {
	c := NewConverter(nil)
	f := frame.New("id", "score")
	f.MustAppendRow(frame.Str("p1"), frame.Num(1))

	_, _, err := c.Long2Resp(f, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSchema))
	assert.Contains(t, err.Error(), "item")
	assert.Contains(t, err.Error(), "resp")
	assert.NotContains(t, err.Error(), "id,")
}

func TestDateColumnRejected(t *testing.T) {
	c := NewConverter(nil)
	f := frame.New("id", "item", "resp", "date")
	f.MustAppendRow(frame.Str("p1"), frame.Str("a"), frame.Num(1), frame.Str("2024-01-01"))

	_, _, err := c.Long2Resp(f, Options{})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))
}

func TestInvalidMethodRejected(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame([3]any{"p1", "a", 1})

	_, _, err := c.Long2Resp(f, Options{AggMethod: Method("average")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestRaterNote(t *testing.T) {
	c := NewConverter(nil)
	f := frame.New("id", "item", "resp", "rater")
	f.MustAppendRow(frame.Str("p1"), frame.Str("a"), frame.Num(1), frame.Str("r1"))
	f.MustAppendRow(frame.Str("p1"), frame.Str("b"), frame.Num(2), frame.Str("r2"))
	f.MustAppendRow(frame.Str("p2"), frame.Str("a"), frame.Num(3), frame.Str("r1"))

	_, report, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)
	assert.True(t, noteContaining(report, "2 unique raters"))
}

func TestBasicPivot(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{"p1", "a", 1},
		[3]any{"p1", "b", 2},
		[3]any{"p2", "a", 3},
	)

	wide, _, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "a", "b"}, wide.Columns())
	assert.Equal(t, 2, wide.NumRows())

	v, ok := cell(t, wide, 0, "a").Number()
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	assert.True(t, cell(t, wide, 1, "b").IsNull(), "absent pair pivots to null")
}

func TestItemPrefixHandling(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{"p1", "item_a", 1},
		[3]any{"p1", "b", 2},
	)

	wide, _, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "a", "b"}, wide.Columns(),
		"pre-prefixed items are not double-prefixed and the prefix never reaches output")
}

func TestRoundTripCellCount(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{"p1", "a", 1},
		[3]any{"p1", "b", 2},
		[3]any{"p2", "a", 3},
		[3]any{"p2", "b", 4},
		[3]any{"p3", "a", 5},
	)

	wide, _, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)

	filled := 0
	for _, col := range wide.Columns()[1:] {
		for _, v := range wide.Column(col) {
			if !v.IsNull() {
				filled++
			}
		}
	}
	assert.Equal(t, f.NumRows(), filled,
		"without duplicates or sparse ids, one wide cell per long row")
}

func TestIdempotenceWithFirst(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{"p1", "a", 1},
		[3]any{"p2", "a", 2},
	)

	once, _, err := c.Long2Resp(f, Options{AggMethod: MethodFirst})
	require.NoError(t, err)
	twice, _, err := c.Long2Resp(f, Options{AggMethod: MethodFirst})
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestWaveDefaultsToMostFrequent(t *testing.T) {
	c := NewConverter(nil)
	f := frame.New("id", "item", "resp", "wave")
	f.MustAppendRow(frame.Str("p1"), frame.Str("a"), frame.Num(1), frame.Num(1))
	f.MustAppendRow(frame.Str("p1"), frame.Str("b"), frame.Num(2), frame.Num(2))
	f.MustAppendRow(frame.Str("p2"), frame.Str("a"), frame.Num(3), frame.Num(2))

	wide, report, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)
	assert.True(t, noteContaining(report, "most frequent wave: 2"))
	assert.Equal(t, 2, wide.NumRows())
	assert.True(t, cell(t, wide, 0, "a").IsNull(), "wave 1 responses filtered out")
}

func TestWaveTieBreaksToFirstEncountered(t *testing.T) {
	c := NewConverter(nil)
	f := frame.New("id", "item", "resp", "wave")
	f.MustAppendRow(frame.Str("p1"), frame.Str("a"), frame.Num(1), frame.Num(3))
	f.MustAppendRow(frame.Str("p2"), frame.Str("a"), frame.Num(2), frame.Num(1))

	_, report, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)
	assert.True(t, noteContaining(report, "most frequent wave: 3"))
}

func TestAbsentWaveSkipsFiltering(t *testing.T) {
	c := NewConverter(nil)
	f := frame.New("id", "item", "resp", "wave")
	f.MustAppendRow(frame.Str("p1"), frame.Str("a"), frame.Num(1), frame.Num(1))
	f.MustAppendRow(frame.Str("p2"), frame.Str("a"), frame.Num(2), frame.Num(1))

	wide, report, err := c.Long2Resp(f, Options{Wave: util.Ptr("9")})
	require.NoError(t, err)
	assert.True(t, noteContaining(report, "wave 9 not found"))
	assert.Equal(t, 2, wide.NumRows(), "no rows dropped")
}

func TestCoercionFailureNoted(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{"p1", "a", "often"},
		[3]any{"p1", "b", 2},
	)

	wide, report, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)
	assert.True(t, noteContaining(report, "could not be converted"))
	assert.True(t, cell(t, wide, 0, "a").IsNull())
}

func TestMissingTokensAreNotCoercionFailures(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{"p1", "a", "NA"},
		[3]any{"p1", "b", 2},
	)

	_, report, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)
	assert.False(t, noteContaining(report, "could not be converted"))
}

func TestDensityBoundaryIsInclusive(t *testing.T) {
	c := NewConverter(nil)
	// Four distinct items; p2 answers exactly one, density 0.25
	f := longFrame(
		[3]any{"p1", "A", 1},
		[3]any{"p1", "B", 1},
		[3]any{"p1", "C", 1},
		[3]any{"p1", "D", 1},
		[3]any{"p2", "A", 1},
	)

	wide, report, err := c.Long2Resp(f, Options{IDDensityThreshold: util.Ptr(0.3)})
	require.NoError(t, err)
	assert.Equal(t, 1, wide.NumRows(), "density 0.25 below 0.3 drops the id")
	assert.True(t, noteContaining(report, "1 of 2 ids removed"))
	assert.True(t, noteContaining(report, "50.00%"))
	assert.True(t, noteContaining(report, "disable"))

	wide, _, err = c.Long2Resp(f, Options{IDDensityThreshold: util.Ptr(0.25)})
	require.NoError(t, err)
	assert.Equal(t, 2, wide.NumRows(), "density exactly at threshold is kept")
}

func TestDensityCountsDistinctItems(t *testing.T) {
	c := NewConverter(nil)
	// p2 has two responses but both for the same item; density is 1/4
	f := longFrame(
		[3]any{"p1", "A", 1},
		[3]any{"p1", "B", 1},
		[3]any{"p1", "C", 1},
		[3]any{"p1", "D", 1},
		[3]any{"p2", "A", 1},
		[3]any{"p2", "A", 2},
	)

	wide, _, err := c.Long2Resp(f, Options{IDDensityThreshold: util.Ptr(0.3)})
	require.NoError(t, err)
	assert.Equal(t, 1, wide.NumRows())
}

func TestDuplicateAggregation(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{1, "X", 2},
		[3]any{1, "X", 4},
	)

	wide, report, err := c.Long2Resp(f, Options{AggMethod: MethodMean})
	require.NoError(t, err)
	v, _ := cell(t, wide, 0, "X").Number()
	assert.Equal(t, 3.0, v)
	assert.True(t, noteContaining(report, `method "mean"`))

	wide, _, err = c.Long2Resp(f, Options{AggMethod: MethodFirst})
	require.NoError(t, err)
	v, _ = cell(t, wide, 0, "X").Number()
	assert.Equal(t, 2.0, v)
}

func TestMedianEvenCount(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{1, "X", 1},
		[3]any{1, "X", 2},
		[3]any{1, "X", 4},
		[3]any{1, "X", 10},
	)

	wide, _, err := c.Long2Resp(f, Options{AggMethod: MethodMedian})
	require.NoError(t, err)
	v, _ := cell(t, wide, 0, "X").Number()
	assert.Equal(t, 3.0, v)
}

func TestModeTieBreaksToFirstEncountered(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{1, "X", 5},
		[3]any{1, "X", 2},
		[3]any{1, "X", 2},
		[3]any{1, "X", 5},
	)

	wide, _, err := c.Long2Resp(f, Options{AggMethod: MethodMode})
	require.NoError(t, err)
	v, _ := cell(t, wide, 0, "X").Number()
	assert.Equal(t, 5.0, v)
}

func TestModeAllMissingYieldsMissing(t *testing.T) {
	c := NewConverter(nil)
	f := longFrame(
		[3]any{1, "X", nil},
		[3]any{1, "X", "NA"},
		[3]any{1, "Y", 1},
	)

	wide, _, err := c.Long2Resp(f, Options{AggMethod: MethodMode})
	require.NoError(t, err)
	assert.True(t, cell(t, wide, 0, "X").IsNull())
}

func TestNonEssentialColumnsDropped(t *testing.T) {
	c := NewConverter(nil)
	f := frame.New("id", "item", "resp", "rt", "cov_age")
	f.MustAppendRow(frame.Str("p1"), frame.Str("a"), frame.Num(1), frame.Num(320), frame.Num(9))

	wide, _, err := c.Long2Resp(f, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "a"}, wide.Columns())
}

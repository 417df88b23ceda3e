package contentcheck

import (
	"testing"

	"github.com/refdiff/refdiff/check/diffs"
	"github.com/refdiff/refdiff/check/fieldopt"
	"github.com/refdiff/refdiff/dataset"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return Options{SortBy: fieldopt.None(), Precision: DefaultPrecision}
}

func TestCheckRowCount(t *testing.T) {
	actual := dataset.MustNew(
		dataset.NewColumn("a", dataset.KindInt, []any{int64(1), int64(2)}),
	)
	expected := dataset.MustNew(
		dataset.NewColumn("a", dataset.KindInt, []any{int64(1), int64(2), int64(3)}),
	)

	d := diffs.New()
	ok, err := Check(actual, expected, defaultOptions(), d)
	require.NoError(t, err)
	require.False(t, ok)
	// A length mismatch short-circuits before any value comparison.
	require.Equal(t, []string{
		"Length check failed.",
		"Found 2 records, expected 3",
	}, d.Lines())
}

func TestCheckPrecision(t *testing.T) {
	actual := dataset.MustNew(
		dataset.NewColumn("x", dataset.KindFloat, []any{1.0001, 2.0001}),
	)
	expected := dataset.MustNew(
		dataset.NewColumn("x", dataset.KindFloat, []any{1.0002, 2.0002}),
	)

	t.Run("coarse precision agrees", func(t *testing.T) {
		opts := defaultOptions()
		opts.Precision = 3
		d := diffs.New()
		ok, err := Check(actual, expected, opts, d)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 0, d.Len())
	})

	t.Run("fine precision differs", func(t *testing.T) {
		d := diffs.New()
		ok, err := Check(actual, expected, defaultOptions(), d)
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, []string{
			"Contents check failed.",
			"Column values differ: x",
			"From row 1: [1.000100, 2.000100] != [1.000200, 2.000200]",
		}, d.Lines())
	})
}

func TestCheckNullEquality(t *testing.T) {
	actual := dataset.MustNew(
		dataset.NewColumn("a", dataset.KindString, []any{"x", nil}),
	)
	expected := actual.Clone()

	d := diffs.New()
	ok, err := Check(actual, expected, defaultOptions(), d)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckSortBy(t *testing.T) {
	actual := dataset.MustNew(
		dataset.NewColumn("id", dataset.KindInt, []any{int64(2), int64(1)}),
		dataset.NewColumn("v", dataset.KindString, []any{"b", "a"}),
	)
	expected := dataset.MustNew(
		dataset.NewColumn("id", dataset.KindInt, []any{int64(1), int64(2)}),
		dataset.NewColumn("v", dataset.KindString, []any{"a", "b"}),
	)

	t.Run("unsorted rows differ", func(t *testing.T) {
		d := diffs.New()
		ok, err := Check(actual, expected, defaultOptions(), d)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("sorting aligns the rows", func(t *testing.T) {
		opts := defaultOptions()
		opts.SortBy = fieldopt.Fields("id")
		d := diffs.New()
		ok, err := Check(actual, expected, opts, d)
		require.NoError(t, err)
		require.True(t, ok)

		// The caller's dataset keeps its original order.
		col, _ := actual.Column("id")
		require.Equal(t, int64(2), col.Value(0))
	})

	t.Run("sorting on a missing column is reported", func(t *testing.T) {
		opts := defaultOptions()
		opts.SortBy = fieldopt.Fields("id")
		opts.Missing = map[string]struct{}{"id": {}}
		opts.CheckData = fieldopt.None()
		d := diffs.New()
		ok, err := Check(actual, expected, opts, d)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []string{"Cannot sort on missing columns"}, d.Lines())
	})
}

func TestCheckCondition(t *testing.T) {
	actual := dataset.MustNew(
		dataset.NewColumn("id", dataset.KindInt, []any{int64(1), int64(2), int64(3)}),
		dataset.NewColumn("v", dataset.KindString, []any{"a", "DIFFERS", "c"}),
	)
	expected := dataset.MustNew(
		dataset.NewColumn("id", dataset.KindInt, []any{int64(1), int64(2), int64(3)}),
		dataset.NewColumn("v", dataset.KindString, []any{"a", "b", "c"}),
	)

	opts := defaultOptions()
	opts.Condition = func(ds *dataset.Dataset) ([]bool, error) {
		col, ok := ds.Column("id")
		require.True(t, ok)
		mask := make([]bool, col.Len())
		for i := range mask {
			mask[i] = col.Value(i) != int64(2)
		}
		return mask, nil
	}

	d := diffs.New()
	ok, err := Check(actual, expected, opts, d)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckMissingColumnsExcluded(t *testing.T) {
	actual := dataset.MustNew(
		dataset.NewColumn("a", dataset.KindInt, []any{int64(1)}),
	)
	expected := dataset.MustNew(
		dataset.NewColumn("a", dataset.KindInt, []any{int64(1)}),
		dataset.NewColumn("b", dataset.KindString, []any{"x"}),
	)

	opts := defaultOptions()
	opts.Missing = map[string]struct{}{"b": {}}
	d := diffs.New()
	ok, err := Check(actual, expected, opts, d)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRoundTo(t *testing.T) {
	for _, tc := range []struct {
		desc      string
		input     float64
		precision int
		expected  float64
	}{
		{desc: "rounds down", input: 1.0001, precision: 3, expected: 1.0},
		{desc: "rounds up", input: 1.2345678, precision: 6, expected: 1.234568},
		{desc: "half even down", input: 0.125, precision: 2, expected: 0.12},
		{desc: "already exact", input: 2.5, precision: 6, expected: 2.5},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			require.InDelta(t, tc.expected, roundTo(tc.input, tc.precision), 1e-12)
		})
	}
}

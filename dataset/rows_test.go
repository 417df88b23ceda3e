package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortBy(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		columns  []*Column
		fields   []string
		expected map[string][]any
	}{
		{
			desc: "single key ascending",
			columns: []*Column{
				NewColumn("id", KindInt, []any{int64(3), int64(1), int64(2)}),
				NewColumn("name", KindString, []any{"c", "a", "b"}),
			},
			fields: []string{"id"},
			expected: map[string][]any{
				"id":   {int64(1), int64(2), int64(3)},
				"name": {"a", "b", "c"},
			},
		},
		{
			desc: "left to right tie break",
			columns: []*Column{
				NewColumn("grp", KindString, []any{"b", "a", "b", "a"}),
				NewColumn("id", KindInt, []any{int64(2), int64(2), int64(1), int64(1)}),
			},
			fields: []string{"grp", "id"},
			expected: map[string][]any{
				"grp": {"a", "a", "b", "b"},
				"id":  {int64(1), int64(2), int64(1), int64(2)},
			},
		},
		{
			desc: "nulls sort last",
			columns: []*Column{
				NewColumn("id", KindInt, []any{nil, int64(2), int64(1)}),
			},
			fields: []string{"id"},
			expected: map[string][]any{
				"id": {int64(1), int64(2), nil},
			},
		},
		{
			desc: "stable for equal keys",
			columns: []*Column{
				NewColumn("grp", KindString, []any{"a", "a", "a"}),
				NewColumn("seq", KindInt, []any{int64(1), int64(2), int64(3)}),
			},
			fields: []string{"grp"},
			expected: map[string][]any{
				"grp": {"a", "a", "a"},
				"seq": {int64(1), int64(2), int64(3)},
			},
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			ds := MustNew(tc.columns...)
			require.NoError(t, ds.SortBy(tc.fields))
			for name, cells := range tc.expected {
				col, ok := ds.Column(name)
				require.True(t, ok)
				for i, expected := range cells {
					require.Equal(t, expected, col.Value(i), "column %s row %d", name, i)
				}
			}
		})
	}

	t.Run("NaN keys sort with nulls last", func(t *testing.T) {
		ds := MustNew(NewColumn("x", KindFloat, []any{math.NaN(), 2.5, nil, 1.5}))
		require.NoError(t, ds.SortBy([]string{"x"}))
		col, ok := ds.Column("x")
		require.True(t, ok)
		require.Equal(t, 1.5, col.Value(0))
		require.Equal(t, 2.5, col.Value(1))
		require.True(t, col.IsNull(2))
		require.True(t, col.IsNull(3))
	})

	t.Run("unknown sort column", func(t *testing.T) {
		ds := MustNew(NewColumn("a", KindInt, []any{int64(1)}))
		require.ErrorContains(t, ds.SortBy([]string{"nope"}), `cannot sort on unknown column "nope"`)
	})
}

func TestFilterRows(t *testing.T) {
	ds := MustNew(
		NewColumn("id", KindInt, []any{int64(1), int64(2), int64(3)}),
		NewColumn("keep", KindBool, []any{true, false, true}),
	)

	filtered, err := ds.FilterRows([]bool{true, false, true})
	require.NoError(t, err)
	require.Equal(t, 2, filtered.NumRows())
	col, _ := filtered.Column("id")
	require.Equal(t, int64(1), col.Value(0))
	require.Equal(t, int64(3), col.Value(1))

	// The source dataset is untouched.
	require.Equal(t, 3, ds.NumRows())

	_, err = ds.FilterRows([]bool{true})
	require.ErrorContains(t, err, "row mask has 1 entries for a dataset of 3 rows")
}

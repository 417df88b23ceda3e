package fieldopt

import (
	"testing"

	"github.com/refdiff/refdiff/dataset"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	return dataset.MustNew(
		dataset.NewColumn("a", dataset.KindInt, []any{int64(1)}),
		dataset.NewColumn("b", dataset.KindString, []any{"x"}),
		dataset.NewColumn("c", dataset.KindFloat, []any{1.5}),
	)
}

func TestResolve(t *testing.T) {
	ds := testDataset(t)
	for _, tc := range []struct {
		desc     string
		flag     Flag
		expected []string
	}{
		{desc: "zero value selects all", flag: Flag{}, expected: []string{"a", "b", "c"}},
		{desc: "all", flag: All(), expected: []string{"a", "b", "c"}},
		{desc: "none", flag: None(), expected: nil},
		{
			desc:     "explicit list kept as given, unvalidated",
			flag:     Fields("c", "a", "zzz"),
			expected: []string{"c", "a", "zzz"},
		},
		{
			desc: "computed",
			flag: Computed(func(ds *dataset.Dataset) []string {
				return ds.ColumnNames()[:1]
			}),
			expected: []string{"a"},
		},
		{desc: "all except", flag: AllExcept("b"), expected: []string{"a", "c"}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.expected, tc.flag.Resolve(ds))
		})
	}
}

func TestParse(t *testing.T) {
	ds := testDataset(t)
	for _, tc := range []struct {
		desc        string
		input       string
		expected    []string
		expectedErr string
	}{
		{desc: "empty means all", input: "", expected: []string{"a", "b", "c"}},
		{desc: "all", input: "all", expected: []string{"a", "b", "c"}},
		{desc: "none", input: "none", expected: nil},
		{desc: "single field", input: "b", expected: []string{"b"}},
		{desc: "field list", input: "b, a", expected: []string{"b", "a"}},
		{desc: "empty field name", input: "a,,b", expectedErr: "empty field name"},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			flag, err := Parse(tc.input)
			if tc.expectedErr != "" {
				require.ErrorContains(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, flag.Resolve(ds))
		})
	}
}

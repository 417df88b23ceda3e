package contentcheck

import (
	"testing"
	"time"

	"github.com/refdiff/refdiff/dataset"
	"github.com/stretchr/testify/require"
)

func intColumn(cells ...any) *dataset.Column {
	return dataset.NewColumn("col", dataset.KindInt, cells)
}

func TestSummarize(t *testing.T) {
	for _, tc := range []struct {
		desc      string
		actual    *dataset.Column
		expected  *dataset.Column
		precision int
		result    string
	}{
		{
			desc:     "single differing row",
			actual:   intColumn(int64(1), int64(2), int64(3)),
			expected: intColumn(int64(1), int64(9), int64(3)),
			result:   "From row 2: [2] != [9]",
		},
		{
			desc:     "run ends at first re-agreement",
			actual:   intColumn(int64(0), int64(1), int64(2), int64(5), int64(4)),
			expected: intColumn(int64(9), int64(8), int64(7), int64(5), int64(4)),
			result:   "From row 1: [0, 1, 2] != [9, 8, 7]",
		},
		{
			desc: "window truncates a long run",
			actual: intColumn(
				int64(0), int64(1), int64(2), int64(3), int64(4), int64(5),
				int64(6), int64(7), int64(8), int64(9), int64(10), int64(11),
			),
			expected: intColumn(
				int64(20), int64(21), int64(22), int64(23), int64(24), int64(25),
				int64(26), int64(27), int64(28), int64(29), int64(30), int64(31),
			),
			result: "From row 1: [0, 1, 2, 3, 4, 5, 6, 7, 8, 9 ...] != [20, 21, 22, 23, 24, 25, 26, 27, 28, 29 ...]",
		},
		{
			desc: "agreement at the window edge suppresses the ellipsis",
			actual: intColumn(
				int64(0), int64(1), int64(2), int64(3), int64(4), int64(5),
				int64(6), int64(7), int64(8), int64(9), int64(99),
			),
			expected: intColumn(
				int64(20), int64(21), int64(22), int64(23), int64(24), int64(25),
				int64(26), int64(27), int64(28), int64(29), int64(99),
			),
			result: "From row 1: [0, 1, 2, 3, 4, 5, 6, 7, 8, 9] != [20, 21, 22, 23, 24, 25, 26, 27, 28, 29]",
		},
		{
			desc:     "null renders as null",
			actual:   intColumn(nil, int64(2)),
			expected: intColumn(int64(1), int64(2)),
			result:   "From row 1: [null] != [1]",
		},
		{
			desc: "strings quoted",
			actual: dataset.NewColumn("col", dataset.KindString,
				[]any{"alpha", "bravo"}),
			expected: dataset.NewColumn("col", dataset.KindString,
				[]any{"alpha", "BRAVO"}),
			result: `From row 2: ["bravo"] != ["BRAVO"]`,
		},
		{
			desc: "floats rendered at precision",
			actual: dataset.NewColumn("col", dataset.KindFloat,
				[]any{1.5}),
			expected: dataset.NewColumn("col", dataset.KindFloat,
				[]any{1.25}),
			precision: 3,
			result:    "From row 1: [1.500] != [1.250]",
		},
		{
			desc: "timestamps rendered without zone",
			actual: dataset.NewColumn("col", dataset.KindTime,
				[]any{time.Date(2021, 6, 1, 12, 30, 0, 0, time.UTC)}),
			expected: dataset.NewColumn("col", dataset.KindTime,
				[]any{time.Date(2021, 6, 2, 12, 30, 0, 0, time.UTC)}),
			result: "From row 1: [2021-06-01 12:30:00] != [2021-06-02 12:30:00]",
		},
		{
			desc:     "mismatched kinds with agreeing cells",
			actual:   dataset.NewColumn("col", dataset.KindInt, []any{int64(1)}),
			expected: dataset.NewColumn("col", dataset.KindFloat, []any{int64(1)}),
			result:   "Different types",
		},
		{
			desc:     "identical columns fall through",
			actual:   intColumn(int64(1), int64(2)),
			expected: intColumn(int64(1), int64(2)),
			result:   "But mysteriously appear to be identical!",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			precision := tc.precision
			if precision == 0 {
				precision = DefaultPrecision
			}
			require.Equal(t, tc.result, summarize(tc.actual, tc.expected, precision))
		})
	}
}

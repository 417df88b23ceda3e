package dataset

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// SortBy stable-sorts the dataset's rows ascending by the given fields,
// breaking ties left to right. The receiver is mutated in place; the
// comparison engine only calls this on working copies.
func (d *Dataset) SortBy(fields []string) error {
	keys := make([]*Column, len(fields))
	for i, f := range fields {
		col, ok := d.Column(f)
		if !ok {
			return errors.Newf("cannot sort on unknown column %q", f)
		}
		keys[i] = col
	}
	n := d.NumRows()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		for _, key := range keys {
			if c := compareValues(key.kind, key.cells[idx[i]], key.cells[idx[j]]); c != 0 {
				return c < 0
			}
		}
		return false
	})
	for _, col := range d.columns {
		cells := make([]any, n)
		for i, from := range idx {
			cells[i] = col.cells[from]
		}
		col.cells = cells
	}
	return nil
}

// FilterRows returns a new dataset holding only the rows where mask is
// true. Row indices in the result are contiguous from zero.
func (d *Dataset) FilterRows(mask []bool) (*Dataset, error) {
	if len(mask) != d.NumRows() {
		return nil, errors.Newf(
			"row mask has %d entries for a dataset of %d rows", len(mask), d.NumRows(),
		)
	}
	columns := make([]*Column, len(d.columns))
	for i, col := range d.columns {
		cells := make([]any, 0, len(col.cells))
		for row, keep := range mask {
			if keep {
				cells = append(cells, col.cells[row])
			}
		}
		columns[i] = &Column{name: col.name, kind: col.kind, cells: cells}
	}
	return &Dataset{columns: columns}, nil
}

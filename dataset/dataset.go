// Package dataset implements the in-memory table model used by the
// comparison engine: an ordered sequence of named, equal-length columns
// of typed, null-aware values.
package dataset

import (
	"bytes"
	"math"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// Kind is the declared element type of a Column. It is fixed once the
// column is constructed.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindBool
	KindTime
	KindBytes
	KindGeometry
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "real"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "timestamp"
	case KindBytes:
		return "bytes"
	case KindGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Column is a named, typed sequence of cells. Each cell holds a
// kind-appropriate value (int64, float64, string, bool, time.Time,
// []byte or geom.T) or nil for a missing value.
type Column struct {
	name  string
	kind  Kind
	cells []any
}

func NewColumn(name string, kind Kind, cells []any) *Column {
	return &Column{name: name, kind: kind, cells: cells}
}

func (c *Column) Name() string { return c.name }

func (c *Column) Kind() Kind { return c.kind }

func (c *Column) Len() int { return len(c.cells) }

func (c *Column) Value(i int) any { return c.cells[i] }

func (c *Column) SetValue(i int, v any) { c.cells[i] = v }

func (c *Column) IsNull(i int) bool { return isMissing(c.cells[i]) }

// Equal reports whether two columns hold elementwise equal values under
// the null-aware rule. Columns of different lengths are never equal.
func (c *Column) Equal(o *Column) bool {
	if c.Len() != o.Len() {
		return false
	}
	for i := range c.cells {
		if !ValueEqual(c.kind, c.cells[i], o.cells[i]) {
			return false
		}
	}
	return true
}

func (c *Column) clone() *Column {
	cells := make([]any, len(c.cells))
	copy(cells, c.cells)
	return &Column{name: c.name, kind: c.kind, cells: cells}
}

// Dataset is an ordered collection of equal-length columns with unique
// names. Column order is significant for ordering checks only.
type Dataset struct {
	columns []*Column
}

// New builds a dataset, validating that column names are unique and all
// columns have the same length.
func New(columns ...*Column) (*Dataset, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, ok := seen[col.name]; ok {
			return nil, errors.Newf("duplicate column name %q", col.name)
		}
		seen[col.name] = struct{}{}
		if col.Len() != columns[0].Len() {
			return nil, errors.Newf(
				"column %q has %d rows, expected %d",
				col.name,
				col.Len(),
				columns[0].Len(),
			)
		}
	}
	return &Dataset{columns: columns}, nil
}

// MustNew is New for statically-known datasets, panicking on error.
func MustNew(columns ...*Column) *Dataset {
	d, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Dataset) NumColumns() int { return len(d.columns) }

func (d *Dataset) NumRows() int {
	if len(d.columns) == 0 {
		return 0
	}
	return d.columns[0].Len()
}

func (d *Dataset) Columns() []*Column { return d.columns }

func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.name
	}
	return names
}

func (d *Dataset) Column(name string) (*Column, bool) {
	for _, col := range d.columns {
		if col.name == name {
			return col, true
		}
	}
	return nil, false
}

func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// Clone deep-copies the dataset. The comparison engine clones before any
// sort or filter step so that caller-owned datasets are never mutated.
func (d *Dataset) Clone() *Dataset {
	columns := make([]*Column, len(d.columns))
	for i, col := range d.columns {
		columns[i] = col.clone()
	}
	return &Dataset{columns: columns}
}

// Project returns a copy of the dataset restricted to exactly the given
// fields, in the given order.
func (d *Dataset) Project(fields []string) (*Dataset, error) {
	columns := make([]*Column, 0, len(fields))
	for _, f := range fields {
		col, ok := d.Column(f)
		if !ok {
			return nil, errors.Newf("no column %q in dataset", f)
		}
		columns = append(columns, col.clone())
	}
	return &Dataset{columns: columns}, nil
}

// isMissing reports whether a cell holds the missing marker. Float NaN
// is a spelling of missing, not a comparable value.
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

// ValueEqual reports whether two cells of the given kind hold equal
// values. Two missing values are equal to each other; a missing value is
// never equal to a concrete one.
func ValueEqual(kind Kind, a, b any) bool {
	if isMissing(a) || isMissing(b) {
		return isMissing(a) && isMissing(b)
	}
	switch kind {
	case KindTime:
		at, aok := a.(time.Time)
		bt, bok := b.(time.Time)
		return aok && bok && at.Equal(bt)
	case KindBytes:
		ab, aok := a.([]byte)
		bb, bok := b.([]byte)
		return aok && bok && bytes.Equal(ab, bb)
	case KindGeometry:
		ab, aok := geomBytes(a)
		bb, bok := geomBytes(b)
		return aok && bok && bytes.Equal(ab, bb)
	default:
		return a == b
	}
}

// compareValues orders two cells of the same kind. Missing values sort
// after all concrete values.
func compareValues(kind Kind, a, b any) int {
	switch {
	case isMissing(a) && isMissing(b):
		return 0
	case isMissing(a):
		return 1
	case isMissing(b):
		return -1
	}
	switch kind {
	case KindInt:
		av, _ := a.(int64)
		bv, _ := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case KindFloat:
		av, _ := a.(float64)
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case KindString:
		av, _ := a.(string)
		bv, _ := b.(string)
		return strings.Compare(av, bv)
	case KindBool:
		av, _ := a.(bool)
		bv, _ := b.(bool)
		switch {
		case !av && bv:
			return -1
		case av && !bv:
			return 1
		}
		return 0
	case KindTime:
		av, _ := a.(time.Time)
		bv, _ := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case KindBytes:
		av, _ := a.([]byte)
		bv, _ := b.([]byte)
		return bytes.Compare(av, bv)
	case KindGeometry:
		av, _ := geomBytes(a)
		bv, _ := geomBytes(b)
		return bytes.Compare(av, bv)
	}
	return 0
}

// geomBytes canonicalizes a geometry cell to its WKB encoding, which
// defines both equality and ordering for geometry columns.
func geomBytes(v any) ([]byte, bool) {
	g, ok := v.(geom.T)
	if !ok {
		return nil, false
	}
	b, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return nil, false
	}
	return b, true
}

// Package fieldopt implements the field-selection flags accepted by the
// comparison entry points. A flag has one of four shapes: use all fields
// (the default), use no fields, use an explicit ordered list of fields,
// or compute the field list from the dataset being checked.
package fieldopt

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/refdiff/refdiff/dataset"
)

type shape int

const (
	shapeAll shape = iota
	shapeNone
	shapeFields
	shapeComputed
)

// Flag selects a subset of a dataset's fields. The zero value selects
// all fields.
type Flag struct {
	shape  shape
	fields []string
	fn     func(*dataset.Dataset) []string
}

// All selects every field of the dataset, in the dataset's order.
func All() Flag { return Flag{shape: shapeAll} }

// None selects no fields, disabling the check the flag configures.
func None() Flag { return Flag{shape: shapeNone} }

// Fields selects exactly the named fields, in the given order. The names
// are not validated here; downstream consumers handle unknown names.
func Fields(names ...string) Flag {
	return Flag{shape: shapeFields, fields: names}
}

// Computed derives the field list from the dataset at resolution time.
// fn must be pure.
func Computed(fn func(*dataset.Dataset) []string) Flag {
	return Flag{shape: shapeComputed, fn: fn}
}

// AllExcept selects every field of the dataset apart from the named
// ones, preserving the dataset's field order.
func AllExcept(names ...string) Flag {
	excluded := make(map[string]struct{}, len(names))
	for _, name := range names {
		excluded[name] = struct{}{}
	}
	return Computed(func(ds *dataset.Dataset) []string {
		var fields []string
		for _, name := range ds.ColumnNames() {
			if _, ok := excluded[name]; !ok {
				fields = append(fields, name)
			}
		}
		return fields
	})
}

// IsNone reports whether the flag disables its check entirely.
func (f Flag) IsNone() bool { return f.shape == shapeNone }

// Resolve turns the flag into a concrete ordered field list for ds.
func (f Flag) Resolve(ds *dataset.Dataset) []string {
	switch f.shape {
	case shapeNone:
		return nil
	case shapeFields:
		return f.fields
	case shapeComputed:
		return f.fn(ds)
	default:
		return ds.ColumnNames()
	}
}

// Parse maps the textual flag spellings used by the CLI and config
// files: "all" or the empty string select all fields, "none" selects no
// fields, and anything else is a comma-separated explicit field list.
func Parse(s string) (Flag, error) {
	switch strings.TrimSpace(s) {
	case "", "all":
		return All(), nil
	case "none":
		return None(), nil
	}
	parts := strings.Split(s, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Flag{}, errors.Newf("empty field name in %q", s)
		}
		fields = append(fields, p)
	}
	return Fields(fields...), nil
}

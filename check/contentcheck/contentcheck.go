// Package contentcheck compares row counts and cell values between an
// actual dataset and a golden reference dataset, under precision,
// field-selection, sort and filter configuration.
package contentcheck

import (
	"github.com/cockroachdb/apd/v3"
	"github.com/refdiff/refdiff/check/diffs"
	"github.com/refdiff/refdiff/check/fieldopt"
	"github.com/refdiff/refdiff/dataset"
)

// DefaultPrecision is the number of decimal digits floating-point cells
// are rounded to before comparison when the caller does not say
// otherwise.
const DefaultPrecision = 6

// Condition selects the rows to compare: it returns one boolean per row
// of the dataset it is applied to.
type Condition func(*dataset.Dataset) ([]bool, error)

type Options struct {
	CheckData fieldopt.Flag
	SortBy    fieldopt.Flag
	Condition Condition
	Precision int

	// Missing holds columns the schema phase found absent from the
	// actual dataset; they are excluded from value checks and block
	// sorting when named as sort fields.
	Missing map[string]struct{}

	ActualPath   string
	ExpectedPath string
}

// Check runs the row-count and value checks, appending messages to d.
// It reports whether the content phase passed. Sorting and filtering
// operate on working copies; the caller's datasets are never mutated.
func Check(actual, expected *dataset.Dataset, opts Options, d *diffs.Diffs) (bool, error) {
	if sortFields := opts.SortBy.Resolve(expected); len(sortFields) > 0 {
		if anyMissing(sortFields, opts.Missing) {
			d.Append("Cannot sort on missing columns")
		} else {
			actual = actual.Clone()
			expected = expected.Clone()
			if err := actual.SortBy(sortFields); err != nil {
				return false, err
			}
			if err := expected.SortBy(sortFields); err != nil {
				return false, err
			}
		}
	}

	if opts.Condition != nil {
		var err error
		if actual, err = filterByCondition(actual, opts.Condition); err != nil {
			return false, err
		}
		if expected, err = filterByCondition(expected, opts.Condition); err != nil {
			return false, err
		}
	}

	if actual.NumRows() != expected.NumRows() {
		d.Failure("Length check failed.", opts.ActualPath, opts.ExpectedPath)
		d.Appendf("Found %d records, expected %d", actual.NumRows(), expected.NumRows())
		return false, nil
	}

	fields := withoutMissing(opts.CheckData.Resolve(expected), opts.Missing)
	if len(fields) == 0 {
		return true, nil
	}
	actualProj, err := actual.Project(fields)
	if err != nil {
		return false, err
	}
	expectedProj, err := expected.Project(fields)
	if err != nil {
		return false, err
	}
	roundFloats(actualProj, opts.Precision)
	roundFloats(expectedProj, opts.Precision)

	var differing []int
	for i, expectedCol := range expectedProj.Columns() {
		if !actualProj.Columns()[i].Equal(expectedCol) {
			differing = append(differing, i)
		}
	}
	if len(differing) == 0 {
		return true, nil
	}
	d.Failure("Contents check failed.", opts.ActualPath, opts.ExpectedPath)
	for _, i := range differing {
		d.Appendf("Column values differ: %s", expectedProj.Columns()[i].Name())
		d.Append(summarize(actualProj.Columns()[i], expectedProj.Columns()[i], opts.Precision))
	}
	return false, nil
}

func filterByCondition(ds *dataset.Dataset, cond Condition) (*dataset.Dataset, error) {
	mask, err := cond(ds)
	if err != nil {
		return nil, err
	}
	return ds.FilterRows(mask)
}

func anyMissing(fields []string, missing map[string]struct{}) bool {
	for _, f := range fields {
		if _, ok := missing[f]; ok {
			return true
		}
	}
	return false
}

func withoutMissing(fields []string, missing map[string]struct{}) []string {
	out := fields[:0:0]
	for _, f := range fields {
		if _, ok := missing[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

var roundContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfEven
	return ctx
}()

// roundFloats rounds every non-null floating-point cell to precision
// decimal digits, half-even. Other kinds compare exactly and are left
// alone.
func roundFloats(ds *dataset.Dataset, precision int) {
	for _, col := range ds.Columns() {
		if col.Kind() != dataset.KindFloat {
			continue
		}
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			if f, ok := col.Value(i).(float64); ok {
				col.SetValue(i, roundTo(f, precision))
			}
		}
	}
}

func roundTo(f float64, precision int) float64 {
	var dec apd.Decimal
	if _, err := dec.SetFloat64(f); err != nil {
		return f
	}
	var rounded apd.Decimal
	if _, err := roundContext.Quantize(&rounded, &dec, int32(-precision)); err != nil {
		return f
	}
	out, err := rounded.Float64()
	if err != nil {
		return f
	}
	return out
}

// Package check compares an actual dataset against a golden reference
// dataset, sequencing schema, sort/filter, length and content checks
// into a single pass/fail outcome and an ordered message log.
package check

import (
	"strings"

	"github.com/refdiff/refdiff/check/contentcheck"
	"github.com/refdiff/refdiff/check/diffs"
	"github.com/refdiff/refdiff/check/fieldopt"
	"github.com/refdiff/refdiff/check/schemacheck"
	"github.com/refdiff/refdiff/dataset"
	"github.com/rs/zerolog"
)

type Opt func(*checkOpts)

type checkOpts struct {
	checkData    fieldopt.Flag
	checkTypes   fieldopt.Flag
	checkOrder   fieldopt.Flag
	checkExtra   fieldopt.Flag
	sortBy       fieldopt.Flag
	condition    contentcheck.Condition
	precision    int
	actualPath   string
	expectedPath string
	msgs         *diffs.Diffs
	logger       zerolog.Logger
}

// WithCheckData selects the fields whose cell values are compared.
func WithCheckData(f fieldopt.Flag) Opt {
	return func(o *checkOpts) {
		o.checkData = f
	}
}

// WithCheckTypes selects the fields whose presence and declared types
// are compared.
func WithCheckTypes(f fieldopt.Flag) Opt {
	return func(o *checkOpts) {
		o.checkTypes = f
	}
}

// WithCheckOrder selects the fields whose relative column ordering is
// compared.
func WithCheckOrder(f fieldopt.Flag) Opt {
	return func(o *checkOpts) {
		o.checkOrder = f
	}
}

// WithCheckExtraCols selects the fields of the actual dataset checked
// for not being unexpected extras.
func WithCheckExtraCols(f fieldopt.Flag) Opt {
	return func(o *checkOpts) {
		o.checkExtra = f
	}
}

// WithSortBy sorts working copies of both datasets by the selected
// fields before content comparison.
func WithSortBy(f fieldopt.Flag) Opt {
	return func(o *checkOpts) {
		o.sortBy = f
	}
}

// WithCondition filters both datasets to the rows the condition selects
// before content comparison.
func WithCondition(c contentcheck.Condition) Opt {
	return func(o *checkOpts) {
		o.condition = c
	}
}

// WithPrecision sets the number of decimal digits floating-point cells
// are rounded to before comparison.
func WithPrecision(p int) Opt {
	return func(o *checkOpts) {
		o.precision = p
	}
}

// WithPaths records the file paths the datasets were loaded from, for
// use in failure messages.
func WithPaths(actualPath, expectedPath string) Opt {
	return func(o *checkOpts) {
		o.actualPath = actualPath
		o.expectedPath = expectedPath
	}
}

// WithDiffs appends messages to an existing log instead of a fresh one,
// enabling aggregation across a batch.
func WithDiffs(d *diffs.Diffs) Opt {
	return func(o *checkOpts) {
		o.msgs = d
	}
}

func WithLogger(logger zerolog.Logger) Opt {
	return func(o *checkOpts) {
		o.logger = logger
	}
}

// Datasets compares actual against expected and returns a failure count
// (0 or 1) together with the message log. The schema and content phases
// both always run; the final verdict requires both to pass, so schema
// mismatches fail the comparison even when the content phase's field
// subsetting masks them.
func Datasets(actual, expected *dataset.Dataset, inOpts ...Opt) (int, *diffs.Diffs, error) {
	// Sorting is opt-in; every other flag defaults to all fields.
	opts := checkOpts{
		sortBy:    fieldopt.None(),
		precision: contentcheck.DefaultPrecision,
		logger:    zerolog.Nop(),
	}
	for _, applyOpt := range inOpts {
		applyOpt(&opts)
	}
	msgs := opts.msgs
	if msgs == nil {
		msgs = diffs.New()
	}

	schema := schemacheck.Check(actual, expected, opts.checkTypes, opts.checkOrder, opts.checkExtra)
	if !schema.OK() {
		msgs.Failure("Column check failed.", opts.actualPath, opts.expectedPath)
		if len(schema.Missing) > 0 {
			msgs.Appendf("Missing columns: %s", strings.Join(schema.Missing, ", "))
		}
		if len(schema.Extra) > 0 {
			msgs.Appendf("Extra columns: %s", strings.Join(schema.Extra, ", "))
		}
		for _, wt := range schema.WrongTypes {
			msgs.Appendf("Wrong column type %s (%s, expected %s)", wt.Name, wt.Actual, wt.Expected)
		}
		if schema.WrongOrder {
			msgs.Appendf("Wrong column ordering: %s", schema.OrderInfo)
		}
	}

	contentOK, err := contentcheck.Check(actual, expected, contentcheck.Options{
		CheckData:    opts.checkData,
		SortBy:       opts.sortBy,
		Condition:    opts.condition,
		Precision:    opts.precision,
		Missing:      schema.MissingSet(),
		ActualPath:   opts.actualPath,
		ExpectedPath: opts.expectedPath,
	}, msgs)
	if err != nil {
		return 0, msgs, err
	}

	if contentOK && schema.OK() {
		opts.logger.Debug().Msg("datasets match")
		return 0, msgs, nil
	}
	opts.logger.Debug().
		Bool("schema_ok", schema.OK()).
		Bool("content_ok", contentOK).
		Msg("datasets differ")
	return 1, msgs, nil
}

// Package filecheck drives golden-file comparison over pairs of dataset
// files, accumulating failures across the whole batch so a single bad
// file never aborts the remaining pairs.
package filecheck

import (
	"github.com/cockroachdb/errors"
	"github.com/refdiff/refdiff/check"
	"github.com/refdiff/refdiff/check/diffs"
	"github.com/refdiff/refdiff/dataset"
	"github.com/refdiff/refdiff/parquetio"
	"github.com/rs/zerolog"
)

// Loader reads a dataset from a file. The default reads GeoParquet via
// parquetio.
type Loader func(path string) (*dataset.Dataset, error)

type Opt func(*fileOpts)

type fileOpts struct {
	loader    Loader
	checkOpts []check.Opt
	msgs      *diffs.Diffs
	logger    zerolog.Logger
}

func WithLoader(l Loader) Opt {
	return func(o *fileOpts) {
		o.loader = l
	}
}

// WithLoadOptions keeps the default loader but passes extra options to
// every read.
func WithLoadOptions(loadOpts ...parquetio.Option) Opt {
	return WithLoader(func(path string) (*dataset.Dataset, error) {
		return parquetio.ReadFile(path, loadOpts...)
	})
}

// WithCheckOpts forwards options to every per-pair dataset comparison.
func WithCheckOpts(checkOpts ...check.Opt) Opt {
	return func(o *fileOpts) {
		o.checkOpts = append(o.checkOpts, checkOpts...)
	}
}

// WithDiffs appends messages to an existing log instead of a fresh one.
func WithDiffs(d *diffs.Diffs) Opt {
	return func(o *fileOpts) {
		o.msgs = d
	}
}

func WithLogger(logger zerolog.Logger) Opt {
	return func(o *fileOpts) {
		o.logger = logger
	}
}

func makeOpts(inOpts []Opt) fileOpts {
	opts := fileOpts{
		loader: func(path string) (*dataset.Dataset, error) {
			return parquetio.ReadFile(path)
		},
		logger: zerolog.Nop(),
	}
	for _, applyOpt := range inOpts {
		applyOpt(&opts)
	}
	if opts.msgs == nil {
		opts.msgs = diffs.New()
	}
	return opts
}

// Pair loads and compares a single actual/expected file pair.
func Pair(actualPath, expectedPath string, inOpts ...Opt) (int, *diffs.Diffs, error) {
	opts := makeOpts(inOpts)
	failures, err := comparePair(actualPath, expectedPath, opts)
	return failures, opts.msgs, err
}

// All compares each actual/expected file pair in turn and returns the
// total failure count with the combined log. A load or compare error on
// one pair is converted into a single counted failure naming both paths
// and the error, and iteration continues with the next pair.
func All(actualPaths, expectedPaths []string, inOpts ...Opt) (int, *diffs.Diffs, error) {
	if len(actualPaths) != len(expectedPaths) {
		return 0, nil, errors.Newf(
			"%d actual paths against %d expected paths",
			len(actualPaths),
			len(expectedPaths),
		)
	}
	opts := makeOpts(inOpts)
	var failures int
	for i := range actualPaths {
		n, err := comparePair(actualPaths[i], expectedPaths[i], opts)
		if err != nil {
			opts.logger.Warn().
				Str("actual", actualPaths[i]).
				Str("expected", expectedPaths[i]).
				Err(err).
				Msg("error comparing pair")
			// Name the root cause's type, not the wrapping layers.
			opts.msgs.Appendf(
				"Error comparing %s and %s (%T: %v)",
				actualPaths[i],
				expectedPaths[i],
				errors.UnwrapAll(err),
				err,
			)
			failures++
			continue
		}
		failures += n
	}
	return failures, opts.msgs, nil
}

func comparePair(actualPath, expectedPath string, opts fileOpts) (int, error) {
	actual, err := opts.loader(actualPath)
	if err != nil {
		return 0, errors.Wrapf(err, "error loading %s", actualPath)
	}
	expected, err := opts.loader(expectedPath)
	if err != nil {
		return 0, errors.Wrapf(err, "error loading %s", expectedPath)
	}
	checkOpts := append(
		[]check.Opt{
			check.WithPaths(actualPath, expectedPath),
			check.WithDiffs(opts.msgs),
			check.WithLogger(opts.logger),
		},
		opts.checkOpts...,
	)
	failures, _, err := check.Datasets(actual, expected, checkOpts...)
	return failures, err
}

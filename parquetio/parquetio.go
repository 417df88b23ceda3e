// Package parquetio reads and writes datasets as GeoParquet files, the
// persisted golden-file format. Loading applies a fixed set of
// normalization defaults (null tokens, NaN floats as missing, escape
// handling, datetime inference, WKB geometry detection) which callers
// can override;
// writing persists no row index, converts byte columns to UTF-8 text
// and records the dataset's column order so loads round-trip it.
package parquetio

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/parquet-go/parquet-go"
	"github.com/refdiff/refdiff/dataset"
)

type Option func(*options)

type options struct {
	nullTokens     map[string]struct{}
	inferDatetimes bool
	escapeChar     byte
}

func defaultOptions() options {
	return options{
		nullTokens:     tokenSet("", "NaN", "NULL"),
		inferDatetimes: true,
		escapeChar:     '\\',
	}
}

// WithNullTokens replaces the set of text values loaded as missing.
func WithNullTokens(tokens ...string) Option {
	return func(o *options) {
		o.nullTokens = tokenSet(tokens...)
	}
}

// WithDatetimeInference toggles reinterpreting text columns as
// datetimes after loading.
func WithDatetimeInference(enabled bool) Option {
	return func(o *options) {
		o.inferDatetimes = enabled
	}
}

// WithEscapeChar sets the escape character undone in text cells while
// loading. Zero disables escape handling.
func WithEscapeChar(c byte) Option {
	return func(o *options) {
		o.escapeChar = c
	}
}

func tokenSet(tokens ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ReadFile loads a dataset from a GeoParquet file. Some writers escape
// text that is also stutter-quoted, which makes unescaping fail; on
// that specific failure the read is retried once with escape handling
// disabled.
func ReadFile(path string, inOpts ...Option) (*dataset.Dataset, error) {
	opts := defaultOptions()
	for _, applyOpt := range inOpts {
		applyOpt(&opts)
	}
	ds, err := readFile(path, opts)
	if err != nil && opts.escapeChar != 0 && errors.Is(err, errBadEscape) {
		retry := opts
		retry.escapeChar = 0
		return readFile(path, retry)
	}
	return ds, err
}

// rawColumn accumulates decoded cells for one parquet leaf before
// normalization turns it into a dataset column.
type rawColumn struct {
	name     string
	kind     dataset.Kind
	timeUnit time.Duration
	isDate   bool
	cells    []any
}

func readFile(path string, opts options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, errors.Wrapf(err, "error opening parquet file %s", path)
	}

	fields := pf.Schema().Fields()
	raws := make([]rawColumn, len(fields))
	for i, field := range fields {
		raws[i], err = rawColumnFor(field)
		if err != nil {
			return nil, errors.Wrapf(err, "column %s in %s", field.Name(), path)
		}
	}

	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, raws, opts); err != nil {
			return nil, errors.Wrapf(err, "error reading rows from %s", path)
		}
	}

	columns := make([]*dataset.Column, len(raws))
	for i, raw := range raws {
		columns[i] = dataset.NewColumn(raw.name, raw.kind, raw.cells)
	}
	ds, err := dataset.New(columns...)
	if err != nil {
		return nil, err
	}
	return normalize(ds, pf, opts)
}

func readRowGroup(rg parquet.RowGroup, raws []rawColumn, opts options) error {
	rows := rg.Rows()
	defer func() {
		_ = rows.Close()
	}()
	buf := make([]parquet.Row, 128)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			for _, v := range row {
				raw := &raws[v.Column()]
				cell, cellErr := decodeCell(raw, v, opts)
				if cellErr != nil {
					return cellErr
				}
				raw.cells = append(raw.cells, cell)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func rawColumnFor(field parquet.Field) (rawColumn, error) {
	raw := rawColumn{name: field.Name()}
	typ := field.Type()
	lt := typ.LogicalType()
	switch typ.Kind() {
	case parquet.Boolean:
		raw.kind = dataset.KindBool
	case parquet.Int32:
		raw.kind = dataset.KindInt
		if lt != nil && lt.Date != nil {
			raw.kind = dataset.KindTime
			raw.isDate = true
		}
	case parquet.Int64:
		raw.kind = dataset.KindInt
		if lt != nil && lt.Timestamp != nil {
			raw.kind = dataset.KindTime
			switch {
			case lt.Timestamp.Unit.Millis != nil:
				raw.timeUnit = time.Millisecond
			case lt.Timestamp.Unit.Nanos != nil:
				raw.timeUnit = time.Nanosecond
			default:
				raw.timeUnit = time.Microsecond
			}
		}
	case parquet.Float, parquet.Double:
		raw.kind = dataset.KindFloat
	case parquet.ByteArray, parquet.FixedLenByteArray:
		raw.kind = dataset.KindBytes
		if lt != nil && lt.UTF8 != nil {
			raw.kind = dataset.KindString
		}
	default:
		return raw, errors.Newf("unsupported parquet type %s", typ)
	}
	return raw, nil
}

func decodeCell(raw *rawColumn, v parquet.Value, opts options) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	switch raw.kind {
	case dataset.KindBool:
		return v.Boolean(), nil
	case dataset.KindInt:
		if v.Kind() == parquet.Int32 {
			return int64(v.Int32()), nil
		}
		return v.Int64(), nil
	case dataset.KindFloat:
		var f float64
		if v.Kind() == parquet.Float {
			f = float64(v.Float())
		} else {
			f = v.Double()
		}
		if math.IsNaN(f) {
			return nil, nil
		}
		return f, nil
	case dataset.KindTime:
		if raw.isDate {
			return time.Unix(int64(v.Int32())*24*60*60, 0).UTC(), nil
		}
		return time.Unix(0, v.Int64()*int64(raw.timeUnit)).UTC(), nil
	case dataset.KindString:
		s := string(v.ByteArray())
		if _, isNull := opts.nullTokens[s]; isNull {
			return nil, nil
		}
		if opts.escapeChar != 0 {
			return unescapeText(s, opts.escapeChar)
		}
		return s, nil
	default:
		b := make([]byte, len(v.ByteArray()))
		copy(b, v.ByteArray())
		return b, nil
	}
}

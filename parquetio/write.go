package parquetio

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/parquet-go/parquet-go"
	"github.com/refdiff/refdiff/dataset"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// WriteFile persists a dataset as a GeoParquet file: no row index, all
// text UTF-8, geometry as WKB with a "geo" footer entry. Byte columns
// are converted to text first so the written file round-trips to text
// rather than opaque bytes, and the column order is recorded in footer
// metadata.
func WriteFile(path string, ds *dataset.Dataset) error {
	ds, err := bytesToText(ds)
	if err != nil {
		return err
	}

	group := parquet.Group{}
	for _, col := range ds.Columns() {
		group[col.Name()] = parquet.Optional(nodeFor(col.Kind()))
	}
	schema := parquet.NewSchema("dataset", group)

	// Parquet groups are name-sorted; rows must present leaves in that
	// order.
	fields := schema.Fields()
	leafCols := make([]*dataset.Column, len(fields))
	for i, field := range fields {
		col, ok := ds.Column(field.Name())
		if !ok {
			return errors.Newf("schema field %q has no dataset column", field.Name())
		}
		leafCols[i] = col
	}

	writerOpts := []parquet.WriterOption{
		schema,
		parquet.KeyValueMetadata(columnOrderKey, strings.Join(ds.ColumnNames(), ",")),
	}
	if geo := geoMetadataFor(ds); geo != "" {
		writerOpts = append(writerOpts, parquet.KeyValueMetadata(geoMetadataKey, geo))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	w := parquet.NewWriter(f, writerOpts...)
	rows := make([]parquet.Row, 0, ds.NumRows())
	for r := 0; r < ds.NumRows(); r++ {
		row := make(parquet.Row, 0, len(leafCols))
		for leaf, col := range leafCols {
			v, err := encodeCell(col, r, leaf)
			if err != nil {
				return errors.Wrapf(err, "row %d column %s", r, col.Name())
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		if _, err := w.WriteRows(rows); err != nil {
			return errors.Wrapf(err, "error writing rows to %s", path)
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "error closing parquet writer for %s", path)
	}
	return nil
}

func nodeFor(kind dataset.Kind) parquet.Node {
	switch kind {
	case dataset.KindInt:
		return parquet.Int(64)
	case dataset.KindFloat:
		return parquet.Leaf(parquet.DoubleType)
	case dataset.KindBool:
		return parquet.Leaf(parquet.BooleanType)
	case dataset.KindTime:
		return parquet.Timestamp(parquet.Microsecond)
	case dataset.KindGeometry, dataset.KindBytes:
		return parquet.Leaf(parquet.ByteArrayType)
	default:
		return parquet.String()
	}
}

func encodeCell(col *dataset.Column, row, leaf int) (parquet.Value, error) {
	if col.IsNull(row) {
		return parquet.ValueOf(nil).Level(0, 0, leaf), nil
	}
	var v parquet.Value
	switch col.Kind() {
	case dataset.KindTime:
		t, ok := col.Value(row).(time.Time)
		if !ok {
			return v, errors.Newf("timestamp cell holds %T", col.Value(row))
		}
		v = parquet.ValueOf(t.UnixMicro())
	case dataset.KindGeometry:
		g, ok := col.Value(row).(geom.T)
		if !ok {
			return v, errors.Newf("geometry cell holds %T", col.Value(row))
		}
		b, err := wkb.Marshal(g, wkb.NDR)
		if err != nil {
			return v, err
		}
		v = parquet.ValueOf(b)
	default:
		v = parquet.ValueOf(col.Value(row))
	}
	return v.Level(0, 1, leaf), nil
}

// bytesToText converts byte columns to text columns, repairing any
// non-UTF-8 values, so written files deserialize to text.
func bytesToText(ds *dataset.Dataset) (*dataset.Dataset, error) {
	converted := false
	columns := make([]*dataset.Column, ds.NumColumns())
	for i, col := range ds.Columns() {
		columns[i] = col
		if col.Kind() != dataset.KindBytes {
			continue
		}
		cells := make([]any, col.Len())
		for r := 0; r < col.Len(); r++ {
			if col.IsNull(r) {
				continue
			}
			b, ok := col.Value(r).([]byte)
			if !ok {
				return nil, errors.Newf("byte cell holds %T in column %s", col.Value(r), col.Name())
			}
			cells[r] = repairText(b)
		}
		columns[i] = dataset.NewColumn(col.Name(), dataset.KindString, cells)
		converted = true
	}
	if !converted {
		return ds, nil
	}
	return dataset.New(columns...)
}

func geoMetadataFor(ds *dataset.Dataset) string {
	meta := geoMetadata{Version: "1.0.0"}
	for _, col := range ds.Columns() {
		if col.Kind() != dataset.KindGeometry {
			continue
		}
		if meta.Columns == nil {
			meta.Columns = make(map[string]json.RawMessage)
			meta.PrimaryColumn = col.Name()
		}
		meta.Columns[col.Name()] = json.RawMessage(`{"encoding":"WKB"}`)
	}
	if meta.Columns == nil {
		return ""
	}
	out, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(out)
}

package parquetio

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/parquet-go/parquet-go"
	"github.com/refdiff/refdiff/dataset"
	"github.com/twpayne/go-geom/encoding/wkb"
	"golang.org/x/text/encoding/charmap"
)

// columnOrderKey is the footer entry recording the dataset's column
// order; parquet files store group fields name-sorted, so the loader
// restores the original order from this entry.
const columnOrderKey = "refdiff:columns"

// geoMetadataKey is the GeoParquet footer entry describing geometry
// columns.
const geoMetadataKey = "geo"

var errBadEscape = errors.New("unsupported escape sequence")

// unescapeText undoes escape sequences written into text cells. An
// unknown or dangling escape fails the whole load, which triggers the
// one-shot retry with escaping disabled.
func unescapeText(s string, esc byte) (string, error) {
	if strings.IndexByte(s, esc) < 0 {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != esc {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errors.Wrapf(errBadEscape, "dangling escape at end of %q", s)
		}
		switch s[i] {
		case esc:
			b.WriteByte(esc)
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", errors.Wrapf(errBadEscape, "%c%c in %q", esc, s[i], s)
		}
	}
	return b.String(), nil
}

// repairText decodes raw bytes to valid UTF-8 text, falling back to
// Latin-1 for bytes that are not UTF-8.
func repairText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// normalize applies the post-load reinterpretation steps: WKB geometry
// detection on byte columns, datetime inference on text columns, and
// column order restoration from footer metadata.
func normalize(ds *dataset.Dataset, pf *parquet.File, opts options) (*dataset.Dataset, error) {
	geoCols := geoColumnSet(pf)
	columns := ds.Columns()
	out := make([]*dataset.Column, len(columns))
	for i, col := range columns {
		out[i] = col
		switch col.Kind() {
		case dataset.KindBytes:
			if conv, ok := asGeometry(col, geoCols); ok {
				out[i] = conv
			}
		case dataset.KindString:
			if opts.inferDatetimes {
				if conv, ok := asDatetime(col); ok {
					out[i] = conv
				}
			}
		}
	}
	nds, err := dataset.New(out...)
	if err != nil {
		return nil, err
	}
	return reorderColumns(nds, pf), nil
}

// asGeometry reinterprets a byte column as geometry when the GeoParquet
// metadata declares it, or when every non-null value decodes as WKB.
// The original column is kept if any value fails to decode.
func asGeometry(col *dataset.Column, geoCols map[string]struct{}) (*dataset.Column, bool) {
	_, declared := geoCols[col.Name()]
	cells := make([]any, col.Len())
	nonNull := 0
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		b, _ := col.Value(i).([]byte)
		g, err := wkb.Unmarshal(b)
		if err != nil {
			return nil, false
		}
		cells[i] = g
		nonNull++
	}
	if nonNull == 0 && !declared {
		return nil, false
	}
	return dataset.NewColumn(col.Name(), dataset.KindGeometry, cells), true
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// asDatetime reinterprets a text column as datetimes when every
// non-null value parses under one common layout. The original column is
// kept otherwise.
func asDatetime(col *dataset.Column) (*dataset.Column, bool) {
layouts:
	for _, layout := range datetimeLayouts {
		cells := make([]any, col.Len())
		nonNull := 0
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				continue
			}
			s, _ := col.Value(i).(string)
			t, err := time.Parse(layout, s)
			if err != nil {
				continue layouts
			}
			cells[i] = t.UTC()
			nonNull++
		}
		if nonNull > 0 {
			return dataset.NewColumn(col.Name(), dataset.KindTime, cells), true
		}
	}
	return nil, false
}

func footerMetadata(pf *parquet.File, key string) (string, bool) {
	for _, kv := range pf.Metadata().KeyValueMetadata {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

type geoMetadata struct {
	Version       string                     `json:"version"`
	PrimaryColumn string                     `json:"primary_column"`
	Columns       map[string]json.RawMessage `json:"columns"`
}

func geoColumnSet(pf *parquet.File) map[string]struct{} {
	raw, ok := footerMetadata(pf, geoMetadataKey)
	if !ok {
		return nil
	}
	var meta geoMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil
	}
	set := make(map[string]struct{}, len(meta.Columns)+1)
	for name := range meta.Columns {
		set[name] = struct{}{}
	}
	if meta.PrimaryColumn != "" {
		set[meta.PrimaryColumn] = struct{}{}
	}
	return set
}

func reorderColumns(ds *dataset.Dataset, pf *parquet.File) *dataset.Dataset {
	order, ok := footerMetadata(pf, columnOrderKey)
	if !ok {
		return ds
	}
	var columns []*dataset.Column
	taken := make(map[string]struct{})
	for _, name := range strings.Split(order, ",") {
		if col, found := ds.Column(name); found {
			columns = append(columns, col)
			taken[name] = struct{}{}
		}
	}
	for _, col := range ds.Columns() {
		if _, ok := taken[col.Name()]; !ok {
			columns = append(columns, col)
		}
	}
	out, err := dataset.New(columns...)
	if err != nil {
		return ds
	}
	return out
}

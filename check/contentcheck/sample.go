package contentcheck

import (
	"fmt"
	"strings"
	"time"

	"github.com/refdiff/refdiff/dataset"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// sampleWindow bounds how many rows of a divergent run are displayed.
const sampleWindow = 10

// summarize renders a one-line account of where two columns first
// diverge, showing both sides of the divergent run. The two trailing
// fallbacks are defensive: a correct coarse comparison never reports a
// column pair as unequal without a row-level difference, but if it does
// the inconsistency is rendered rather than panicked on.
func summarize(actualCol, expectedCol *dataset.Column, precision int) string {
	for i := 0; i < actualCol.Len(); i++ {
		if cellsAgree(actualCol, expectedCol, i) {
			continue
		}
		stop, truncated := divergentRun(actualCol, expectedCol, i)
		return fmt.Sprintf(
			"From row %d: [%s] != [%s]",
			i+1,
			formatRun(actualCol, i, stop, truncated, precision),
			formatRun(expectedCol, i, stop, truncated, precision),
		)
	}
	if actualCol.Kind() != expectedCol.Kind() {
		return "Different types"
	}
	return "But mysteriously appear to be identical!"
}

func cellsAgree(actualCol, expectedCol *dataset.Column, i int) bool {
	return dataset.ValueEqual(actualCol.Kind(), actualCol.Value(i), expectedCol.Value(i))
}

// divergentRun bounds the run of disagreeing rows starting at start: it
// ends at the first subsequent row where the columns agree again, or
// after sampleWindow rows. truncated reports that the window cut off a
// run that was still diverging.
func divergentRun(actualCol, expectedCol *dataset.Column, start int) (stop int, truncated bool) {
	limit := start + sampleWindow
	if limit > actualCol.Len() {
		limit = actualCol.Len()
	}
	for i := start; i < limit; i++ {
		if cellsAgree(actualCol, expectedCol, i) {
			return i, false
		}
	}
	if limit < actualCol.Len() && !cellsAgree(actualCol, expectedCol, limit) {
		return limit, true
	}
	return limit, false
}

func formatRun(col *dataset.Column, start, stop int, truncated bool, precision int) string {
	parts := make([]string, 0, stop-start)
	for i := start; i < stop; i++ {
		parts = append(parts, formatCell(col, i, precision))
	}
	s := strings.Join(parts, ", ")
	if truncated {
		s += " ..."
	}
	return s
}

func formatCell(col *dataset.Column, i, precision int) string {
	if col.IsNull(i) {
		return "null"
	}
	v := col.Value(i)
	switch col.Kind() {
	case dataset.KindInt:
		return fmt.Sprintf("%d", v)
	case dataset.KindFloat:
		return fmt.Sprintf("%.*f", precision, v)
	case dataset.KindString:
		return fmt.Sprintf("%q", v)
	case dataset.KindTime:
		if t, ok := v.(time.Time); ok {
			return t.Format("2006-01-02 15:04:05")
		}
	case dataset.KindGeometry:
		if g, ok := v.(geom.T); ok {
			if s, err := wkt.Marshal(g); err == nil {
				return s
			}
		}
	}
	return fmt.Sprint(v)
}

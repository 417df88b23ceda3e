// Package schemacheck compares column presence, declared types and
// column ordering between an actual dataset and a golden reference
// dataset.
package schemacheck

import (
	"fmt"

	"github.com/refdiff/refdiff/check/fieldopt"
	"github.com/refdiff/refdiff/dataset"
)

// WrongType records a column present on both sides with differing
// declared types.
type WrongType struct {
	Name     string
	Actual   dataset.Kind
	Expected dataset.Kind
}

// Result holds the four independent schema axes. The checks pass iff
// every axis is clean.
type Result struct {
	Missing    []string
	Extra      []string
	WrongTypes []WrongType
	WrongOrder bool
	// OrderInfo explains the first ordering divergence when WrongOrder
	// is set.
	OrderInfo string
}

func (r Result) OK() bool {
	return len(r.Missing) == 0 &&
		len(r.Extra) == 0 &&
		len(r.WrongTypes) == 0 &&
		!r.WrongOrder
}

// MissingSet returns the missing columns as a set, for downstream
// consumers that exclude them from later checks.
func (r Result) MissingSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Missing))
	for _, name := range r.Missing {
		set[name] = struct{}{}
	}
	return set
}

// Check compares the schemas of actual and expected. The types flag
// resolves against expected and selects the columns whose presence and
// declared type are verified. The extra flag resolves against actual;
// any resolved column absent from expected's full column set is extra.
// The order flag resolves against expected and selects the columns whose
// relative ordering must match; ordering is only checked when no columns
// are missing.
func Check(actual, expected *dataset.Dataset, types, order, extra fieldopt.Flag) Result {
	var res Result
	for _, name := range types.Resolve(expected) {
		actualCol, ok := actual.Column(name)
		if !ok {
			res.Missing = append(res.Missing, name)
			continue
		}
		if expectedCol, ok := expected.Column(name); ok && actualCol.Kind() != expectedCol.Kind() {
			res.WrongTypes = append(res.WrongTypes, WrongType{
				Name:     name,
				Actual:   actualCol.Kind(),
				Expected: expectedCol.Kind(),
			})
		}
	}
	for _, name := range extra.Resolve(actual) {
		if !expected.HasColumn(name) {
			res.Extra = append(res.Extra, name)
		}
	}
	if !order.IsNone() && len(res.Missing) == 0 {
		orderFields := toSet(order.Resolve(expected))
		actualOrder := restrict(actual.ColumnNames(), orderFields)
		expectedOrder := restrict(expected.ColumnNames(), orderFields)
		if !equalStrings(actualOrder, expectedOrder) {
			res.WrongOrder = true
			res.OrderInfo = describeOrderDivergence(actualOrder, expectedOrder)
		}
	}
	return res
}

// describeOrderDivergence names the first positional mismatch between
// the two restricted column orderings. The final fallback is a
// defensive diagnostic: it cannot be reached while equalStrings is
// correct, but it is rendered rather than panicked on for parity with
// downstream log consumers.
func describeOrderDivergence(actualOrder, expectedOrder []string) string {
	for i := 0; i < len(actualOrder) && i < len(expectedOrder); i++ {
		if actualOrder[i] != expectedOrder[i] {
			return fmt.Sprintf("found %s, expected %s", actualOrder[i], expectedOrder[i])
		}
	}
	if len(actualOrder) != len(expectedOrder) {
		return "not enough columns"
	}
	return "mysterious difference, they appear to be the same!"
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func restrict(names []string, allowed map[string]struct{}) []string {
	var out []string
	for _, name := range names {
		if _, ok := allowed[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

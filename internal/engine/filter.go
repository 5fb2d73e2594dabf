package engine

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Selection maps a dimension to the values chosen for it. A missing or empty
// entry leaves the dimension unconstrained.
type Selection map[string][]string

// Normalize returns s keyed by normalized column names. Keys that normalize to
// the same name have their values merged.
func (s Selection) Normalize() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	for k, v := range s {
		name := NormalizeName(k)
		out[name] = append(out[name], v...)
	}
	return out
}

// Range is an inclusive numeric bound on a column.
type Range struct {
	Column string
	Min    float64
	Max    float64
}

// NewRange validates min <= max.
func NewRange(column string, min, max float64) (Range, error) {
	if min > max {
		return Range{}, fmt.Errorf("%s [%g, %g]: %w", column, min, max, ErrInvalidRange)
	}
	return Range{Column: column, Min: min, Max: max}, nil
}

// DateRange bounds the date column by calendar day. With only one of Start or
// End set, it matches that single day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Active reports whether any date is set.
func (r DateRange) Active() bool { return !r.Start.IsZero() || !r.End.IsZero() }

func (r DateRange) days() (time.Time, time.Time) {
	switch {
	case r.Start.IsZero():
		return Day(r.End), Day(r.End)
	case r.End.IsZero():
		return Day(r.Start), Day(r.Start)
	}
	return Day(r.Start), Day(r.End)
}

// Criteria is the full set of constraints of a filtered view.
type Criteria struct {
	Selection Selection
	Ranges    []Range
	Dates     DateRange
}

// Bounds is the numeric domain of a column. Adjustable is false when the
// column holds a single distinct value.
type Bounds struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Adjustable bool    `json:"adjustable"`
}

type predicate func(row int) bool

func matchAll(preds []predicate, row int) bool {
	for _, p := range preds {
		if !p(row) {
			return false
		}
	}
	return true
}

func dimensionPredicate(ds *Dataset, dim string, values []string) predicate {
	if len(values) == 0 {
		return nil
	}
	col, ok := ds.Column(dim)
	if !ok {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(row int) bool {
		v := col.Values[row]
		if v.IsNull() {
			return false
		}
		_, ok := set[v.Key()]
		return ok
	}
}

func rangePredicate(ds *Dataset, r Range) predicate {
	col, ok := ds.Column(NormalizeName(r.Column))
	if !ok {
		return nil
	}
	return func(row int) bool {
		f, ok := ToNumber(col.Values[row])
		return ok && f >= r.Min && f <= r.Max
	}
}

func datePredicate(ds *Dataset, r DateRange) predicate {
	if !r.Active() {
		return nil
	}
	col, ok := ds.Column(ColDate)
	if !ok {
		return nil
	}
	start, end := r.days()
	return func(row int) bool {
		t, ok := ToDate(col.Values[row])
		if !ok {
			return false
		}
		d := Day(t)
		return !d.Before(start) && !d.After(end)
	}
}

func selectionPredicates(ds *Dataset, sel Selection, skip string) []predicate {
	var preds []predicate
	for _, dim := range Dimensions {
		if dim == skip {
			continue
		}
		if p := dimensionPredicate(ds, dim, sel[dim]); p != nil {
			preds = append(preds, p)
		}
	}
	return preds
}

// ValidOptions returns the sorted values of dim still reachable under the
// selections of the other dimensions, united with the values already selected
// for dim. A nil dataset or an absent column yields an empty list.
func ValidOptions(ds *Dataset, dim string, sel Selection) []string {
	col, ok := ds.Column(dim)
	if !ok {
		return []string{}
	}
	preds := selectionPredicates(ds, sel, dim)

	found := make(map[string]Value)
	for i, v := range col.Values {
		if v.IsNull() || !matchAll(preds, i) {
			continue
		}
		found[v.Key()] = v
	}
	for _, s := range sel[dim] {
		if _, ok := found[s]; ok {
			continue
		}
		v := String(s)
		if col.Type != TypeString {
			if p := ParseCell(s); !p.IsNull() {
				v = p
			}
		}
		found[s] = v
	}

	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c := Compare(found[keys[i]], found[keys[j]]); c != 0 {
			return c < 0
		}
		return keys[i] < keys[j]
	})
	return keys
}

// ResolveOptions computes ValidOptions for every recognized dimension.
func ResolveOptions(ds *Dataset, sel Selection) map[string][]string {
	out := make(map[string][]string, len(Dimensions))
	for _, dim := range Dimensions {
		out[dim] = ValidOptions(ds, dim, sel)
	}
	return out
}

// FilterDimension keeps rows whose dim value is one of values.
func FilterDimension(ds *Dataset, dim string, values []string) *Dataset {
	return where(ds, dimensionPredicate(ds, dim, values))
}

// FilterRange keeps rows whose column coerces to a number within r.
func FilterRange(ds *Dataset, r Range) *Dataset {
	return where(ds, rangePredicate(ds, r))
}

// FilterDates keeps rows whose date falls within r.
func FilterDates(ds *Dataset, r DateRange) *Dataset {
	return where(ds, datePredicate(ds, r))
}

func where(ds *Dataset, p predicate) *Dataset {
	if ds == nil {
		return nil
	}
	if p == nil {
		return ds.Clone()
	}
	return ds.Where(p)
}

// Apply returns the rows of ds satisfying every constraint of c. Constraints
// on absent columns are vacuously true. The input is never modified; a nil
// dataset yields nil.
func Apply(ds *Dataset, c Criteria) *Dataset {
	if ds == nil {
		return nil
	}
	preds := selectionPredicates(ds, c.Selection, "")
	for _, r := range c.Ranges {
		if p := rangePredicate(ds, r); p != nil {
			preds = append(preds, p)
		}
	}
	if p := datePredicate(ds, c.Dates); p != nil {
		preds = append(preds, p)
	}
	if len(preds) == 0 {
		return ds.Clone()
	}
	return ds.Where(func(row int) bool { return matchAll(preds, row) })
}

// ColumnBounds returns the min and max of the numeric-coercible values of col.
func ColumnBounds(ds *Dataset, col string) (Bounds, bool) {
	c, ok := ds.Column(col)
	if !ok {
		return Bounds{}, false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range c.Values {
		f, ok := ToNumber(v)
		if !ok {
			continue
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	if lo > hi {
		return Bounds{}, false
	}
	return Bounds{Min: lo, Max: hi, Adjustable: lo < hi}, true
}

// MetricBounds returns the bounds of every recognized metric present in ds.
func MetricBounds(ds *Dataset) map[string]Bounds {
	out := make(map[string]Bounds)
	for _, m := range Metrics {
		if b, ok := ColumnBounds(ds, m); ok {
			out[m] = b
		}
	}
	return out
}

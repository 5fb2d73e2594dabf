package engine

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the dynamic type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
)

// Value is a single cell. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	tm   time.Time
	raw  string
}

func Null() Value { return Value{} }
func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Date(t time.Time) Value { return Value{kind: KindDate, tm: t} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) Str() string { return v.str }
func (v Value) Float() float64 { return v.num }
func (v Value) Time() time.Time { return v.tm }

// Raw is the source text of a parsed cell, or Key when the value was built
// directly.
func (v Value) Raw() string {
	if v.raw != "" {
		return v.raw
	}
	return v.Key()
}

// Key is the display form used for selections and distinct values.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		if v.tm.Hour() == 0 && v.tm.Minute() == 0 && v.tm.Second() == 0 {
			return v.tm.Format("2006-01-02")
		}
		return v.tm.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Any returns the cell as a plain Go value for JSON encoding.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindDate:
		return v.Key()
	default:
		return nil
	}
}

// ColumnType is the declared semantic type of a column.
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
)

// Column stores one field of the dataset in row order.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

// Dataset holds data in struct-of-arrays form. Row i is Values[i] of every column.
type Dataset struct {
	Name    string
	Columns []*Column
}

// NewDataset builds a dataset from a header and string rows, typing every cell
// and inferring each column's declared type.
func NewDataset(name string, header []string, rows [][]string) *Dataset {
	ds := &Dataset{Name: name, Columns: make([]*Column, len(header))}
	for j, h := range header {
		col := &Column{Name: h, Values: make([]Value, len(rows))}
		for i, row := range rows {
			if j < len(row) {
				col.Values[i] = ParseCell(row[j])
			}
		}
		col.Type = InferType(col.Values)
		ds.Columns[j] = col
	}
	return ds
}

// ParseCell types a raw cell. Only unambiguous numbers and ISO dates are typed;
// everything else stays a string and is coerced at evaluation time.
func ParseCell(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Value{kind: KindNumber, num: f, raw: s}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{kind: KindDate, tm: t, raw: s}
		}
	}
	return String(s)
}

var isoLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05", time.RFC3339}

// InferType picks the declared type by majority of coercible non-null cells.
func InferType(values []Value) ColumnType {
	var nonNull, nums, dates int
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		nonNull++
		if v.kind == KindDate {
			dates++
			continue
		}
		if _, ok := ToNumber(v); ok {
			nums++
			continue
		}
		if _, ok := ToDate(v); ok {
			dates++
		}
	}
	switch {
	case nonNull == 0:
		return TypeString
	case nums*2 > nonNull:
		return TypeNumber
	case dates*2 > nonNull:
		return TypeDate
	default:
		return TypeString
	}
}

// Len returns the row count.
func (ds *Dataset) Len() int {
	if ds == nil || len(ds.Columns) == 0 {
		return 0
	}
	return len(ds.Columns[0].Values)
}

// Column looks a column up by exact name.
func (ds *Dataset) Column(name string) (*Column, bool) {
	if ds == nil {
		return nil, false
	}
	for _, c := range ds.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Has reports whether the named column exists.
func (ds *Dataset) Has(name string) bool {
	_, ok := ds.Column(name)
	return ok
}

// Names returns the column names in order.
func (ds *Dataset) Names() []string {
	if ds == nil {
		return nil
	}
	out := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		out[i] = c.Name
	}
	return out
}

// Clone deep-copies the column headers and value slices.
func (ds *Dataset) Clone() *Dataset {
	if ds == nil {
		return nil
	}
	out := &Dataset{Name: ds.Name, Columns: make([]*Column, len(ds.Columns))}
	for i, c := range ds.Columns {
		vals := make([]Value, len(c.Values))
		copy(vals, c.Values)
		out.Columns[i] = &Column{Name: c.Name, Type: c.Type, Values: vals}
	}
	return out
}

// Take returns a new dataset with the rows at idx, in the given order.
func (ds *Dataset) Take(idx []int) *Dataset {
	if ds == nil {
		return nil
	}
	out := &Dataset{Name: ds.Name, Columns: make([]*Column, len(ds.Columns))}
	for i, c := range ds.Columns {
		vals := make([]Value, len(idx))
		for k, r := range idx {
			vals[k] = c.Values[r]
		}
		out.Columns[i] = &Column{Name: c.Name, Type: c.Type, Values: vals}
	}
	return out
}

// Where keeps the rows for which keep returns true.
func (ds *Dataset) Where(keep func(row int) bool) *Dataset {
	n := ds.Len()
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return ds.Take(idx)
}

// Row returns row i as a column-name keyed map.
func (ds *Dataset) Row(i int) map[string]any {
	out := make(map[string]any, len(ds.Columns))
	for _, c := range ds.Columns {
		out[c.Name] = Display(c.Values[i], c.Type)
	}
	return out
}

// Records returns up to limit rows starting at offset.
func (ds *Dataset) Records(offset, limit int) []map[string]any {
	n := ds.Len()
	if offset >= n || limit <= 0 {
		return []map[string]any{}
	}
	end := offset + limit
	if end > n {
		end = n
	}
	out := make([]map[string]any, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, ds.Row(i))
	}
	return out
}

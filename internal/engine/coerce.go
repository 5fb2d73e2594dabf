package engine

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// dayFirstLayouts are tried after ISO layouts; slashed dates in the source
// spreadsheets are written day first.
var dayFirstLayouts = []string{
	"02/01/2006", "2/1/2006", "02/01/2006 15:04", "02/01/2006 15:04:05",
	"02-01-2006", "02.01.2006", "2006/01/02",
}

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// ToNumber coerces v to a float. Strings are parsed with locale detection of
// the decimal separator; dates and nulls never coerce.
func ToNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return parseNumeric(v.str)
	default:
		return 0, false
	}
}

// ToDate coerces v to a timestamp. Numbers are read as Excel serial dates.
func ToDate(v Value) (time.Time, bool) {
	switch v.kind {
	case KindDate:
		return v.tm, true
	case KindNumber:
		if v.num < 1 || v.num > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(v.num, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case KindString:
		return parseDate(v.str)
	default:
		return time.Time{}, false
	}
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	if f, err := cast.ToFloat64E(raw); err == nil {
		return finite(f)
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos > dpos {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range isoLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	for _, l := range dayFirstLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	if t, err := cast.ToTimeE(raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Compare orders values naturally: numbers numerically, dates chronologically,
// strings lexicographically. Mixed kinds order by kind. Nulls sort first.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case KindDate:
		return a.tm.Compare(b.tm)
	case KindString:
		return strings.Compare(a.str, b.str)
	default:
		return 0
	}
}

// Display renders v for output according to the column's declared type.
func Display(v Value, t ColumnType) any {
	if t == TypeDate && v.kind != KindDate && !v.IsNull() {
		if tm, ok := ToDate(v); ok {
			return Date(tm).Key()
		}
	}
	return v.Any()
}

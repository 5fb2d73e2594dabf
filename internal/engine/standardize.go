package engine

import (
	"fmt"
	"strings"
)

// NormalizeName lower-cases and trims a header.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Standardize returns a copy of ds in the canonical schema: normalized and
// unique column names, Spanish aliases resolved, recognized columns typed and a
// province column present. The input is never modified. Running it on its own
// output yields an identical dataset.
func Standardize(ds *Dataset) (*Dataset, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	out := ds.Clone()

	used := make(map[string]bool, len(out.Columns))
	for _, c := range out.Columns {
		name := NormalizeName(c.Name)
		if used[name] {
			name = uniqueName(name, used)
		}
		used[name] = true
		c.Name = name
	}

	for _, c := range out.Columns {
		canonical, ok := columnAliases[c.Name]
		if !ok || used[canonical] {
			continue
		}
		delete(used, c.Name)
		used[canonical] = true
		c.Name = canonical
	}

	for _, c := range out.Columns {
		if t, ok := canonicalTypes[c.Name]; ok {
			c.Type = t
		}
		if c.Type == TypeString {
			asText(c.Values)
		}
	}

	if out.Has(ColProvince) {
		return out, nil
	}
	addr, ok := out.Column(ColAddress)
	if !ok {
		return nil, fmt.Errorf("standardize %q: %w", ds.Name, ErrMissingRequiredColumn)
	}
	prov := &Column{Name: ColProvince, Type: TypeString, Values: make([]Value, len(addr.Values))}
	for i, v := range addr.Values {
		prov.Values[i] = ProvinceFromAddress(v)
	}
	out.Columns = append(out.Columns, prov)
	return out, nil
}

// ProvinceFromAddress takes the second comma-separated segment of an address,
// or the whole trimmed address when there is no comma.
func ProvinceFromAddress(addr Value) Value {
	if addr.IsNull() {
		return Null()
	}
	s := addr.Raw()
	parts := strings.Split(s, ",")
	p := strings.TrimSpace(s)
	if len(parts) > 1 {
		p = strings.TrimSpace(parts[1])
	}
	if p == "" {
		return Null()
	}
	return String(p)
}

// asText restores the source text of cells in a string column, so "007"
// stays "007" and "1.50" stays "1.50".
func asText(values []Value) {
	for i, v := range values {
		if !v.IsNull() && v.kind != KindString {
			values[i] = String(v.Raw())
		}
	}
}

func uniqueName(name string, used map[string]bool) string {
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if !used[candidate] {
			return candidate
		}
	}
}

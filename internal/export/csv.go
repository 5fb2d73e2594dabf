package export

import (
	"encoding/csv"
	"io"

	"fleetdash/internal/engine"
)

// WriteCSV writes a header row followed by every row of ds.
func WriteCSV(w io.Writer, ds *engine.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Names()); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for i := 0; i < ds.Len(); i++ {
		for j, c := range ds.Columns {
			record[j] = text(c.Values[i], c.Type)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package export

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"fleetdash/internal/engine"
)

// Table is the name of the exported table.
const Table = "refuels"

// WriteSQLite creates a database at path holding ds in the refuels table.
// Number columns are REAL, everything else TEXT.
func WriteSQLite(path string, ds *engine.Dataset) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer conn.Close()

	cols := make([]string, len(ds.Columns))
	marks := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		typ := "TEXT"
		if c.Type == engine.TypeNumber {
			typ = "REAL"
		}
		cols[i] = quote(c.Name) + " " + typ
		marks[i] = "?"
	}

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", Table, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", Table, strings.Join(marks, ", ")))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]any, len(ds.Columns))
	for i := 0; i < ds.Len(); i++ {
		for j, c := range ds.Columns {
			args[j] = sqlValue(c.Values[i], c.Type)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func sqlValue(v engine.Value, t engine.ColumnType) any {
	if v.IsNull() {
		return nil
	}
	if t == engine.TypeNumber {
		if f, ok := engine.ToNumber(v); ok {
			return f
		}
		return nil
	}
	return text(v, t)
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"fleetdash/internal/engine"
)

// Schema maps declared column types to arrow types. Every field is nullable.
func Schema(ds *engine.Dataset) *arrow.Schema {
	fields := make([]arrow.Field, len(ds.Columns))
	for i, c := range ds.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t engine.ColumnType) arrow.DataType {
	switch t {
	case engine.TypeNumber:
		return arrow.PrimitiveTypes.Float64
	case engine.TypeDate:
		return arrow.FixedWidthTypes.Date32
	default:
		return arrow.BinaryTypes.String
	}
}

// WriteArrow writes ds as a single-record Arrow IPC stream. Cells that do not
// coerce to their column type become nulls.
func WriteArrow(w io.Writer, ds *engine.Dataset) error {
	schema := Schema(ds)
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i, c := range ds.Columns {
		switch fb := b.Field(i).(type) {
		case *array.Float64Builder:
			for _, v := range c.Values {
				if f, ok := engine.ToNumber(v); ok {
					fb.Append(f)
				} else {
					fb.AppendNull()
				}
			}
		case *array.Date32Builder:
			for _, v := range c.Values {
				if t, ok := engine.ToDate(v); ok {
					fb.Append(arrow.Date32FromTime(engine.Day(t)))
				} else {
					fb.AppendNull()
				}
			}
		case *array.StringBuilder:
			for _, v := range c.Values {
				if v.IsNull() {
					fb.AppendNull()
				} else {
					fb.Append(v.Key())
				}
			}
		default:
			return fmt.Errorf("column %q: unexpected builder %T", c.Name, fb)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(schema))
	if err := iw.Write(rec); err != nil {
		iw.Close()
		return err
	}
	return iw.Close()
}

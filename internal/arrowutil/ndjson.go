// Package arrowutil holds small helpers shared between the catalog's
// reference executor and the HTTP gateway for moving data between Arrow
// record batches and the gateway's newline-delimited JSON wire format.
package arrowutil

import (
	"encoding/json"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("arrowutil")

// WriteNDJSON renders records as one JSON object per row, one row per
// line, UTF-8, with a trailing newline after the last row - spec.md §6's
// response body format. An empty (or nil) records slice writes nothing.
func WriteNDJSON(w io.Writer, records []arrow.Record) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		schema := rec.Schema()
		numRows := int(rec.NumRows())
		numCols := int(rec.NumCols())

		for row := 0; row < numRows; row++ {
			obj := make(map[string]any, numCols)
			for col := 0; col < numCols; col++ {
				name := schema.Field(col).Name
				obj[name] = cellValue(rec.Column(col), row)
			}
			if err := enc.Encode(obj); err != nil {
				return Error.Wrap(err)
			}
		}
	}
	return nil
}

// cellValue extracts the row-th value of arr as a plain Go value suitable
// for encoding/json. Nulls render as nil.
func cellValue(arr arrow.Array, row int) any {
	if arr.IsNull(row) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Boolean:
		return a.Value(row)
	case *array.Int8:
		return a.Value(row)
	case *array.Int16:
		return a.Value(row)
	case *array.Int32:
		return a.Value(row)
	case *array.Int64:
		return a.Value(row)
	case *array.Uint8:
		return a.Value(row)
	case *array.Uint16:
		return a.Value(row)
	case *array.Uint32:
		return a.Value(row)
	case *array.Uint64:
		return a.Value(row)
	case *array.Float32:
		return a.Value(row)
	case *array.Float64:
		return a.Value(row)
	case *array.String:
		return a.Value(row)
	case *array.LargeString:
		return a.Value(row)
	case *array.Binary:
		return a.Value(row)
	default:
		return arr.ValueStr(row)
	}
}

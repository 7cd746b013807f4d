// Package ingest implements the gateway's multipart bulk-load path
// (spec.md §4.5 MultipartIngestor): decoding uploaded CSV/Parquet parts
// into Arrow record batches and handing them to the catalog Context to
// persist as a new table version.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/zeebo/errs"

	"github.com/splitgraph/seafowl/internal/catalog"
)

// Error is the error class for this package.
var Error = errs.Class("ingest")

// ErrUnsupportedSuffix is returned when an uploaded part's filename suffix
// is neither .csv nor .parquet. The gateway maps this to spec.md §4.5's
// "400 BAD_REQUEST, File {filename} not supported".
type ErrUnsupportedSuffix struct {
	Filename string
}

func (e ErrUnsupportedSuffix) Error() string {
	return fmt.Sprintf("File %s not supported", e.Filename)
}

// CSVSchema is the fixed schema every .csv upload is decoded against
// (spec.md §4.5 and §9 Open Question #2). It is intentionally a hard-coded
// stub, not inferred from the file: exported so callers and tests can see
// and pin exactly what it is, rather than that being buried in a decode
// call.
var CSVSchema = arrow.NewSchema([]arrow.Field{
	{Name: "fruit_id", Type: arrow.PrimitiveTypes.Int8, Nullable: false},
	{Name: "name", Type: arrow.BinaryTypes.String, Nullable: false},
}, nil)

// parquetBatchSize is the row batch size used when reading Parquet uploads
// (spec.md §4.5).
const parquetBatchSize = 100_000

// Ingestor decodes multipart file parts and persists them as new table
// versions via a catalog.Context.
type Ingestor struct {
	Context catalog.Context
}

func New(ctx catalog.Context) *Ingestor {
	return &Ingestor{Context: ctx}
}

// IngestPart reads one multipart.Part named "file", decodes it according
// to its filename's suffix, and persists the result as a new version of
// tableName. Failure semantics per spec.md §4.5: a single unreadable part
// aborts ingest with a generic error; success means the partition was
// durably registered in the catalog.
func (in *Ingestor) IngestPart(ctx context.Context, part *multipart.Part, tableName string) error {
	filename := part.FileName()

	data, err := io.ReadAll(part)
	if err != nil {
		return Error.Wrap(err)
	}

	var records []arrow.Record
	switch {
	case strings.HasSuffix(filename, ".csv"):
		records, err = decodeCSV(data)
	case strings.HasSuffix(filename, ".parquet"):
		records, err = decodeParquet(ctx, data)
	default:
		return ErrUnsupportedSuffix{Filename: filename}
	}
	if err != nil {
		return Error.Wrap(err)
	}

	if err := in.Context.PlanToTable(ctx, records, tableName); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// decodeCSV decodes data against the fixed CSVSchema, treating the first
// line as a header. No escape character is configured: a backslash is an
// ordinary character, and only standard double-quote quoting is recognized.
func decodeCSV(data []byte) ([]arrow.Record, error) {
	reader := csv.NewReader(
		bytes.NewReader(data),
		CSVSchema,
		csv.WithHeader(true),
		csv.WithComma(','),
		csv.WithAllocator(memory.DefaultAllocator),
	)
	defer reader.Release()

	var records []arrow.Record
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv upload contained no rows")
	}
	return records, nil
}

// decodeParquet decodes data, inferring its schema from the file footer,
// reading in batches of parquetBatchSize rows (spec.md §4.5).
func decodeParquet(ctx context.Context, data []byte) ([]arrow.Record, error) {
	reader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	fileReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{BatchSize: parquetBatchSize}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}

	table, err := fileReader.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	defer table.Release()

	tableReader := array.NewTableReader(table, parquetBatchSize)
	defer tableReader.Release()

	var records []arrow.Record
	for tableReader.Next() {
		rec := tableReader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parquet upload contained no rows")
	}
	return records, nil
}

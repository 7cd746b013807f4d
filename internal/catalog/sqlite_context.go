package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	_ "github.com/mattn/go-sqlite3"

	"github.com/splitgraph/seafowl/internal/plan"
)

// schemaSQL mirrors, at a much smaller scale, the table/table_version
// split in original_source/src/repository/default.rs: every row mutation
// creates a new table_version rather than mutating one in place.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS "table" (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS table_version (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	table_id INTEGER NOT NULL REFERENCES "table"(id)
);
`

// versionedData is the in-memory row storage for one table_version. The
// catalog repository tracked in SQLite is the source of truth for *which*
// versions exist; actual columnar data storage is out of scope per
// spec.md §1, so it's kept here rather than spilled to an object store.
type versionedData struct {
	id      TableVersionID
	schema  *arrow.Schema
	records []arrow.Record
}

type tableState struct {
	id       int64
	versions []versionedData
}

func (t *tableState) latest() versionedData {
	return t.versions[len(t.versions)-1]
}

// SQLiteContext is a reference Context implementation backed by SQLite for
// table/version bookkeeping. It runs the small SQL subset documented in
// sql.go; it is not a substitute for the real planner/executor that
// spec.md §1 places out of scope, only a stand-in real enough to drive
// the gateway's end-to-end tests and the seafowl binary.
type SQLiteContext struct {
	db *sql.DB

	mu     sync.RWMutex
	tables map[string]*tableState
}

// NewSQLiteContext opens (or creates) the catalog database at dsn - e.g.
// "file:seafowl.db" or ":memory:" for tests - and ensures its schema
// exists.
func NewSQLiteContext(dsn string) (*SQLiteContext, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, Error.Wrap(err)
	}
	return &SQLiteContext{db: db, tables: make(map[string]*tableState)}, nil
}

// Close releases the underlying SQLite connection.
func (c *SQLiteContext) Close() error {
	return Error.Wrap(c.db.Close())
}

// ReloadSchema is a no-op in this single-process reference
// implementation: there's only one writer, so there's nothing to pick up
// from elsewhere. A multi-instance catalog would re-sync its in-memory
// view from the shared repository here.
func (c *SQLiteContext) ReloadSchema(ctx context.Context) error {
	return nil
}

type logicalNode struct {
	plan.Node
	sql string
}

func (c *SQLiteContext) CreateLogicalPlan(ctx context.Context, sqlText string) (plan.Node, error) {
	kind := statementKind(sqlText)

	var scans []plan.Node
	c.mu.RLock()
	for _, name := range scanTargets(sqlText) {
		version := int64(0)
		if t, ok := c.tables[name]; ok {
			version = t.latest().id
		}
		scans = append(scans, plan.ScanNode{Table: plan.VersionedTable{Version: version}})
	}
	c.mu.RUnlock()

	root := plan.SimpleNode{NodeKind: kind, SubNodes: scans}
	return logicalNode{Node: root, sql: sqlText}, nil
}

type physicalPlan struct {
	sql string
}

func (physicalPlan) isPhysicalPlan() {}

func (c *SQLiteContext) CreatePhysicalPlan(ctx context.Context, logical plan.Node) (PhysicalPlan, error) {
	ln, ok := logical.(logicalNode)
	if !ok {
		return nil, Error.New("logical plan not produced by this Context")
	}
	return physicalPlan{sql: ln.sql}, nil
}

func (c *SQLiteContext) PlanQuery(ctx context.Context, sqlText string) (PhysicalPlan, error) {
	return physicalPlan{sql: sqlText}, nil
}

func (c *SQLiteContext) Collect(ctx context.Context, physical PhysicalPlan) ([]arrow.Record, error) {
	pp, ok := physical.(physicalPlan)
	if !ok {
		return nil, Error.New("physical plan not produced by this Context")
	}
	return c.execute(ctx, pp.sql)
}

func (c *SQLiteContext) execute(ctx context.Context, sqlText string) ([]arrow.Record, error) {
	switch {
	case createTableRe.MatchString(sqlText):
		m := createTableRe.FindStringSubmatch(sqlText)
		return nil, c.createTable(ctx, m[1], parseColumnDefs(m[2]))

	case dropTableRe.MatchString(sqlText):
		m := dropTableRe.FindStringSubmatch(sqlText)
		return nil, c.dropTable(ctx, m[1])

	case insertRe.MatchString(sqlText):
		m := insertRe.FindStringSubmatch(sqlText)
		return nil, c.insert(ctx, m[1], parseValueTuple(m[2]))

	case selectCountRe.MatchString(sqlText):
		m := selectCountRe.FindStringSubmatch(sqlText)
		return c.selectCount(m[2], m[1])

	case selectRe.MatchString(sqlText):
		m := selectRe.FindStringSubmatch(sqlText)
		return c.selectAll(m[2])

	default:
		return nil, Error.New("unsupported statement: %s", sqlText)
	}
}

func (c *SQLiteContext) createTable(ctx context.Context, name string, fields []arrow.Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tables[name]; exists {
		return Error.New("table %s already exists", name)
	}

	res, err := c.db.ExecContext(ctx, `INSERT INTO "table" (name) VALUES (?)`, name)
	if err != nil {
		return Error.Wrap(err)
	}
	tableID, err := res.LastInsertId()
	if err != nil {
		return Error.Wrap(err)
	}

	versionID, err := c.insertVersionRow(ctx, tableID)
	if err != nil {
		return err
	}

	schema := arrow.NewSchema(fields, nil)
	c.tables[name] = &tableState{
		id: tableID,
		versions: []versionedData{
			{id: versionID, schema: schema, records: nil},
		},
	}
	return nil
}

func (c *SQLiteContext) dropTable(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[name]
	if !ok {
		return Error.New("table %s not found", name)
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM "table" WHERE id = ?`, t.id); err != nil {
		return Error.Wrap(err)
	}
	delete(c.tables, name)
	return nil
}

func (c *SQLiteContext) insertVersionRow(ctx context.Context, tableID int64) (TableVersionID, error) {
	res, err := c.db.ExecContext(ctx, `INSERT INTO table_version (table_id) VALUES (?)`, tableID)
	if err != nil {
		return 0, Error.Wrap(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, Error.Wrap(err)
	}
	return id, nil
}

func (c *SQLiteContext) insert(ctx context.Context, name string, rawValues []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.tables[name]
	if !ok {
		return Error.New("table %s not found", name)
	}
	latest := t.latest()

	row, err := buildRow(latest.schema, rawValues)
	if err != nil {
		return Error.Wrap(err)
	}

	newRecords := append(append([]arrow.Record{}, latest.records...), row)
	versionID, err := c.insertVersionRow(ctx, t.id)
	if err != nil {
		return err
	}

	t.versions = append(t.versions, versionedData{id: versionID, schema: latest.schema, records: newRecords})
	return nil
}

func buildRow(schema *arrow.Schema, rawValues []string) (arrow.Record, error) {
	if len(rawValues) != len(schema.Fields()) {
		return nil, fmt.Errorf("expected %d values, got %d", len(schema.Fields()), len(rawValues))
	}

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for i, raw := range rawValues {
		field := schema.Field(i)
		value, err := parseScalar(raw, field.Type)
		if err != nil {
			return nil, err
		}
		if err := appendScalar(builder.Field(i), field.Type, value); err != nil {
			return nil, err
		}
	}

	rec := builder.NewRecord()
	return rec, nil
}

func appendScalar(b array.Builder, dt arrow.DataType, value any) error {
	switch dt.ID() {
	case arrow.INT64:
		b.(*array.Int64Builder).Append(value.(int64))
	case arrow.FLOAT64:
		b.(*array.Float64Builder).Append(value.(float64))
	case arrow.BOOL:
		b.(*array.BooleanBuilder).Append(value.(bool))
	default:
		b.(*array.StringBuilder).Append(value.(string))
	}
	return nil
}

func (c *SQLiteContext) selectCount(name, alias string) ([]arrow.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return nil, Error.New("table %s not found", name)
	}

	count := int64(0)
	for _, rec := range t.latest().records {
		count += rec.NumRows()
	}

	schema := arrow.NewSchema([]arrow.Field{{Name: alias, Type: arrow.PrimitiveTypes.Int64}}, nil)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()
	builder.Field(0).(*array.Int64Builder).Append(count)

	return []arrow.Record{builder.NewRecord()}, nil
}

func (c *SQLiteContext) selectAll(name string) ([]arrow.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[name]
	if !ok {
		return nil, Error.New("table %s not found", name)
	}
	return t.latest().records, nil
}

// PlanToTable persists partition as tableName's next table_version,
// creating the table if it doesn't already exist - spec.md §4.5's ingest
// contract. Unlike the 2022-era original this gateway is grounded on,
// errors here are never swallowed (spec.md §9 Open Question #3).
func (c *SQLiteContext) PlanToTable(ctx context.Context, partition []arrow.Record, tableName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(partition) == 0 {
		return Error.New("empty partition for table %s", tableName)
	}
	schema := partition[0].Schema()

	t, exists := c.tables[tableName]
	if !exists {
		res, err := c.db.ExecContext(ctx, `INSERT INTO "table" (name) VALUES (?)`, tableName)
		if err != nil {
			return Error.Wrap(err)
		}
		tableID, err := res.LastInsertId()
		if err != nil {
			return Error.Wrap(err)
		}
		t = &tableState{id: tableID}
		c.tables[tableName] = t
	}

	versionID, err := c.insertVersionRow(ctx, t.id)
	if err != nil {
		return err
	}

	t.versions = append(t.versions, versionedData{id: versionID, schema: schema, records: partition})
	return nil
}

// TableNames reports every table currently registered, for diagnostics.
func (c *SQLiteContext) TableNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}

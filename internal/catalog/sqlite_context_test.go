package catalog_test

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/splitgraph/seafowl/internal/catalog"
	"github.com/splitgraph/seafowl/internal/plan"
)

func newTestContext(t *testing.T) *catalog.SQLiteContext {
	t.Helper()
	ctx, err := catalog.NewSQLiteContext(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, ctx.Close()) })
	return ctx
}

func mustExec(t *testing.T, c *catalog.SQLiteContext, ctx context.Context, sql string) {
	t.Helper()
	physical, err := c.PlanQuery(ctx, sql)
	require.NoError(t, err)
	_, err = c.Collect(ctx, physical)
	require.NoError(t, err)
}

func buildTestRecord(t *testing.T, ids []int64, names []string) arrow.Record {
	t.Helper()
	require.Equal(t, len(ids), len(names))

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	idBuilder := builder.Field(0).(*array.Int64Builder)
	nameBuilder := builder.Field(1).(*array.StringBuilder)
	for i := range ids {
		idBuilder.Append(ids[i])
		nameBuilder.Append(names[i])
	}

	return builder.NewRecord()
}

func TestSQLiteContext_CreateInsertSelectCount(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()

	require.NoError(t, ctx.ReloadSchema(bg))

	logical, err := ctx.CreateLogicalPlan(bg, "CREATE TABLE test_table(col_1 INT)")
	require.NoError(t, err)
	require.Equal(t, plan.KindCreateMemoryTable, logical.Kind())

	physical, err := ctx.CreatePhysicalPlan(bg, logical)
	require.NoError(t, err)
	_, err = ctx.Collect(bg, physical)
	require.NoError(t, err)

	mustExec(t, ctx, bg, "INSERT INTO test_table VALUES (1)")

	logical, err = ctx.CreateLogicalPlan(bg, "SELECT COUNT(*) AS c FROM test_table")
	require.NoError(t, err)
	require.Equal(t, plan.ReadOnly, plan.Classify(logical))
	fp := plan.BuildFingerprint(logical)
	require.Equal(t, plan.Fingerprint{2}, fp) // version 1 = create, version 2 = first insert

	physical, err = ctx.CreatePhysicalPlan(bg, logical)
	require.NoError(t, err)
	records, err := ctx.Collect(bg, physical)
	require.NoError(t, err)
	require.Len(t, records, 1)

	col, ok := records[0].Column(0).(*array.Int64)
	require.True(t, ok)
	require.Equal(t, int64(1), col.Value(0))
}

func TestSQLiteContext_FingerprintBumpsAfterInsert(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()

	mustExec(t, ctx, bg, "CREATE TABLE test_table(col_1 INT)")
	mustExec(t, ctx, bg, "INSERT INTO test_table VALUES (1)")

	logical, err := ctx.CreateLogicalPlan(bg, "SELECT COUNT(*) AS c FROM test_table")
	require.NoError(t, err)
	before := plan.BuildFingerprint(logical)

	mustExec(t, ctx, bg, "INSERT INTO test_table VALUES (2)")

	logical, err = ctx.CreateLogicalPlan(bg, "SELECT COUNT(*) AS c FROM test_table")
	require.NoError(t, err)
	after := plan.BuildFingerprint(logical)

	require.NotEqual(t, before, after)
}

func TestSQLiteContext_DropTableIsMutating(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()
	mustExec(t, ctx, bg, "CREATE TABLE other(col_1 INT)")

	logical, err := ctx.CreateLogicalPlan(bg, "DROP TABLE other")
	require.NoError(t, err)
	require.Equal(t, plan.Mutating, plan.Classify(logical))
}

func TestSQLiteContext_UnknownTableErrors(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()

	_, err := ctx.PlanQuery(bg, "SELECT * FROM nope")
	require.NoError(t, err) // PlanQuery itself never fails in this reference impl

	physical, err := ctx.PlanQuery(bg, "SELECT * FROM nope")
	require.NoError(t, err)
	_, err = ctx.Collect(bg, physical)
	require.Error(t, err)
}

func TestSQLiteContext_PlanToTable(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()

	rec := buildTestRecord(t, []int64{1, 2}, []string{"apple", "orange"})
	require.NoError(t, ctx.PlanToTable(bg, []arrow.Record{rec}, "csv_table"))

	logical, err := ctx.CreateLogicalPlan(bg, "SELECT * FROM csv_table")
	require.NoError(t, err)
	physical, err := ctx.CreatePhysicalPlan(bg, logical)
	require.NoError(t, err)
	records, err := ctx.Collect(bg, physical)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(2), records[0].NumRows())
}

func TestSQLiteContext_PlanToTableAppendsNewVersion(t *testing.T) {
	ctx := newTestContext(t)
	bg := context.Background()

	rec1 := buildTestRecord(t, []int64{1}, []string{"apple"})
	require.NoError(t, ctx.PlanToTable(bg, []arrow.Record{rec1}, "csv_table"))

	logical, err := ctx.CreateLogicalPlan(bg, "SELECT * FROM csv_table")
	require.NoError(t, err)
	firstFP := plan.BuildFingerprint(logical)

	rec2 := buildTestRecord(t, []int64{2}, []string{"orange"})
	require.NoError(t, ctx.PlanToTable(bg, []arrow.Record{rec2}, "csv_table"))

	logical, err = ctx.CreateLogicalPlan(bg, "SELECT * FROM csv_table")
	require.NoError(t, err)
	secondFP := plan.BuildFingerprint(logical)

	require.NotEqual(t, firstFP, secondFP)
}

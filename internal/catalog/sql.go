package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/splitgraph/seafowl/internal/plan"
)

// This file implements a small SQL subset: CREATE TABLE, DROP TABLE,
// INSERT INTO ... VALUES, and SELECT [* | COUNT(*) AS x | col, ...] FROM
// table. It exists only so the reference Context in this package (and the
// gateway's end-to-end tests) have something real to plan and execute
// against; the real planner/executor is out of scope per spec.md §1.

var (
	createTableRe = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(\w+)\s*\((.*)\)\s*;?\s*$`)
	dropTableRe   = regexp.MustCompile(`(?is)^\s*DROP\s+TABLE\s+(\w+)\s*;?\s*$`)
	insertRe      = regexp.MustCompile(`(?is)^\s*INSERT\s+INTO\s+(\w+)\s+VALUES\s*\((.*)\)\s*;?\s*$`)
	selectCountRe = regexp.MustCompile(`(?is)^\s*SELECT\s+COUNT\(\*\)\s+AS\s+(\w+)\s+FROM\s+(\w+)\s*;?\s*$`)
	selectRe      = regexp.MustCompile(`(?is)^\s*SELECT\s+(.+?)\s+FROM\s+(\w+)\s*;?\s*$`)
)

// statementKind classifies a raw SQL string without needing catalog state,
// used to build the logical plan's root Kind.
func statementKind(sql string) plan.Kind {
	switch {
	case createTableRe.MatchString(sql):
		return plan.KindCreateMemoryTable
	case dropTableRe.MatchString(sql):
		return plan.KindDropTable
	default:
		return plan.KindOther
	}
}

// scanTargets returns the table names a SELECT statement reads from, so
// the logical plan can carry a ScanNode per referenced table.
func scanTargets(sql string) []string {
	if m := selectCountRe.FindStringSubmatch(sql); m != nil {
		return []string{m[2]}
	}
	if m := selectRe.FindStringSubmatch(sql); m != nil {
		return []string{m[2]}
	}
	return nil
}

func columnType(typeName string) arrow.DataType {
	switch strings.ToUpper(strings.TrimSpace(typeName)) {
	case "INT", "INTEGER", "INT8", "BIGINT":
		return arrow.PrimitiveTypes.Int64
	case "FLOAT", "DOUBLE", "REAL":
		return arrow.PrimitiveTypes.Float64
	case "BOOL", "BOOLEAN":
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// parseColumnDefs parses "col_1 INT, col_2 TEXT" into arrow fields.
func parseColumnDefs(defs string) []arrow.Field {
	parts := strings.Split(defs, ",")
	fields := make([]arrow.Field, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fs := strings.Fields(p)
		name := fs[0]
		typeName := "TEXT"
		if len(fs) > 1 {
			typeName = fs[1]
		}
		fields = append(fields, arrow.Field{Name: name, Type: columnType(typeName), Nullable: true})
	}
	return fields
}

// parseValueTuple parses "(1, 'apple')"'s inner contents into raw scalar
// strings, naively splitting on commas outside of quotes - sufficient for
// the simple literal tuples of the INSERT statements this subset accepts.
func parseValueTuple(values string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	for _, r := range values {
		switch {
		case r == '\'' :
			inQuote = !inQuote
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		default:
			cur.WriteRune(r)
		}
	}
	if strings.TrimSpace(cur.String()) != "" || len(out) > 0 {
		out = append(out, strings.TrimSpace(cur.String()))
	}
	return out
}

func parseScalar(raw string, dt arrow.DataType) (any, error) {
	raw = strings.TrimSpace(raw)
	switch dt.ID() {
	case arrow.INT64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", raw)
		}
		return v, nil
	case arrow.FLOAT64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("not a float: %q", raw)
		}
		return v, nil
	case arrow.BOOL:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("not a bool: %q", raw)
		}
		return v, nil
	default:
		return strings.Trim(raw, "'"), nil
	}
}

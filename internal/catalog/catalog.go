// Package catalog defines the narrow interface the gateway uses to talk to
// the query engine and catalog repository (spec.md's "Context"), plus a
// small reference implementation backed by SQLite. The real planner,
// physical executor, and catalog repository are explicitly out of scope
// per spec.md §1 - this package exists so the gateway compiles, is
// testable, and can run the end-to-end scenarios from spec.md §8 against
// something real rather than a hand-rolled mock in every test file.
package catalog

import (
	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("catalog")

// TableVersionID identifies an immutable snapshot of a table's
// schema+data. It is monotonic per table; the catalog mints a new one
// whenever data is appended, schema evolves, or a table is created
// (spec.md §3).
type TableVersionID = int64

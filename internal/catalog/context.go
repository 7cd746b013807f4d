package catalog

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/splitgraph/seafowl/internal/plan"
)

// PhysicalPlan is the opaque result of turning a logical plan.Node into
// something executable. The gateway never inspects it; it only ever
// passes it back into Collect.
type PhysicalPlan interface {
	isPhysicalPlan()
}

// Context is the gateway's view of the query engine and catalog
// repository (spec.md §1's "out of scope / external collaborators",
// narrowed to exactly the surface the gateway calls).
type Context interface {
	// ReloadSchema refreshes the in-process view of the catalog so that a
	// request observes any table versions committed by other requests
	// since the last reload. Called once per request, strictly before
	// planning (spec.md §5).
	ReloadSchema(ctx context.Context) error

	// CreateLogicalPlan parses and plans sql without executing it, used on
	// the cached GET route so the gateway can classify and fingerprint
	// before deciding whether to run it.
	CreateLogicalPlan(ctx context.Context, sql string) (plan.Node, error)

	// CreatePhysicalPlan lowers a logical plan into something Collect can
	// run. Split out from PlanQuery so the cached route can classify and
	// fingerprint the logical plan first.
	CreatePhysicalPlan(ctx context.Context, logical plan.Node) (PhysicalPlan, error)

	// PlanQuery parses, plans, and lowers sql in one step, for the
	// uncached POST /q route, which never needs the logical plan on its
	// own.
	PlanQuery(ctx context.Context, sql string) (PhysicalPlan, error)

	// Collect executes a physical plan and materializes every resulting
	// record batch in memory. spec.md explicitly scopes out streaming
	// result delivery, so one batched response is correct here.
	Collect(ctx context.Context, physical PhysicalPlan) ([]arrow.Record, error)

	// PlanToTable persists partition as a new table named tableName and
	// registers a new table version for it in the catalog. Used by the
	// ingest path (spec.md §4.5).
	PlanToTable(ctx context.Context, partition []arrow.Record, tableName string) error
}

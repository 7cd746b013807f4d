// Package plan models the opaque logical-plan tree the gateway observes
// coming back from the query engine. The gateway never inspects a plan's
// semantics beyond two things: the kind of its root node (for read/write
// classification) and the table versions touched by its scan leaves (for
// fingerprinting).
package plan

// Kind tags a Node with the logical operation it represents. The gateway
// only cares whether a Kind is in the mutating set (see mutatingKinds);
// every other Kind is read-only.
type Kind int

const (
	// KindOther covers any plan root the gateway doesn't special-case:
	// selects, joins, aggregates, inserts, and anything else read-only
	// under the policy documented on mutatingKinds.
	KindOther Kind = iota
	KindScan
	KindCreateExternalTable
	KindCreateMemoryTable
	KindCreateView
	KindCreateCatalogSchema
	KindCreateCatalog
	KindDropTable
	KindAnalyze
	KindExtension
)

// String renders a Kind for logs and test failure messages.
func (k Kind) String() string {
	switch k {
	case KindScan:
		return "Scan"
	case KindCreateExternalTable:
		return "CreateExternalTable"
	case KindCreateMemoryTable:
		return "CreateMemoryTable"
	case KindCreateView:
		return "CreateView"
	case KindCreateCatalogSchema:
		return "CreateCatalogSchema"
	case KindCreateCatalog:
		return "CreateCatalog"
	case KindDropTable:
		return "DropTable"
	case KindAnalyze:
		return "Analyze"
	case KindExtension:
		return "Extension"
	default:
		return "Other"
	}
}

// TableHandle is what a ScanNode's Table field holds. The fingerprinter
// only cares whether a handle is a VersionedTable; anything else (a foreign
// table, an ad-hoc parquet file, a remote SQL table) is a ForeignTable and
// contributes nothing to the fingerprint.
type TableHandle interface {
	isTableHandle()
}

// VersionedTable is a TableHandle backed by an internally managed table
// with a catalog-assigned version.
type VersionedTable struct {
	Version int64
}

func (VersionedTable) isTableHandle() {}

// ForeignTable is a TableHandle the fingerprinter must skip: its contents
// aren't tracked by the catalog, so its ETag contribution is (deliberately)
// constant. Callers who need cache freshness over such a scan must not use
// the cached route.
type ForeignTable struct {
	Name string
}

func (ForeignTable) isTableHandle() {}

// Node is one node of the logical plan tree. Children returns the node's
// direct children in the order they should be visited pre-order.
type Node interface {
	Kind() Kind
	Children() []Node
}

// ScanNode is a Node of KindScan; it carries the table a query reads.
type ScanNode struct {
	Table TableHandle
}

func (ScanNode) Kind() Kind       { return KindScan }
func (ScanNode) Children() []Node { return nil }

// SimpleNode is a Node with a fixed Kind and no payload beyond its
// children; it's enough to represent every other node the gateway needs to
// model (CreateExternalTable, Insert, Select, ...).
type SimpleNode struct {
	NodeKind Kind
	SubNodes []Node
}

func (n SimpleNode) Kind() Kind       { return n.NodeKind }
func (n SimpleNode) Children() []Node { return n.SubNodes }

// Walk performs a pre-order traversal of plan, calling visit for every
// node including plan itself. Traversal order is the node's own Children
// order; Walk does not reorder or deduplicate.
func Walk(n Node, visit func(Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Children() {
		Walk(child, visit)
	}
}

package plan

// Classification is the verdict QueryClassifier hands back to the gateway:
// either the plan may run on the cached GET route, or it may not.
type Classification int

const (
	ReadOnly Classification = iota
	Mutating
)

// mutatingKinds lists every plan root kind the cached route rejects. Note
// that INSERT and other write DML are deliberately absent: per spec.md §9
// Open Question #1, this implementation keeps the historical behavior of
// letting DML through the read-only gate rather than silently "fixing" it,
// since a reimplementer changing this is a policy decision, not a bugfix.
var mutatingKinds = map[Kind]bool{
	KindCreateExternalTable: true,
	KindCreateMemoryTable:   true,
	KindCreateView:          true,
	KindCreateCatalogSchema: true,
	KindCreateCatalog:       true,
	KindDropTable:           true,
	KindAnalyze:             true,
	KindExtension:           true,
}

// Classify inspects only root's own Kind - not its children - per spec.md
// §4.3: mutating-ness is a property of the query's top-level operation.
func Classify(root Node) Classification {
	if root != nil && mutatingKinds[root.Kind()] {
		return Mutating
	}
	return ReadOnly
}

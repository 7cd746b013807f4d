package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/splitgraph/seafowl/internal/plan"
)

func TestClassify_MutatingKinds(t *testing.T) {
	for _, k := range []plan.Kind{
		plan.KindCreateExternalTable,
		plan.KindCreateMemoryTable,
		plan.KindCreateView,
		plan.KindCreateCatalogSchema,
		plan.KindCreateCatalog,
		plan.KindDropTable,
		plan.KindAnalyze,
		plan.KindExtension,
	} {
		t.Run(k.String(), func(t *testing.T) {
			root := plan.SimpleNode{NodeKind: k}
			assert.Equal(t, plan.Mutating, plan.Classify(root))
		})
	}
}

func TestClassify_ReadOnlyKinds(t *testing.T) {
	for _, k := range []plan.Kind{plan.KindOther, plan.KindScan} {
		t.Run(k.String(), func(t *testing.T) {
			root := plan.SimpleNode{NodeKind: k}
			assert.Equal(t, plan.ReadOnly, plan.Classify(root))
		})
	}
}

// Insert is modeled as KindOther: per spec.md §9 Open Question #1, DML
// passes the read-only gate. This test pins that choice down so changing
// it is a deliberate, visible diff rather than an accidental regression.
func TestClassify_InsertPassesReadOnlyGate(t *testing.T) {
	insert := plan.SimpleNode{NodeKind: plan.KindOther}
	assert.Equal(t, plan.ReadOnly, plan.Classify(insert))
}

func TestClassify_NilRoot(t *testing.T) {
	assert.Equal(t, plan.ReadOnly, plan.Classify(nil))
}

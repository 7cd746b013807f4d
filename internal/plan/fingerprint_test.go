package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitgraph/seafowl/internal/plan"
)

func scanOf(version int64) plan.Node {
	return plan.ScanNode{Table: plan.VersionedTable{Version: version}}
}

func TestBuildFingerprint_PreOrder(t *testing.T) {
	root := plan.SimpleNode{
		NodeKind: plan.KindOther,
		SubNodes: []plan.Node{
			scanOf(3),
			plan.SimpleNode{
				NodeKind: plan.KindOther,
				SubNodes: []plan.Node{scanOf(1), scanOf(2)},
			},
		},
	}

	fp := plan.BuildFingerprint(root)
	require.Equal(t, plan.Fingerprint{3, 1, 2}, fp)
}

func TestBuildFingerprint_SkipsForeignScans(t *testing.T) {
	root := plan.SimpleNode{
		NodeKind: plan.KindOther,
		SubNodes: []plan.Node{
			plan.ScanNode{Table: plan.ForeignTable{Name: "s3://bucket/data.parquet"}},
			scanOf(5),
		},
	}

	fp := plan.BuildFingerprint(root)
	assert.Equal(t, plan.Fingerprint{5}, fp)
}

func TestBuildFingerprint_SameVersionsSameOrder_Identical(t *testing.T) {
	a := plan.SimpleNode{SubNodes: []plan.Node{scanOf(1), scanOf(2)}}
	b := plan.SimpleNode{SubNodes: []plan.Node{scanOf(1), scanOf(2)}}
	assert.Equal(t, plan.BuildFingerprint(a), plan.BuildFingerprint(b))
}

func TestBuildFingerprint_Empty(t *testing.T) {
	fp := plan.BuildFingerprint(plan.SimpleNode{NodeKind: plan.KindOther})
	assert.Empty(t, fp)
}

func TestBuildFingerprint_NilRoot(t *testing.T) {
	assert.Empty(t, plan.BuildFingerprint(nil))
}

package plan

// Fingerprint is the ordered sequence of table-version identifiers
// encountered in a pre-order traversal of a plan's scans. Two plans that
// reference the same versions in the same scan order produce an identical
// Fingerprint, regardless of whether they're semantically equivalent -
// this is a deliberately cheap, conservative identity (spec.md §3).
type Fingerprint []int64

// BuildFingerprint walks root in pre-order and collects the version of every
// VersionedTable reached through a scan. ForeignTable scans are silently
// skipped: their ETag contribution is constant, so a cached GET over
// unversioned data will keep serving a stale response to clients that use
// If-None-Match (see the doc on ForeignTable).
//
// BuildFingerprint is pure and does no I/O; cost is O(plan size).
func BuildFingerprint(root Node) Fingerprint {
	out := make(Fingerprint, 0)
	Walk(root, func(n Node) {
		scan, ok := n.(ScanNode)
		if !ok {
			return
		}
		if vt, ok := scan.Table.(VersionedTable); ok {
			out = append(out, vt.Version)
		}
	})
	return out
}

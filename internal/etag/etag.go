// Package etag turns a plan fingerprint into the opaque validator string
// returned in the HTTP ETag header.
package etag

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/errs"

	"github.com/splitgraph/seafowl/internal/plan"
)

// Error is the error class for this package.
var Error = errs.Class("etag")

// Encode hashes the JSON-array serialization of fingerprint with SHA-256
// and returns the lowercase hex digest. Encode(a) == Encode(b) iff a == b,
// up to SHA-256 collision resistance (spec.md §4.2). The serialization is
// a numeric JSON array, not quoted strings, and is only required to be
// stable across instances that share a catalog - not a public wire format.
func Encode(fp plan.Fingerprint) (string, error) {
	if fp == nil {
		fp = plan.Fingerprint{}
	}
	encoded, err := json.Marshal([]int64(fp))
	if err != nil {
		return "", Error.Wrap(err)
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

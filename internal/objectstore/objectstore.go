// Package objectstore provides the gateway's uniform facade over local-FS,
// in-memory, S3, and GCS blob backends (spec.md §4.4). It exists so the
// ingest and table-format layers never branch on backend kind themselves;
// all backend-specific behavior is concentrated in Facade and in each
// Backend implementation.
package objectstore

import (
	"context"
	"io"

	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("objectstore")

// ErrNotFound is returned by Backend.Get/Head when no object exists at the
// given key.
var ErrNotFound = Error.New("object not found")

// ErrAlreadyExists is returned by CopyIfNotExists/RenameIfNotExists when the
// destination key is already occupied.
var ErrAlreadyExists = Error.New("destination already exists")

// ObjectMeta describes one stored object, as returned by List.
type ObjectMeta struct {
	Key  string
	Size int64
}

// Backend is the narrow capability set every object-store variant must
// implement. It mirrors the object_store crate's ObjectStore trait that
// original_source/src/object_store/wrapped.rs wraps, trimmed to what this
// gateway actually calls.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error)
	Head(ctx context.Context, key string) (ObjectMeta, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]ObjectMeta, error)
	Copy(ctx context.Context, from, to string) error
	CopyIfNotExists(ctx context.Context, from, to string) error
	RenameIfNotExists(ctx context.Context, from, to string) error

	// String identifies the backend for logging, mirroring
	// InternalObjectStore's Display impl in the original.
	String() string
}

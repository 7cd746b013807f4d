package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/zeebo/errs"
)

// FastUploadResult distinguishes "the local-FS fast path fired" from "it
// doesn't apply to this backend", so callers know whether to fall back to
// a normal Put (spec.md §4.4 fast_upload).
type FastUploadResult int

const (
	// FastUploadNotApplicable means the facade isn't backed by local FS;
	// the caller must perform a normal streaming Put instead.
	FastUploadNotApplicable FastUploadResult = iota
	// FastUploadDone means the file was moved (or copied+removed) into
	// place successfully.
	FastUploadDone
)

// Facade is the uniform object-store entry point the gateway, ingest path,
// and table-format layer all use (spec.md §4.4). It holds the underlying
// Backend plus the Config that produced it, so it can make backend-specific
// decisions (local-FS fast path, S3 rename relaxation) with a single
// switch, mirroring InternalObjectStore in
// original_source/src/object_store/wrapped.rs.
type Facade struct {
	Backend Backend
	Config  Config
}

// NewFacade constructs the Backend named by cfg and wraps it in a Facade.
func NewFacade(ctx context.Context, cfg Config) (*Facade, error) {
	var backend Backend
	var err error

	switch {
	case cfg.Local != nil:
		backend = NewLocalBackend(cfg.Local.DataDir)
	case cfg.InMemory != nil:
		backend = NewMemoryBackend()
	case cfg.S3 != nil:
		backend, err = NewS3Backend(ctx, *cfg.S3)
	case cfg.GCS != nil:
		backend, err = NewGCSBackend(ctx, *cfg.GCS)
	default:
		return nil, Error.New("object store config has no backend variant set")
	}
	if err != nil {
		return nil, err
	}

	return &Facade{Backend: backend, Config: cfg}, nil
}

func (f *Facade) String() string {
	return f.Backend.String()
}

// TablePrefix returns the key prefix a table with the given UUID is stored
// under: "<root URI>/<uuid>" (e.g. "s3://bucket/<uuid>") on cloud backends
// (a single bucket may host many databases), or just "<uuid>" on
// local/in-memory backends (a single
// local data dir is already its own root) - spec.md §4.4.
func (f *Facade) TablePrefix(tableUUID string) string {
	if !f.Config.isCloud() {
		return tableUUID
	}
	return f.Config.RootURI() + "/" + tableUUID
}

// DeleteInPrefix enumerates and deletes every object under prefix. Not
// atomic; best-effort, and used as the sweeper during table teardown
// (spec.md §4.4, §7 "Cancellation").
func (f *Facade) DeleteInPrefix(ctx context.Context, prefix string) error {
	objects, err := f.Backend.List(ctx, prefix)
	if err != nil {
		return Error.Wrap(err)
	}

	var group errs.Group
	for _, obj := range objects {
		if err := f.Backend.Delete(ctx, obj.Key); err != nil {
			group.Add(err)
		}
	}
	return Error.Wrap(group.Err())
}

// FastUpload, when the facade is local-FS, atomically renames localPath
// into the store's directory tree at destKey, creating parent directories
// as needed. On EXDEV (cross-device link) it falls back to copy-then-
// remove, mirroring fast_upload in
// original_source/src/object_store/wrapped.rs. When the facade is not
// local, it returns FastUploadNotApplicable and no error.
func (f *Facade) FastUpload(ctx context.Context, localPath, destKey string) (FastUploadResult, error) {
	local, ok := f.Backend.(*LocalBackend)
	if !ok {
		return FastUploadNotApplicable, nil
	}

	target := filepath.Join(local.Root, filepath.FromSlash(destKey))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return FastUploadNotApplicable, Error.Wrap(err)
	}

	err := os.Rename(localPath, target)
	if err == nil {
		return FastUploadDone, nil
	}

	if !isCrossDeviceLinkError(err) {
		return FastUploadNotApplicable, Error.Wrap(err)
	}

	if err := copyThenRemove(localPath, target); err != nil {
		return FastUploadNotApplicable, Error.Wrap(err)
	}
	return FastUploadDone, nil
}

// isCrossDeviceLinkError reports whether err is EXDEV (errno 18), the
// "can't move files between filesystems" case os.Rename surfaces when
// source and destination live on different devices.
func isCrossDeviceLinkError(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return false
}

func copyThenRemove(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(to)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(from)
}

// RenameIfNotExists moves from to to, failing if to already exists.
// Default policy requires an atomic conditional rename; the S3 variant
// relaxes this to a plain, non-atomic rename, accepting the race (spec.md
// §4.4 "S3 rename relaxation") - a documented, deliberate concession, not
// an oversight.
func (f *Facade) RenameIfNotExists(ctx context.Context, from, to string) error {
	if f.Config.isS3() {
		if err := f.Backend.Copy(ctx, from, to); err != nil {
			return Error.Wrap(err)
		}
		return Error.Wrap(f.Backend.Delete(ctx, from))
	}
	return Error.Wrap(f.Backend.RenameIfNotExists(ctx, from, to))
}

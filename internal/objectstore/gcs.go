package objectstore

import (
	"context"
	"errors"
	"io"
	"sort"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSBackend stores objects in a single Google Cloud Storage bucket.
type GCSBackend struct {
	bucket *storage.BucketHandle
	name   string
}

// NewGCSBackend builds a GCSBackend from cfg, using application-default
// credentials unless CredentialsFile is set.
func NewGCSBackend(ctx context.Context, cfg GCSConfig) (*GCSBackend, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return &GCSBackend{bucket: client.Bucket(cfg.Bucket), name: cfg.Bucket}, nil
}

func (g *GCSBackend) String() string {
	return "GCSBackend(" + g.name + ")"
}

func (g *GCSBackend) Put(ctx context.Context, key string, r io.Reader) error {
	w := g.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return Error.Wrap(err)
	}
	if err := w.Close(); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (g *GCSBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := g.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return r, nil
}

func (g *GCSBackend) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	r, err := g.bucket.Object(key).NewRangeReader(ctx, offset, length)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return data, nil
}

func (g *GCSBackend) Head(ctx context.Context, key string) (ObjectMeta, error) {
	attrs, err := g.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ObjectMeta{}, ErrNotFound
	}
	if err != nil {
		return ObjectMeta{}, Error.Wrap(err)
	}
	return ObjectMeta{Key: key, Size: attrs.Size}, nil
}

func (g *GCSBackend) Delete(ctx context.Context, key string) error {
	err := g.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return Error.Wrap(err)
	}
	return nil
}

func (g *GCSBackend) List(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	var out []ObjectMeta
	it := g.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, ObjectMeta{Key: attrs.Name, Size: attrs.Size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (g *GCSBackend) Copy(ctx context.Context, from, to string) error {
	src := g.bucket.Object(from)
	dst := g.bucket.Object(to)
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (g *GCSBackend) CopyIfNotExists(ctx context.Context, from, to string) error {
	src := g.bucket.Object(from)
	dst := g.bucket.Object(to).If(storage.Conditions{DoesNotExist: true})
	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		if isGCSPreconditionFailed(err) {
			return ErrAlreadyExists
		}
		return Error.Wrap(err)
	}
	return nil
}

// RenameIfNotExists uses GCS's conditional copy (DoesNotExist precondition)
// followed by a delete of the source - GCS, unlike S3, does support an
// atomic conditional write, so this backend gets the strict semantics the
// facade's default documents, no relaxation needed.
func (g *GCSBackend) RenameIfNotExists(ctx context.Context, from, to string) error {
	if err := g.CopyIfNotExists(ctx, from, to); err != nil {
		return err
	}
	return g.Delete(ctx, from)
}

func isGCSPreconditionFailed(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 412
	}
	return false
}

package objectstore

import (
	"context"
	"io"
	"strings"
)

// PrefixView wraps a Facade so every key is transparently rebased under
// Prefix, the only way the table-format layer is ever allowed to see the
// object store (spec.md §4.4 "Log-store construction"). RenameIfNotExists
// and DeleteInPrefix go through the Facade, so the S3 rename relaxation is
// inherited; every other call goes straight to the Facade's Backend.
// FastUpload is not exposed on the view.
type PrefixView struct {
	facade *Facade
	prefix string
}

// NewPrefixView constructs a log store for the table identified by
// tableUUID, rooted at facade.TablePrefix(tableUUID).
func NewPrefixView(facade *Facade, tableUUID string) *PrefixView {
	return &PrefixView{facade: facade, prefix: facade.TablePrefix(tableUUID)}
}

func (p *PrefixView) full(key string) string {
	return strings.TrimSuffix(p.prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

func (p *PrefixView) strip(key string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, p.prefix), "/")
}

func (p *PrefixView) String() string {
	return "PrefixView(" + p.prefix + " -> " + p.facade.String() + ")"
}

func (p *PrefixView) Put(ctx context.Context, key string, r io.Reader) error {
	return p.facade.Backend.Put(ctx, p.full(key), r)
}

func (p *PrefixView) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return p.facade.Backend.Get(ctx, p.full(key))
}

func (p *PrefixView) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	return p.facade.Backend.GetRange(ctx, p.full(key), offset, length)
}

func (p *PrefixView) Head(ctx context.Context, key string) (ObjectMeta, error) {
	meta, err := p.facade.Backend.Head(ctx, p.full(key))
	if err != nil {
		return ObjectMeta{}, err
	}
	meta.Key = p.strip(meta.Key)
	return meta, nil
}

func (p *PrefixView) Delete(ctx context.Context, key string) error {
	return p.facade.Backend.Delete(ctx, p.full(key))
}

func (p *PrefixView) List(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	objects, err := p.facade.Backend.List(ctx, p.full(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]ObjectMeta, len(objects))
	for i, obj := range objects {
		out[i] = ObjectMeta{Key: p.strip(obj.Key), Size: obj.Size}
	}
	return out, nil
}

func (p *PrefixView) Copy(ctx context.Context, from, to string) error {
	return p.facade.Backend.Copy(ctx, p.full(from), p.full(to))
}

func (p *PrefixView) CopyIfNotExists(ctx context.Context, from, to string) error {
	return p.facade.Backend.CopyIfNotExists(ctx, p.full(from), p.full(to))
}

// RenameIfNotExists delegates to the underlying Facade's RenameIfNotExists,
// not the raw Backend's, so the S3 relaxation is honored here too.
func (p *PrefixView) RenameIfNotExists(ctx context.Context, from, to string) error {
	return p.facade.RenameIfNotExists(ctx, p.full(from), p.full(to))
}

// DeleteInPrefix deletes every object under this view's own prefix joined
// with the given relative prefix.
func (p *PrefixView) DeleteInPrefix(ctx context.Context, prefix string) error {
	return p.facade.DeleteInPrefix(ctx, p.full(prefix))
}

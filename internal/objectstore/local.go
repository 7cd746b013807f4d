package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend stores objects as files under Root, mirroring the "Local"
// variant of original_source/src/object_store/wrapped.rs.
type LocalBackend struct {
	Root string
}

func NewLocalBackend(root string) *LocalBackend {
	return &LocalBackend{Root: root}
}

func (l *LocalBackend) String() string {
	return "LocalBackend(" + l.Root + ")"
}

func (l *LocalBackend) path(key string) string {
	return filepath.Join(l.Root, filepath.FromSlash(key))
}

func (l *LocalBackend) Put(ctx context.Context, key string, r io.Reader) error {
	target := l.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Error.Wrap(err)
	}
	f, err := os.Create(target)
	if err != nil {
		return Error.Wrap(err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (l *LocalBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return f, nil
}

func (l *LocalBackend) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	f, err := os.Open(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, Error.Wrap(err)
	}
	buf := make([]byte, length)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, Error.Wrap(err)
	}
	return buf[:n], nil
}

func (l *LocalBackend) Head(ctx context.Context, key string) (ObjectMeta, error) {
	info, err := os.Stat(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return ObjectMeta{}, ErrNotFound
	}
	if err != nil {
		return ObjectMeta{}, Error.Wrap(err)
	}
	return ObjectMeta{Key: key, Size: info.Size()}, nil
}

func (l *LocalBackend) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (l *LocalBackend) List(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	root := l.path(prefix)
	var out []ObjectMeta

	err := filepath.Walk(l.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasPrefix(path, root) {
			return nil
		}
		rel, err := filepath.Rel(l.Root, path)
		if err != nil {
			return err
		}
		out = append(out, ObjectMeta{Key: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

func (l *LocalBackend) Copy(ctx context.Context, from, to string) error {
	return l.copy(from, to, false)
}

func (l *LocalBackend) CopyIfNotExists(ctx context.Context, from, to string) error {
	return l.copy(from, to, true)
}

func (l *LocalBackend) copy(from, to string, failIfExists bool) error {
	if failIfExists {
		if _, err := os.Stat(l.path(to)); err == nil {
			return ErrAlreadyExists
		}
	}

	src, err := os.Open(l.path(from))
	if err != nil {
		return Error.Wrap(err)
	}
	defer src.Close()

	target := l.path(to)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Error.Wrap(err)
	}
	dst, err := os.Create(target)
	if err != nil {
		return Error.Wrap(err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (l *LocalBackend) RenameIfNotExists(ctx context.Context, from, to string) error {
	if _, err := os.Stat(l.path(to)); err == nil {
		return ErrAlreadyExists
	}
	target := l.path(to)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Error.Wrap(err)
	}
	if err := os.Rename(l.path(from), target); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

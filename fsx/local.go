package fsx

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFS reads from the local disk. Relative paths resolve against Root,
// or the working directory when Root is empty.
type LocalFS struct {
	Root string
}

func NewLocalFS(root string) *LocalFS {
	return &LocalFS{Root: root}
}

func (l *LocalFS) path(p string) string {
	if filepath.IsAbs(p) || l.Root == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(l.Root, p)
}

func (l *LocalFS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.path(path))
	if err != nil {
		return nil, localError(err, path)
	}
	return data, nil
}

func (l *LocalFS) Stat(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(l.path(path))
	if err != nil {
		return FileInfo{}, localError(err, path)
	}
	if info.IsDir() {
		return FileInfo{}, ErrorRegistry.New(ErrIsDirectory).WithDetail("path", path)
	}
	return FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func localError(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrorRegistry.NewWithMessage(ErrNotFound, "file not found: "+path).
			WithCause(err).
			WithDetail("path", path)
	}
	return ErrorRegistry.NewWithMessage(ErrReadFailed, "failed to read "+path+": "+err.Error()).
		WithCause(err).
		WithDetail("path", path)
}

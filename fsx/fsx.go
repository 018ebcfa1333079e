package fsx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Abraxas-365/watools/errx"
)

// FileInfo represents information about a file
type FileInfo struct {
	Name        string    // Base name of the file
	Size        int64     // File size in bytes
	ModTime     time.Time // Modification time
	ContentType string    // MIME type (when available)
}

// FileSystem reads files by path. Paths are backend specific: a local path
// for LocalFS, "bucket/key" for S3FS.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Stat(ctx context.Context, path string) (FileInfo, error)
}

var ErrorRegistry = errx.NewRegistry("FSX")

var (
	ErrNotFound     = ErrorRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "File not found")
	ErrReadFailed   = ErrorRegistry.Register("READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read file")
	ErrUnsupported  = ErrorRegistry.Register("UNSUPPORTED_SCHEME", errx.TypeBadRequest, http.StatusBadRequest, "Unsupported file location")
	ErrIsDirectory  = ErrorRegistry.Register("IS_DIRECTORY", errx.TypeBadRequest, http.StatusBadRequest, "Path is a directory")
	ErrFileTooLarge = ErrorRegistry.Register("FILE_TOO_LARGE", errx.TypeBadRequest, http.StatusRequestEntityTooLarge, "File is too large")
)

// MaxFileSize caps what Open reads into memory. WhatsApp documents top out
// at 100MB.
const MaxFileSize = 100 << 20

// File is a fully read file with its detected content type
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Router picks a FileSystem by the location's scheme. Locations without a
// scheme go to the local filesystem.
type Router struct {
	Local FileSystem
	// S3 serves "s3://bucket/key"; nil disables S3 locations
	S3 FileSystem
}

// Open stats and reads location, then fills in the content type from the
// stat result or the file itself.
func (r Router) Open(ctx context.Context, location string) (File, error) {
	fs, path, err := r.resolve(location)
	if err != nil {
		return File{}, err
	}

	info, err := fs.Stat(ctx, path)
	if err != nil {
		return File{}, err
	}
	if info.Size > MaxFileSize {
		return File{}, ErrorRegistry.New(ErrFileTooLarge).
			WithDetail("path", location).
			WithDetail("size", info.Size)
	}

	data, err := fs.ReadFile(ctx, path)
	if err != nil {
		return File{}, err
	}

	contentType := info.ContentType
	if contentType == "" || contentType == "application/octet-stream" || contentType == "binary/octet-stream" {
		contentType = DetectContentType(info.Name, data)
	}
	return File{Name: info.Name, ContentType: contentType, Data: data}, nil
}

func (r Router) resolve(location string) (FileSystem, string, error) {
	scheme, rest, hasScheme := strings.Cut(location, "://")
	if !hasScheme {
		if r.Local == nil {
			return nil, "", ErrorRegistry.New(ErrUnsupported).WithDetail("path", location)
		}
		return r.Local, location, nil
	}

	switch strings.ToLower(scheme) {
	case "file":
		if r.Local != nil {
			return r.Local, rest, nil
		}
	case "s3":
		if r.S3 != nil {
			return r.S3, rest, nil
		}
	}
	return nil, "", ErrorRegistry.NewWithMessage(ErrUnsupported, "unsupported file location: "+location).
		WithDetail("scheme", scheme)
}

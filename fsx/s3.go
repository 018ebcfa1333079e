package fsx

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the part of the S3 client S3FS uses
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3FS reads objects addressed as "bucket/key"
type S3FS struct {
	client S3API
}

func NewS3FS(client S3API) *S3FS {
	return &S3FS{client: client}
}

// NewS3FSFromEnv builds the client from the default AWS credential chain
func NewS3FSFromEnv(ctx context.Context) (*S3FS, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, ErrorRegistry.NewWithMessage(ErrReadFailed, "failed to load AWS config: "+err.Error()).WithCause(err)
	}
	return NewS3FS(s3.NewFromConfig(cfg)), nil
}

func splitObjectPath(p string) (bucket, key string, err error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", ErrorRegistry.NewWithMessage(ErrUnsupported, "S3 location must look like s3://bucket/key: "+p).
			WithDetail("path", p)
	}
	return bucket, key, nil
}

func (s *S3FS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	bucket, key, err := splitObjectPath(p)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3Error(err, p)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, MaxFileSize+1))
	if err != nil {
		return nil, s3Error(err, p)
	}
	if len(data) > MaxFileSize {
		return nil, ErrorRegistry.New(ErrFileTooLarge).WithDetail("path", p)
	}
	return data, nil
}

func (s *S3FS) Stat(ctx context.Context, p string) (FileInfo, error) {
	bucket, key, err := splitObjectPath(p)
	if err != nil {
		return FileInfo{}, err
	}

	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return FileInfo{}, s3Error(err, p)
	}

	info := FileInfo{
		Name:        path.Base(key),
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}
	return info, nil
}

func s3Error(err error, p string) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	var apiErr smithy.APIError
	if errors.As(err, &noKey) || errors.As(err, &notFound) ||
		(errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound") {
		return ErrorRegistry.NewWithMessage(ErrNotFound, "object not found: s3://"+p).
			WithCause(err).
			WithDetail("path", p)
	}
	return ErrorRegistry.NewWithMessage(ErrReadFailed, "failed to read s3://"+p+": "+err.Error()).
		WithCause(err).
		WithDetail("path", p)
}

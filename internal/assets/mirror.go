// Package assets mirrors a bucket of static assets into the public root
// before the server starts serving it.
package assets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bilgisen/pubserve/internal/config"
	"github.com/bilgisen/pubserve/internal/logger"
)

// ObjectAPI is the part of the S3 client the mirror needs.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds an S3 client for the configured bucket. A custom
// endpoint (R2, MinIO) switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AssetsRegion),
	}
	if cfg.AssetsAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AssetsAccessKey, cfg.AssetsSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AssetsEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AssetsEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type Mirror struct {
	client ObjectAPI
	bucket string
	prefix string
}

func NewMirror(client ObjectAPI, bucket, prefix string) *Mirror {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Mirror{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Sync downloads every object under the prefix into dest and returns how
// many files were written. Keys that do not map to a local path are skipped.
func (m *Mirror) Sync(ctx context.Context, dest string) (int, error) {
	log := logger.Get()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, fmt.Errorf("failed to create public root: %w", err)
	}

	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.bucket),
		Prefix: aws.String(m.prefix),
	})

	count := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, fmt.Errorf("failed to list bucket %s: %w", m.bucket, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)

			rel, ok := LocalPath(m.prefix, key)
			if !ok {
				log.Debug().Str("key", key).Msg("Skipping object")
				continue
			}

			if err := m.download(ctx, key, filepath.Join(dest, rel)); err != nil {
				return count, err
			}
			count++
		}
	}

	log.Info().
		Str("bucket", m.bucket).
		Str("prefix", m.prefix).
		Int("files", count).
		Msg("Mirrored assets")

	return count, nil
}

func (m *Mirror) download(ctx context.Context, key, target string) error {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, ".mirror-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", key, err)
	}

	return nil
}

// LocalPath maps an object key to a path relative to the public root.
// Folder markers and keys that would land outside the root are rejected.
func LocalPath(prefix, key string) (string, bool) {
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}

	rel := strings.TrimPrefix(key, prefix)
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", false
	}

	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		return "", false
	}

	return rel, true
}

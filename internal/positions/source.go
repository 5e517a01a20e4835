// Package positions loads and parses the options positions feed.
package positions

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/optionwatch/optionwatch/internal/config"
	"github.com/optionwatch/optionwatch/internal/logger"
)

// Source retrieves the positions feed as a single text blob. Failures here
// are fatal for the pass: with no positions there is nothing to evaluate.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// S3Source downloads the positions file from object storage.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Source builds the production positions source.
func NewS3Source(ctx context.Context, cfg config.PositionsConfig) (*S3Source, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &S3Source{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		key:    cfg.Key,
	}, nil
}

// Fetch downloads the positions blob.
func (s *S3Source) Fetch(ctx context.Context) (string, error) {
	logger.Infof("downloading %s from bucket %s", s.key, s.bucket)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to download positions file %s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read positions file body: %w", err)
	}

	logger.Infof("downloaded positions file (%d bytes)", len(data))
	return string(data), nil
}

// FileSource reads positions from a local file, used by dry-run mode.
type FileSource struct {
	Path string
}

// Fetch reads the local positions file.
func (f *FileSource) Fetch(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read positions file %s: %w", f.Path, err)
	}
	return string(data), nil
}

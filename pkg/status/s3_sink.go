package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3SinkConfig configures an s3Sink.
type S3SinkConfig struct {
	Bucket string
	// KeyPrefix is prepended to every archived object's key, e.g.
	// "alhost-status/".
	KeyPrefix string
	// Region is the AWS region; empty uses the SDK default chain.
	Region string
	// Endpoint overrides the S3 endpoint, for S3-compatible services.
	Endpoint string
}

// s3Sink archives Snapshots as individual JSON objects, one per
// Record call, keyed by capture time. Grounded on the client
// construction and PutObject idiom in pkg/blocks/store/s3.Store: load
// AWS config via awsconfig.LoadDefaultConfig, build an *s3.Client with
// functional options.
type s3Sink struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// NewS3Sink builds an s3Sink from cfg, loading AWS credentials from
// the default provider chain.
func NewS3Sink(ctx context.Context, cfg S3SinkConfig) (Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("status: load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &s3Sink{
		client:    s3.NewFromConfig(awsCfg, s3Opts...),
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *s3Sink) Record(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("status: marshal snapshot: %w", err)
	}

	key := fmt.Sprintf("%s%s.json", s.keyPrefix, snap.CapturedAt.UTC().Format("20060102T150405.000000000Z"))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(payload),
	})
	if err != nil {
		return fmt.Errorf("status: upload snapshot to s3: %w", err)
	}
	return nil
}

func (s *s3Sink) Close() error { return nil }

package manifest

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client the publisher uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads manifests to an S3 bucket so deployed trees can be
// inspected and linted without access to the running process.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "us-east-1"})
//	pub := manifest.NewPublisher(client, "my-bucket", "manifests/")
//	key, err := pub.Publish(ctx, m)
type Publisher struct {
	client S3API
	bucket string
	prefix string
}

// NewPublisher creates a publisher targeting bucket. The prefix is
// prepended to every object key.
func NewPublisher(client S3API, bucket, prefix string) *Publisher {
	return &Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Publish uploads the manifest as compact JSON under a timestamped key and
// returns the key.
func (p *Publisher) Publish(ctx context.Context, m *Manifest) (string, error) {
	key := path.Join(p.prefix, fmt.Sprintf("manifest-%s.json", m.GeneratedAt.UTC().Format("20060102T150405Z")))
	if err := p.put(ctx, key, m); err != nil {
		return "", err
	}
	return key, nil
}

// PublishLatest uploads the manifest under a stable "latest" key, for
// consumers that always want the current tree.
func (p *Publisher) PublishLatest(ctx context.Context, m *Manifest) (string, error) {
	key := path.Join(p.prefix, "manifest-latest.json")
	if err := p.put(ctx, key, m); err != nil {
		return "", err
	}
	return key, nil
}

func (p *Publisher) put(ctx context.Context, key string, m *Manifest) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf, false); err != nil {
		return fmt.Errorf("manifest: encode for publish: %w", err)
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"generated-at": m.GeneratedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("manifest: upload %s: %w", key, err)
	}
	return nil
}

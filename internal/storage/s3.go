// Package storage puts invoice images into S3 and hands back a public URL
// plus the object key used for later cleanup.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStore is the object-storage surface the handlers depend on. Delete
// deliberately returns nothing: image cleanup is best-effort and must never
// fail the operation that triggered it, so failures are logged inside the
// implementation and swallowed.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, originalName, contentType string) (url, key string, err error)
	Delete(ctx context.Context, key string)
}

// S3Store implements ImageStore against an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store builds an S3 client from static credentials. Credentials come
// from configuration resolved once at startup, not from ambient environment
// reads inside request handlers.
func NewS3Store(ctx context.Context, region, accessKey, secretKey, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket, region: region}, nil
}

// Upload stores the image under a timestamp-prefixed key that keeps the
// original file name, and returns the object's public URL together with the
// key.
func (s *S3Store) Upload(ctx context.Context, data []byte, originalName, contentType string) (string, string, error) {
	key := fmt.Sprintf("invoices/%d-%s", time.Now().UnixMilli(), originalName)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	return url, key, nil
}

// Delete removes an object by key. Failures are logged and swallowed:
// deleting an invoice must go through even when its image cannot be removed
// from the bucket.
func (s *S3Store) Delete(ctx context.Context, key string) {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("storage: delete %q failed: %v", key, err)
		return
	}
	log.Printf("storage: deleted %q", key)
}

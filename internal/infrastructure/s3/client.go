package s3infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-notify-nosql/internal/config"
)

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ImageResolver turns stored profile references into URLs a device can fetch.
// Absolute URLs pass through; anything else is treated as an object key and
// presigned for ttl.
type ImageResolver struct {
	presigner presigner
	bucket    string
	ttl       time.Duration
}

// NewClient creates an S3 client. When cfg.AWSEndpointURL is set (LocalStack),
// it overrides the endpoint and enables path-style addressing.
func NewClient(awsCfg aws.Config, cfg *config.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		}
	})
}

// NewImageResolver returns a resolver for bucket. An empty bucket disables
// presigning and every reference passes through unchanged.
func NewImageResolver(client *s3.Client, bucket string, ttl time.Duration) *ImageResolver {
	r := &ImageResolver{bucket: bucket, ttl: ttl}
	if client != nil && bucket != "" {
		r.presigner = s3.NewPresignClient(client)
	}
	return r
}

func (r *ImageResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" || isAbsoluteURL(ref) || r.presigner == nil {
		return ref, nil
	}
	key := objectKey(ref, r.bucket)
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign get object %s: %w", key, err)
	}
	return req.URL, nil
}

func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// objectKey accepts bare keys and s3://bucket/key references.
func objectKey(ref, bucket string) string {
	key := strings.TrimPrefix(ref, "s3://"+bucket+"/")
	return strings.TrimPrefix(key, "/")
}

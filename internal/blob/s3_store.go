package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/orbit-landing/pkg/logging"
)

var tracer = otel.Tracer("orbit.internal.blob")

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes avatars to a public-read S3 bucket.
type S3Store struct {
	client        S3API
	bucket        string
	region        string
	publicBaseURL string
	logger        *logging.Logger
}

// NewS3Store creates an S3-backed store. When publicBaseURL is empty, URLs
// point at the bucket's virtual-hosted endpoint.
func NewS3Store(client S3API, bucket, region, publicBaseURL string, logger *logging.Logger) *S3Store {
	if client == nil {
		panic("blob: s3 client required")
	}
	if bucket == "" {
		panic("blob: bucket required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{
		client:        client,
		bucket:        bucket,
		region:        region,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger,
	}
}

func (s *S3Store) Put(ctx context.Context, filename string, body io.Reader, size int64, contentType string) (*Object, error) {
	ctx, span := tracer.Start(ctx, "blob.s3.put")
	defer span.End()

	key, err := avatarKey(filename)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("blob.key", key), attribute.Int64("blob.size", size))

	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               body,
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(contentDisposition(key)),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object failed")
		return nil, fmt.Errorf("blob: s3 put %s: %w", key, err)
	}

	s.logger.Info("avatar stored", "key", key, "size", size, "content_type", contentType)
	return newObject(s.objectURL(key), key, contentType, size), nil
}

func (s *S3Store) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	region := s.region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, region, key)
}

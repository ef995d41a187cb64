// Package storage wraps an S3 compatible object store (MinIO in development).
package storage

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Client is what the rest of the application needs from object storage.
type Client interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) (string, error)
	Remove(ctx context.Context, bucket string, keys ...string) error
	Exists(ctx context.Context, bucket, key string) (bool, error)
	ListBuckets(ctx context.Context) ([]string, error)
	PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListBuckets(ctx context.Context, in *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

type S3Client struct {
	api       s3API
	presigner *s3.PresignClient
}

// NewS3Client uses path style addressing so bucket names need no DNS entries.
func NewS3Client(ctx context.Context, cfg Config) (*S3Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Client{api: client, presigner: s3.NewPresignClient(client)}, nil
}

// Upload returns the stored object key.
func (c *S3Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", classify("upload", bucket, key, err)
	}
	return key, nil
}

func (c *S3Client) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}

	out, err := c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return classify("remove", bucket, keys[0], err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return &Error{
			Kind:   kindFromCode(aws.ToString(first.Code)),
			Op:     "remove",
			Bucket: bucket,
			Key:    aws.ToString(first.Key),
			Err:    errString(aws.ToString(first.Message)),
		}
	}
	return nil
}

func (c *S3Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	err = classify("head", bucket, key, err)
	if IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (c *S3Client) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, classify("list buckets", "", "", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

func (c *S3Client) PresignGet(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", classify("presign", bucket, key, err)
	}
	return req.URL, nil
}

func kindFromCode(code string) Kind {
	switch {
	case authCodes[code]:
		return KindAuth
	case notFoundCodes[code]:
		return KindNotFound
	}
	return KindOther
}

type errString string

func (e errString) Error() string { return string(e) }

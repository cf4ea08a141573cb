package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Putter is the part of the S3 client the uploader uses.
type S3Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes private objects into one bucket.
type Uploader struct {
	s3     S3Putter
	bucket string
}

func NewUploader(client S3Putter, bucket string) *Uploader {
	return &Uploader{s3: client, bucket: bucket}
}

func (u *Uploader) Bucket() string { return u.bucket }

// Upload stores data under key and returns its s3:// URI.
func (u *Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if u.bucket == "" {
		return "", errors.New("S3_BUCKET not set")
	}
	_, err := u.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}

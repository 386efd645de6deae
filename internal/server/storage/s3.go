// Package storage holds the picture upload collaborator. Portfolio pictures
// go to an S3-compatible backend (MinIO in development); only the returned
// URL is persisted with the portfolio.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	sc "github.com/staffolio/staffolio/internal/server/config"
)

// PictureStore uploads picture bytes and returns a reference URL.
type PictureStore interface {
	Upload(ctx context.Context, contentType string, data []byte) (string, error)
}

// test seams
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

type S3PictureStore struct {
	config *sc.Config
}

func NewS3PictureStore(config *sc.Config) *S3PictureStore {
	return &S3PictureStore{config: config}
}

func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("portfolios/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3PictureStore) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Upload stores data under a date-bucketed random key and returns the
// public URL of the object.
func (s *S3PictureStore) Upload(ctx context.Context, contentType string, data []byte) (string, error) {

	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey()

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	ref, err := url.JoinPath(s.config.S3BaseEndpoint, bucket, key)
	if err != nil {
		return "", err
	}

	return ref, nil
}

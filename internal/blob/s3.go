package blob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 uploads through the transfer manager and links objects with
// presigned GET URLs.
type S3 struct {
	Client   *s3.Client
	Uploader *manager.Uploader
	Presign  *s3.PresignClient
	Bucket   string
	Expiry   time.Duration
}

// NewS3 builds the client from the default AWS credential chain.
func NewS3(ctx context.Context, bucket string) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3{
		Client:   client,
		Uploader: manager.NewUploader(client),
		Presign:  s3.NewPresignClient(client),
		Bucket:   bucket,
		Expiry:   24 * time.Hour,
	}, nil
}

func (s *S3) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	_, err := s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	return err
}

func (s *S3) URL(ctx context.Context, key string) (string, error) {
	if _, err := s.Client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.Bucket), Key: aws.String(key)}); err != nil {
		return "", err
	}
	req, err := s.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.Expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

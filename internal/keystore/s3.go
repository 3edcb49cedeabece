package keystore

import (
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/openews/report-server/internal/appconfig"
	"github.com/openews/report-server/internal/models"
)

type S3Store struct {
	Client   *s3.Client
	BlobPath string
}

func NewS3Store(ctx context.Context, conf appconfig.S3StorageConfig, blobPath string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		Client:   client,
		BlobPath: blobPath,
	}, nil
}

// Read treats the container segment of the blob path as the bucket name and
// the remainder as the object key.
func (s *S3Store) Read(ctx context.Context, blobPath string) (string, error) {
	bucket, key := SplitPath(blobPath)

	resp, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.Join(ErrStoreRead, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Join(ErrStoreRead, err)
	}
	return string(b), nil
}

func (s *S3Store) Health(ctx context.Context) (rsp models.ServiceHealthResp) {
	rsp.Service = models.KEY_STORE
	rsp.Status = models.STATUS_UP
	rsp.HealthIssue = models.HEALTH_ISSUE_NONE

	bucket, _ := SplitPath(s.BlobPath)
	if _, err := s.Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return rsp.BuildErrorResponse(err)
	}
	return rsp
}

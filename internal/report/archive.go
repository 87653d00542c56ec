package report

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of the S3 client the archiver uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads rejection reports under prefix/YYYY/MM/DD/<session>.xlsx.
type S3Archiver struct {
	client PutObjectAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Archiver loads the default AWS credential chain for region.
func NewS3Archiver(ctx context.Context, region, bucket, prefix string) (*S3Archiver, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewArchiver(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewArchiver wraps an existing client.
func NewArchiver(client PutObjectAPI, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// Archive implements core.ReportArchiver and returns the s3:// location.
func (a *S3Archiver) Archive(ctx context.Context, sessionID string, c core.Classification) (string, error) {
	data, err := Bytes(c, sessionID)
	if err != nil {
		return "", fmt.Errorf("build report: %w", err)
	}

	key := path.Join(a.prefix, a.now().UTC().Format("2006/01/02"), sessionID+".xlsx")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

var _ core.ReportArchiver = (*S3Archiver)(nil)

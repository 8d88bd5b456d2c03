// Package media publishes normalized product images to S3-compatible object
// storage so records can carry a URL instead of an inline data URI.
package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"kingdavid/internal/config"
)

const folder = "products"

type S3Publisher struct {
	client    *s3.S3
	bucket    string
	publicURL string
}

func NewS3Publisher(cfg config.Media) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("media: bucket not configured")
	}
	awsCfg := &aws.Config{
		Region:     aws.String(cfg.Region),
		MaxRetries: aws.Int(1),
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("media: session: %w", err)
	}
	return &S3Publisher{
		client:    s3.New(sess),
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
	}, nil
}

func publicBase(cfg config.Media) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Publish stores a JPEG under products/<uuid>.jpg and returns its public URL.
func (p *S3Publisher) Publish(ctx context.Context, jpeg []byte) (string, error) {
	key := fmt.Sprintf("%s/%s.jpg", folder, uuid.NewString())
	_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(jpeg),
		ContentLength: aws.Int64(int64(len(jpeg))),
		ContentType:   aws.String("image/jpeg"),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("media: upload %s: %w", key, err)
	}
	return p.publicURL + "/" + key, nil
}

// Package storage uploads animal photos and avatars to an S3 bucket
// and hands back public URLs. The rest of the system treats it as an
// opaque blob store: the database only ever sees the returned URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrNotConfigured is returned when no bucket is configured; upload
// endpoints translate it into a 503.
var ErrNotConfigured = errors.New("photo storage not configured")

// Uploader writes objects to one bucket under a folder-per-kind
// layout (avatars/, animals/) and returns their public URL.
type Uploader struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

// NewUploader builds an Uploader from the default AWS credential
// chain. An empty bucket yields a nil, disabled uploader rather than
// an error, so deployments without storage still boot.
func NewUploader(ctx context.Context, bucket, region, publicBase string) (*Uploader, error) {
	if bucket == "" {
		return nil, nil
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &Uploader{
		client:     s3.NewFromConfig(cfg),
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload stores the blob under kind/<uuid><ext> and returns its
// public URL. The original filename only contributes its extension;
// object keys are always fresh UUIDs so uploads can never collide or
// overwrite.
func (u *Uploader) Upload(ctx context.Context, kind, filename, contentType string, body io.Reader) (string, error) {
	if u == nil {
		return "", ErrNotConfigured
	}
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), ext)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return u.publicBase + "/" + key, nil
}

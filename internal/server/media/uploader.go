// Package media stores profile images on S3-compatible object storage.
//
// References handed back to callers are plain URLs; the rest of the server
// treats them as opaque strings.
package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/google/uuid"
)

// Uploader is the MediaUploadService consumed by the profile service.
type Uploader interface {
	// Upload sends the staged file to storage and returns its reference.
	// The staged file is removed whether or not the upload succeeded.
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, ref string) error
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
)

// Options configure an S3Uploader.
type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
}

type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewS3Uploader(ctx context.Context, opts Options) (*S3Uploader, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, common.NewError(common.ErrConfiguration, "load object storage config").WithCause(err)
	}

	endpoint := strings.TrimRight(opts.BaseEndpoint, "/")
	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &S3Uploader{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: endpoint + "/" + opts.Bucket + "/",
		now:     time.Now,
	}, nil
}

// objectKey lays objects out by upload date.
func (u *S3Uploader) objectKey(localPath string) string {
	d := u.now().UTC()
	ext := strings.ToLower(filepath.Ext(localPath))
	return fmt.Sprintf("media/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), ext)
}

func (u *S3Uploader) Upload(ctx context.Context, localPath string) (ref string, err error) {
	if localPath == "" {
		return "", common.NewError(common.ErrValidation, "file is required")
	}
	defer func() {
		if rmErr := filex.RemoveStaged(localPath); rmErr != nil && err == nil {
			err = rmErr
			ref = ""
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return "", common.NewError(common.ErrValidation, "staged file is not readable").WithCause(err)
	}
	defer f.Close()

	key := u.objectKey(localPath)
	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if err := putObject(u.client, ctx, in); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return u.baseURL + key, nil
}

// Delete removes the object behind ref. References that do not point into
// this bucket are rejected with a validation error.
func (u *S3Uploader) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, u.baseURL)
	if !ok || key == "" {
		return common.NewError(common.ErrValidation, "reference is not managed by this storage")
	}

	err := deleteObject(u.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Package media stores uploaded post attachments in S3-compatible object
// storage and returns their public URL.
package media

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/pointfeed/internal/common"
	"github.com/google/uuid"
)

// FileType is the kind of attachment.
type FileType string

const (
	FileTypeImage FileType = "IMAGE"
	FileTypeVideo FileType = "VIDEO"
)

// Upload is an attachment received with a post.
type Upload struct {
	Filename string
	FileType FileType
	Content  []byte
}

// Uploader stores an attachment and returns a URL it can be fetched from.
type Uploader interface {
	Upload(ctx context.Context, u *Upload) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig
	newS3Client          = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Options configures S3Uploader.
type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	MaxSizeKB int
}

// S3Uploader puts objects with a public-read ACL and returns path-style URLs.
type S3Uploader struct {
	opts S3Options
	now  func() time.Time

	mu     sync.Mutex
	client objectPutter
}

func NewS3Uploader(opts S3Options) *S3Uploader {
	return &S3Uploader{opts: opts, now: time.Now}
}

func (u *S3Uploader) getClient(ctx context.Context) (objectPutter, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.client != nil {
		return u.client, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.opts.AccessKey,
			u.opts.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	u.client = newS3Client(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(u.opts.Endpoint)
		o.UsePathStyle = true
	})
	return u.client, nil
}

// Validate checks type and size without touching storage.
func (u *S3Uploader) Validate(up *Upload) error {
	switch up.FileType {
	case FileTypeImage, FileTypeVideo:
	default:
		return fmt.Errorf("%w: %q", common.ErrorUnknownMediaType, up.FileType)
	}
	if u.opts.MaxSizeKB > 0 && len(up.Content) > u.opts.MaxSizeKB*1024 {
		return common.ErrorMediaTooLarge
	}
	return nil
}

// Upload stores up under "<unix-ms>_<filename>".
func (u *S3Uploader) Upload(ctx context.Context, up *Upload) (string, error) {
	if err := u.Validate(up); err != nil {
		return "", err
	}

	client, err := u.getClient(ctx)
	if err != nil {
		return "", err
	}

	key := u.objectKey(up.Filename)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(up.Content),
		ContentLength: aws.Int64(int64(len(up.Content))),
		ContentType:   aws.String(http.DetectContentType(up.Content)),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return u.objectURL(key), nil
}

func (u *S3Uploader) objectKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = uuid.NewString()
	}
	return fmt.Sprintf("%d_%s", u.now().UnixMilli(), name)
}

func (u *S3Uploader) objectURL(key string) string {
	return strings.TrimRight(u.opts.Endpoint, "/") + "/" + u.opts.Bucket + "/" + key
}

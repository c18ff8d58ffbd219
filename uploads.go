package portfolio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const uploadsSubdir = "uploads"

// Uploads stores processed image files and reports the URL they are served from.
type Uploads interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// NewUploads builds the backend selected by cfg.Uploads.
func NewUploads(cfg SiteConfig) (Uploads, error) {
	switch cfg.Uploads.Backend {
	case "", "local":
		return LocalUploads{Dir: filepath.Join(cfg.StaticDir, uploadsSubdir), BaseURL: "/public/" + uploadsSubdir}, nil
	case "s3":
		return NewS3Uploads(cfg.Uploads.S3)
	}
	return nil, fmt.Errorf("unknown uploads backend %q", cfg.Uploads.Backend)
}

// cleanName rejects names that could escape the upload directory.
func cleanName(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return name, nil
}

// LocalUploads writes files below Dir, served by the static handler at BaseURL.
type LocalUploads struct {
	Dir     string
	BaseURL string
}

func (l LocalUploads) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return l.BaseURL + "/" + name, nil
}

func (l LocalUploads) Delete(_ context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l LocalUploads) Exists(_ context.Context, name string) (bool, error) {
	name, err := cleanName(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(filepath.Join(l.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// S3Uploads writes files to an S3 compatible bucket under the uploads/ prefix.
type S3Uploads struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Uploads creates a client with static credentials from cfg.
func NewS3Uploads(cfg S3Config) (*S3Uploads, error) {
	if cfg.Bucket == "" || cfg.Region == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.PathStyle,
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		if endpoint != "" {
			publicURL = endpoint + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Uploads{client: s3.New(opts), bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func objectKey(name string) string {
	return path.Join(uploadsSubdir, name)
}

func (u *S3Uploads) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(objectKey(name)),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3 object: %w", err)
	}
	return u.publicURL + "/" + objectKey(name), nil
}

func (u *S3Uploads) Delete(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	_, err = u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(objectKey(name)),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object: %w", err)
	}
	return nil
}

func (u *S3Uploads) Exists(ctx context.Context, name string) (bool, error) {
	name, err := cleanName(name)
	if err != nil {
		return false, err
	}
	_, err = u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(objectKey(name)),
	})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, fmt.Errorf("head s3 object: %w", err)
}

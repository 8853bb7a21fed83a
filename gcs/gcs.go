package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"marketplace-hub/logger"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

type objectWriter interface {
	io.Writer
	Close() error
}

// Uploader stores product images in one Google Cloud Storage bucket.
type Uploader struct {
	client    *storage.Client
	bucket    string
	newWriter func(ctx context.Context, object, contentType string) objectWriter
}

// NewUploader connects to Cloud Storage and checks the bucket is reachable.
// credentialsFile may be empty to use application default credentials.
func NewUploader(ctx context.Context, bucket, credentialsFile string) (*Uploader, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect cloud storage: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %s not accessible: %w", bucket, err)
	}
	logger.FromContext(ctx).Info("cloud storage ready", zap.String("bucket", bucket))

	u := &Uploader{client: client, bucket: bucket}
	u.newWriter = func(ctx context.Context, object, contentType string) objectWriter {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}
	return u, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// Upload writes r under folder with a unique name and returns the public URL.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, contentType, folder string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	object := fmt.Sprintf("%s/%s_%d.%s", folder, uuid.NewString(), time.Now().UnixNano(), extensionFor(contentType))

	w := u.newWriter(ctx, object, contentType)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("copy %s to bucket: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", object, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, object)
	logger.FromContext(ctx).Info("image uploaded", zap.String("object", object))
	return url, nil
}

func (u *Uploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}

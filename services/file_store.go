package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/snap-point/fieldtrack/config"
)

var ErrFileNotFound = errors.New("file not found in storage")

// FileStore persists the raw bytes of submitted files. Put callers should pass
// a seekable body so the S3 client can size and sign the request.
type FileStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// DownloadURL returns a direct link to the object, or "" when the
	// bytes must be streamed through the API.
	DownloadURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// GenerateFileKey builds uploads/<session>/<unix>_<uuid><ext>.
func GenerateFileKey(sessionID, fileName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("uploads/%s/%d_%s%s", sessionID, now.Unix(), uuid.New().String(), ext)
}

// MemoryFileStore keeps blobs in process memory. Everything is lost on restart.
type MemoryFileStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{blobs: make(map[string][]byte)}
}

func (m *MemoryFileStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryFileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryFileStore) DownloadURL(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (m *MemoryFileStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryFileStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// R2FileStore stores blobs in a Cloudflare R2 bucket through the S3 API.
type R2FileStore struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Config    config.R2Config
	URLExpiry time.Duration
}

func NewR2FileStore(cfg config.R2Config) *R2FileStore {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region: cfg.Region,
	})

	return &R2FileStore{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Config:    cfg,
		URLExpiry: 15 * time.Minute,
	}
}

func (r *R2FileStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.Config.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (r *R2FileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := r.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return out.Body, nil
}

func (r *R2FileStore) DownloadURL(ctx context.Context, key string) (string, error) {
	if r.Config.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(r.Config.PublicURL, "/"), key), nil
	}

	req, err := r.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.Config.BucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = r.URLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (r *R2FileStore) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.Config.BucketName),
		Key:    aws.String(key),
	})
	return err
}

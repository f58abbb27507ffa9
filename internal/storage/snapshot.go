// Package storage persists the offline institution snapshot, either on the
// local filesystem or in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"campus-directory/internal/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrSnapshotNotFound is returned when no snapshot has been published yet.
var ErrSnapshotNotFound = errors.New("institution snapshot not found")

// SnapshotStore reads and writes the institution snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, institutions []models.Institution) error
	Load(ctx context.Context) ([]models.Institution, error)
}

// FileStore keeps the snapshot as pretty-printed JSON at path.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(_ context.Context, institutions []models.Institution) error {
	data, err := encodeSnapshot(institutions)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *FileStore) Load(_ context.Context) ([]models.Institution, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var out []models.Institution
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return out, nil
}

// S3Store keeps the snapshot as a single object in a MinIO/S3 bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	object string
}

// S3Options configures NewS3Store.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Object    string
}

func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more required settings: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}
	if opts.Bucket == "" || opts.Object == "" {
		return nil, fmt.Errorf("snapshot bucket and object are required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &S3Store{client: client, bucket: opts.Bucket, object: opts.Object}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region})
}

// Save overwrites the snapshot object.
func (s *S3Store) Save(ctx context.Context, institutions []models.Institution) error {
	data, err := encodeSnapshot(institutions)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.object,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to store snapshot in S3: %w", err)
	}
	return nil
}

func (s *S3Store) Load(ctx context.Context) ([]models.Institution, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot from S3: %w", err)
	}
	defer obj.Close()

	var out []models.Institution
	if err := json.NewDecoder(obj).Decode(&out); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return out, nil
}

func encodeSnapshot(institutions []models.Institution) ([]byte, error) {
	if institutions == nil {
		institutions = []models.Institution{}
	}
	data, err := json.MarshalIndent(institutions, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

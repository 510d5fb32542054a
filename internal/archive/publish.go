package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/errors"
)

// URLExpiry is how long a published archive link stays valid.
const URLExpiry = time.Hour

const defaultRegion = "us-east-1"

// Publisher stores a run's archive and returns a link to it.
type Publisher interface {
	Publish(ctx context.Context, runID, projectName string, data []byte) (string, error)
}

// ObjectKey is where a run's archive is stored: <run_id>/<project>.zip.
func ObjectKey(runID, projectName string) string {
	return strings.TrimSpace(runID) + "/" + FileName(projectName)
}

// S3Publisher publishes archives to an S3-compatible bucket.
type S3Publisher struct {
	client *minio.Client
	bucket string
	region string

	initOnce sync.Once
	initErr  error
}

var _ Publisher = (*S3Publisher)(nil)

// NewS3Publisher builds a publisher from cfg. It returns ErrArchiveDisabled
// when publishing is turned off.
func NewS3Publisher(cfg config.S3Config) (*S3Publisher, error) {
	if !cfg.Enabled {
		return nil, errors.ErrArchiveDisabled
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	bucket := strings.TrimSpace(cfg.Bucket)
	if endpoint == "" || bucket == "" {
		return nil, errors.Wrap(errors.ErrConfigInvalidArchive, "endpoint and bucket are required")
	}
	access, secret := cfg.Credentials()
	if strings.TrimSpace(access) == "" || strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: %s and %s must be set", errors.ErrMissingCredential, cfg.AccessKeyEnv, cfg.SecretKeyEnv)
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(access), strings.TrimSpace(secret), ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "init s3 client")
	}
	return &S3Publisher{client: client, bucket: bucket, region: region}, nil
}

func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Publish uploads data and returns a presigned download URL.
func (p *S3Publisher) Publish(ctx context.Context, runID, projectName string, data []byte) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", errors.Wrap(errors.ErrInvalidArgument, "run id is required")
	}
	if err := p.ensureBucket(ctx); err != nil {
		return "", errors.Wrap(err, "ensure bucket")
	}

	key := ObjectKey(runID, projectName)
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", key)
	}

	u, err := p.client.PresignedGetObject(ctx, p.bucket, key, URLExpiry, nil)
	if err != nil {
		return "", errors.Wrapf(err, "presign %s", key)
	}
	return u.String(), nil
}

// MemoryPublisher keeps archives in memory. It backs tests and local runs
// without object storage.
type MemoryPublisher struct {
	mu      sync.Mutex
	objects map[string][]byte
	// Err, when set, is returned by every Publish call.
	Err error
}

var _ Publisher = (*MemoryPublisher)(nil)

// NewMemoryPublisher creates an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{objects: make(map[string][]byte)}
}

// Publish implements Publisher. The returned link is a mem:// URL.
func (m *MemoryPublisher) Publish(_ context.Context, runID, projectName string, data []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	key := ObjectKey(runID, projectName)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = bytes.Clone(data)
	return "mem://" + key, nil
}

// Get returns a stored archive.
func (m *MemoryPublisher) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps every document as a JSON object in an S3 compatible bucket.
type S3Store struct {
	mu sync.RWMutex

	client     *minio.Client
	bucketName string
	prefix     string
}

// S3Config holds the connection parameters of the object store
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Store{
		client:     client,
		bucketName: cfg.Bucket,
		prefix:     prefix,
	}, nil
}

func (ss *S3Store) objectKey(path string) string {
	return ss.prefix + documentKey(path) + ".json"
}

func (*S3Store) Name() string {
	return "s3"
}

// Connect makes sure the configured bucket exists and creates it otherwise
func (ss *S3Store) Connect(ctx context.Context) error {
	exists, err := ss.client.BucketExists(ctx, ss.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return ss.client.MakeBucket(ctx, ss.bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

func (ss *S3Store) Close() error {
	return nil
}

func (ss *S3Store) Migrate(ctx context.Context) error {
	return nil
}

func (ss *S3Store) Health(ctx context.Context) error {
	exists, err := ss.client.BucketExists(ctx, ss.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket '%s' does not exist", ss.bucketName)
	}
	return nil
}

func (ss *S3Store) Insert(ctx context.Context, doc *Document) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	key := ss.objectKey(doc.Path)
	if _, err := ss.client.StatObject(ctx, ss.bucketName, key, minio.StatObjectOptions{}); err == nil {
		return ErrExists
	} else if !isNoSuchKey(err) {
		return err
	}

	stored := doc.Clone()
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	return ss.put(ctx, key, stored)
}

func (ss *S3Store) Update(ctx context.Context, doc *Document) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	key := ss.objectKey(doc.Path)
	existing, err := ss.get(ctx, key)
	if err != nil {
		return err
	}

	stored := doc.Clone()
	stored.ID = existing.ID
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()

	return ss.put(ctx, key, stored)
}

func (ss *S3Store) Delete(ctx context.Context, query Query) (int, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	docs, err := ss.scan(ctx, query)
	if err != nil {
		return 0, err
	}

	for _, doc := range docs {
		if err := ss.client.RemoveObject(ctx, ss.bucketName, ss.objectKey(doc.Path), minio.RemoveObjectOptions{}); err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}

func (ss *S3Store) Find(ctx context.Context, query Query) ([]*Document, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.scan(ctx, query)
}

func (ss *S3Store) FindOne(ctx context.Context, query Query) (*Document, error) {
	docs, err := ss.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return first(docs)
}

func (ss *S3Store) scan(ctx context.Context, query Query) ([]*Document, error) {
	if path, ok := query.Path(); ok {
		doc, err := ss.get(ctx, ss.objectKey(path))
		if err == ErrNotFound {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return filterDocuments([]*Document{doc}, query), nil
	}

	objectsCh := ss.client.ListObjects(ctx, ss.bucketName, minio.ListObjectsOptions{
		Prefix:    ss.prefix,
		Recursive: true,
	})

	var docs []*Document
	for object := range objectsCh {
		if object.Err != nil {
			return nil, object.Err
		}
		if !strings.HasSuffix(object.Key, ".json") {
			continue
		}

		doc, err := ss.get(ctx, object.Key)
		if err != nil {
			return nil, fmt.Errorf("object '%s': %w", object.Key, err)
		}
		docs = append(docs, doc)
	}

	return filterDocuments(docs, query), nil
}

func (ss *S3Store) get(ctx context.Context, key string) (*Document, error) {
	obj, err := ss.client.GetObject(ctx, ss.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return decodeDocument(data)
}

func (ss *S3Store) put(ctx context.Context, key string, doc *Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	_, err = ss.client.PutObject(ctx, ss.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

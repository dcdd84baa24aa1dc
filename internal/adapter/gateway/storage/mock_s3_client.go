package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockS3Client is an in-memory S3API for tests and offline runs.
// Listing honours MaxKeys and continuation tokens so paging code is exercised.
type MockS3Client struct {
	mu      sync.RWMutex
	objects map[string][]byte // "<bucket>/<key>" -> body
	pageMax int32
}

// NewMockS3Client creates an empty mock client
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		objects: make(map[string][]byte),
		pageMax: 1000,
	}
}

// SetPageSize limits how many keys one ListObjectsV2 call returns
func (m *MockS3Client) SetPageSize(n int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageMax = n
}

func objectID(bucket, key *string) string {
	return aws.ToString(bucket) + "/" + aws.ToString(key)
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectID(params.Bucket, params.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	body, exists := m.objects[objectID(params.Bucket, params.Key)]
	if !exists {
		return nil, &types.NoSuchKey{
			Message: aws.String(fmt.Sprintf("The specified key does not exist: %s", aws.ToString(params.Key))),
		}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucketPrefix := aws.ToString(params.Bucket) + "/"
	prefix := aws.ToString(params.Prefix)

	var keys []string
	for id := range m.objects {
		if !strings.HasPrefix(id, bucketPrefix) {
			continue
		}
		key := strings.TrimPrefix(id, bucketPrefix)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	// The continuation token is the last key of the previous page
	if token := aws.ToString(params.ContinuationToken); token != "" {
		start := sort.SearchStrings(keys, token)
		for start < len(keys) && keys[start] <= token {
			start++
		}
		keys = keys[start:]
	}

	limit := int(m.pageMax)
	if params.MaxKeys != nil && int(*params.MaxKeys) < limit {
		limit = int(*params.MaxKeys)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if len(keys) > limit {
		keys = keys[:limit]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[len(keys)-1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	out.KeyCount = aws.Int32(int32(len(out.Contents)))
	return out, nil
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectID(params.Bucket, params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// ObjectCount returns the number of stored objects (for testing)
func (m *MockS3Client) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

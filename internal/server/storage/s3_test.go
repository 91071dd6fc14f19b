package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageKey_Unique(t *testing.T) {
	k1 := NewStorageKey()
	k2 := NewStorageKey()
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "documents/"))
}

func TestS3Store_PutGet_ThroughSeams(t *testing.T) {
	origPut, origGet := putObject, getObject
	t.Cleanup(func() { putObject, getObject = origPut, origGet })

	var gotBucket, gotKey, gotContentType string
	var gotBody []byte

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotBucket = *in.Bucket
		gotKey = *in.Key
		gotContentType = *in.ContentType
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		gotBody = b
		return &s3.PutObjectOutput{}, nil
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		assert.Equal(t, gotKey, *in.Key)
		return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(gotBody)))}, nil
	}

	store := &S3Store{bucket: "documents"}
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "documents/2025/6/1/abc", []byte("payload"), "application/pdf"))
	assert.Equal(t, "documents", gotBucket)
	assert.Equal(t, "application/pdf", gotContentType)

	data, err := store.Get(ctx, "documents/2025/6/1/abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestS3Store_PutError(t *testing.T) {
	origPut := putObject
	t.Cleanup(func() { putObject = origPut })

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket missing")
	}

	store := &S3Store{bucket: "documents"}
	err := store.Put(context.Background(), "k", []byte("x"), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 put")
}

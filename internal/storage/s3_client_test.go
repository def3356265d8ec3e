package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3API implements S3API with per-call function fields.
type mockS3API struct {
	putObjectFunc               func(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	createMultipartUploadFunc   func(ctx context.Context, in *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	uploadPartFunc              func(ctx context.Context, in *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	completeMultipartUploadFunc func(ctx context.Context, in *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	abortMultipartUploadFunc    func(ctx context.Context, in *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
	deleteObjectFunc            func(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	headObjectFunc              func(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

func (m *mockS3API) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putObjectFunc(ctx, in, opts...)
}

func (m *mockS3API) CreateMultipartUpload(ctx context.Context, in *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return m.createMultipartUploadFunc(ctx, in, opts...)
}

func (m *mockS3API) UploadPart(ctx context.Context, in *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return m.uploadPartFunc(ctx, in, opts...)
}

func (m *mockS3API) CompleteMultipartUpload(ctx context.Context, in *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return m.completeMultipartUploadFunc(ctx, in, opts...)
}

func (m *mockS3API) AbortMultipartUpload(ctx context.Context, in *s3.AbortMultipartUploadInput, opts ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return m.abortMultipartUploadFunc(ctx, in, opts...)
}

func (m *mockS3API) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return m.deleteObjectFunc(ctx, in, opts...)
}

func (m *mockS3API) HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return m.headObjectFunc(ctx, in, opts...)
}

func testClient(api S3API) *Client {
	return NewClientWithAPI(S3Config{Region: "us-east-1", Bucket: "test-bucket"}, api)
}

func TestInitiateMultipart(t *testing.T) {
	t.Run("returns the upload id", func(t *testing.T) {
		c := testClient(&mockS3API{
			createMultipartUploadFunc: func(ctx context.Context, in *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
				assert.Equal(t, "test-bucket", aws.ToString(in.Bucket))
				assert.Equal(t, "videos/a.mp4", aws.ToString(in.Key))
				return &s3.CreateMultipartUploadOutput{UploadId: aws.String("u-1")}, nil
			},
		})
		id, err := c.InitiateMultipart(context.Background(), "videos/a.mp4", "video/mp4", nil)
		require.NoError(t, err)
		assert.Equal(t, "u-1", id)
	})

	t.Run("rejects an empty upload id", func(t *testing.T) {
		c := testClient(&mockS3API{
			createMultipartUploadFunc: func(ctx context.Context, in *s3.CreateMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
				return &s3.CreateMultipartUploadOutput{}, nil
			},
		})
		_, err := c.InitiateMultipart(context.Background(), "k", "video/mp4", nil)
		assert.ErrorContains(t, err, "empty upload id")
	})
}

func TestUploadPartRejectsEmptyETag(t *testing.T) {
	c := testClient(&mockS3API{
		uploadPartFunc: func(ctx context.Context, in *s3.UploadPartInput, opts ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
			return &s3.UploadPartOutput{}, nil
		},
	})
	_, err := c.UploadPart(context.Background(), "k", "u-1", 1, nil, 0)
	assert.ErrorContains(t, err, "empty etag")
}

func TestCompleteMultipartSortsParts(t *testing.T) {
	var submitted []int32
	c := testClient(&mockS3API{
		completeMultipartUploadFunc: func(ctx context.Context, in *s3.CompleteMultipartUploadInput, opts ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
			for _, p := range in.MultipartUpload.Parts {
				submitted = append(submitted, aws.ToInt32(p.PartNumber))
			}
			return &s3.CompleteMultipartUploadOutput{ETag: aws.String("final")}, nil
		},
	})

	parts := []CompletedPart{
		{PartNumber: 3, ETag: "e3"},
		{PartNumber: 1, ETag: "e1"},
		{PartNumber: 2, ETag: "e2"},
	}
	etag, err := c.CompleteMultipart(context.Background(), "k", "u-1", parts)
	require.NoError(t, err)
	assert.Equal(t, "final", etag)
	assert.Equal(t, []int32{1, 2, 3}, submitted)
	// caller's slice is untouched
	assert.Equal(t, int32(3), parts[0].PartNumber)
}

func TestObjectExists(t *testing.T) {
	c := testClient(&mockS3API{
		headObjectFunc: func(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			if aws.ToString(in.Key) == "present" {
				return &s3.HeadObjectOutput{}, nil
			}
			return nil, errors.New("NotFound")
		},
	})
	assert.True(t, c.ObjectExists(context.Background(), "present"))
	assert.False(t, c.ObjectExists(context.Background(), "absent"))
}

func TestObjectURL(t *testing.T) {
	t.Run("default virtual-hosted style", func(t *testing.T) {
		c := testClient(&mockS3API{})
		assert.Equal(t, "https://test-bucket.s3.amazonaws.com/images/a.png", c.ObjectURL("images/a.png"))
	})

	t.Run("public base override", func(t *testing.T) {
		c := NewClientWithAPI(S3Config{Bucket: "b", PublicBase: "https://cdn.example.com"}, &mockS3API{})
		assert.Equal(t, "https://cdn.example.com/images/a.png", c.ObjectURL("images/a.png"))
	})

	t.Run("empty key", func(t *testing.T) {
		c := testClient(&mockS3API{})
		assert.Equal(t, "", c.ObjectURL(""))
	})
}

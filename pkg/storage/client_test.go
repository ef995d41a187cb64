package storage

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	putErr    error
	headErr   error
	deleteOut *s3.DeleteObjectsOutput
	deleted   []string
	puts      []string
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.PutObjectOutput{}, f.putErr
}

func (f *fakeS3) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, o := range in.Delete.Objects {
		f.deleted = append(f.deleted, aws.ToString(o.Key))
	}
	if f.deleteOut != nil {
		return f.deleteOut, nil
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, f.headErr
}

func (f *fakeS3) ListBuckets(ctx context.Context, in *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return &s3.ListBucketsOutput{Buckets: []types.Bucket{{Name: aws.String("case-documents")}, {Name: aws.String("documents")}}}, nil
}

func statusErr(status int) error {
	return &smithy.OperationError{
		ServiceID:     "S3",
		OperationName: "PutObject",
		Err: &awshttp.ResponseError{
			ResponseError: &smithyhttp.ResponseError{
				Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
				Err:      errors.New("status"),
			},
		},
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		err  error
		kind Kind
	}{
		"access denied code":  {&smithy.GenericAPIError{Code: "AccessDenied"}, KindAuth},
		"bad signature code":  {&smithy.GenericAPIError{Code: "SignatureDoesNotMatch"}, KindAuth},
		"missing bucket code": {&smithy.GenericAPIError{Code: "NoSuchBucket"}, KindNotFound},
		"forbidden status":    {statusErr(http.StatusForbidden), KindAuth},
		"not found status":    {statusErr(http.StatusNotFound), KindNotFound},
		"server error":        {statusErr(http.StatusServiceUnavailable), KindUnavailable},
		"bad request":         {statusErr(http.StatusBadRequest), KindOther},
		"no response": {&smithy.OperationError{
			ServiceID: "S3", OperationName: "PutObject", Err: errors.New("dial tcp: connection refused"),
		}, KindUnavailable},
		"plain": {errors.New("boom"), KindOther},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := classify("upload", "b", "k", tc.err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.ErrorIs(t, err, tc.err)
		})
	}
	assert.NoError(t, classify("upload", "b", "k", nil))
}

func TestUploadWrapsSDKError(t *testing.T) {
	api := &fakeS3{putErr: &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}}
	c := &S3Client{api: api}

	_, err := c.Upload(context.Background(), "case-documents", "cases/1/a.pdf", "application/pdf", strings.NewReader("x"), 1)
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, []string{"case-documents/cases/1/a.pdf"}, api.puts)
}

func TestExistsTreatsNotFoundAsFalse(t *testing.T) {
	c := &S3Client{api: &fakeS3{headErr: statusErr(http.StatusNotFound)}}
	ok, err := c.Exists(context.Background(), "b", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	c = &S3Client{api: &fakeS3{}}
	ok, err = c.Exists(context.Background(), "b", "k")
	require.NoError(t, err)
	assert.True(t, ok)

	c = &S3Client{api: &fakeS3{headErr: statusErr(http.StatusForbidden)}}
	_, err = c.Exists(context.Background(), "b", "k")
	assert.True(t, IsAuth(err))
}

func TestRemoveReportsPerObjectErrors(t *testing.T) {
	api := &fakeS3{deleteOut: &s3.DeleteObjectsOutput{Errors: []types.Error{{
		Key: aws.String("k1"), Code: aws.String("AccessDenied"), Message: aws.String("denied"),
	}}}}
	c := &S3Client{api: api}

	err := c.Remove(context.Background(), "b", "k1")
	require.Error(t, err)
	assert.True(t, IsAuth(err))
	assert.Equal(t, []string{"k1"}, api.deleted)

	assert.NoError(t, c.Remove(context.Background(), "b"))
}

func TestListBuckets(t *testing.T) {
	c := &S3Client{api: &fakeS3{}}
	names, err := c.ListBuckets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"case-documents", "documents"}, names)
}

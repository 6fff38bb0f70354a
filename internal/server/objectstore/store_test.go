package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

type fakePresign struct {
	in  *s3.GetObjectInput
	err error
}

func (f *fakePresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.in = in
	return &v4.PresignedHTTPRequest{URL: "https://example.test/" + *in.Bucket + "/" + *in.Key}, nil
}

func TestUpload(t *testing.T) {
	s3c := &fakeS3{}
	s := newStore(Config{Bucket: "society"}, s3c, &fakePresign{})

	require.NoError(t, s.Upload(context.Background(), "mysociety_data_x.xlsx", []byte("payload")))

	assert.Equal(t, "society", *s3c.in.Bucket)
	assert.Equal(t, "backups/mysociety_data_x.xlsx", *s3c.in.Key)
	assert.Equal(t, int64(7), *s3c.in.ContentLength)
	assert.Equal(t, contentTypeXLSX, *s3c.in.ContentType)
	assert.Equal(t, []byte("payload"), s3c.body)
}

func TestUpload_Error(t *testing.T) {
	s := newStore(Config{Bucket: "society"}, &fakeS3{err: errors.New("boom")}, &fakePresign{})

	err := s.Upload(context.Background(), "a.xlsx", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.xlsx")
}

func TestPresignGetURL(t *testing.T) {
	p := &fakePresign{}
	s := newStore(Config{Bucket: "society", Prefix: "ledger/backups"}, &fakeS3{}, p)

	url, err := s.PresignGetURL(context.Background(), "b.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/society/ledger/backups/b.xlsx", url)

	p.err = errors.New("nope")
	_, err = s.PresignGetURL(context.Background(), "b.xlsx")
	assert.Error(t, err)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}

func TestNew_PresignsAgainstCustomEndpoint(t *testing.T) {
	s, err := New(context.Background(), Config{
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Endpoint:  "http://127.0.0.1:9000",
		Bucket:    "society",
	})
	require.NoError(t, err)

	url, err := s.PresignGetURL(context.Background(), "c.xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:9000/society/backups/c.xlsx?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}

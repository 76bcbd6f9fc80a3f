package s3infra

import (
	"context"
	"errors"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPresigner struct{ mock.Mock }

func (m *mockPresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	args := m.Called(ctx, *in.Key)
	req, _ := args.Get(0).(*v4.PresignedHTTPRequest)
	return req, args.Error(1)
}

func TestResolve_PassesThroughURLs(t *testing.T) {
	p := new(mockPresigner)
	r := &ImageResolver{presigner: p, bucket: "media", ttl: time.Minute}

	got, err := r.Resolve(context.Background(), "https://cdn.example/a.png")
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.png", got)
	p.AssertNotCalled(t, "PresignGetObject", mock.Anything, mock.Anything)
}

func TestResolve_PresignsKeys(t *testing.T) {
	p := new(mockPresigner)
	p.On("PresignGetObject", mock.Anything, "profiles/alice.png").
		Return(&v4.PresignedHTTPRequest{URL: "https://signed"}, nil).Twice()
	r := &ImageResolver{presigner: p, bucket: "media", ttl: time.Minute}

	got, err := r.Resolve(context.Background(), "profiles/alice.png")
	assert.NoError(t, err)
	assert.Equal(t, "https://signed", got)

	got, err = r.Resolve(context.Background(), "s3://media/profiles/alice.png")
	assert.NoError(t, err)
	assert.Equal(t, "https://signed", got)
	p.AssertExpectations(t)
}

func TestResolve_PresignError(t *testing.T) {
	p := new(mockPresigner)
	p.On("PresignGetObject", mock.Anything, "k").Return(nil, errors.New("boom"))
	r := &ImageResolver{presigner: p, bucket: "media", ttl: time.Minute}

	_, err := r.Resolve(context.Background(), "k")
	assert.Error(t, err)
}

func TestResolve_NoBucketPassesThrough(t *testing.T) {
	r := NewImageResolver(nil, "", time.Minute)
	got, err := r.Resolve(context.Background(), "profiles/alice.png")
	assert.NoError(t, err)
	assert.Equal(t, "profiles/alice.png", got)
}

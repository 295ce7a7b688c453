package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/logger"
)

type memoryStore struct {
	mu     sync.Mutex
	keys   []string
	putErr error
}

func (s *memoryStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "https://cdn.test/" + key, nil
}

func (s *memoryStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, string, error) {
	return "https://cdn.test/presign/" + key, "https://cdn.test/" + key, nil
}

func (s *memoryStore) Delete(_ context.Context, _ string) error { return nil }

func (s *memoryStore) DeleteMany(_ context.Context, urls []string) (int, error) {
	return len(urls), nil
}

func newTestMediaService(store *memoryStore) MediaService {
	log := logger.New(logger.Options{Level: logger.LevelError, Service: "test"})
	cfg := &config.Config{Log: log, PresignTTL: time.Hour}
	return NewMediaService(store, newProcessor(), cfg)
}

func TestUpload_PartialSuccess(t *testing.T) {
	store := &memoryStore{}
	svc := newTestMediaService(store)

	results, err := svc.Upload(context.Background(), []UploadInput{
		{FileName: "good.png", ContentType: "image/png", Data: pngBytes(t, 100, 100)},
		{FileName: "broken.png", ContentType: "image/png", Data: []byte("not an image")},
	})
	require.NoError(t, err, "per-file failures stay in the result list")
	require.Len(t, results, 2)

	assert.Equal(t, "good.png", results[0].FileName)
	assert.NotEmpty(t, results[0].URL)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, "broken.png", results[1].FileName)
	assert.Empty(t, results[1].URL)
	assert.NotEmpty(t, results[1].Error)

	require.Len(t, store.keys, 1, "only the processed file reached storage")
	assert.True(t, strings.HasSuffix(store.keys[0], ".jpg"), "images land transcoded")
}

func TestUpload_Empty(t *testing.T) {
	svc := newTestMediaService(&memoryStore{})

	_, err := svc.Upload(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestUploadVideo_UsesVideoPrefix(t *testing.T) {
	store := &memoryStore{}
	svc := newTestMediaService(store)

	url, err := svc.UploadVideo(context.Background(), UploadInput{
		FileName:    "hero.mp4",
		ContentType: "video/mp4",
		Data:        []byte("fake video bytes"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasPrefix(store.keys[0], config.VideoKeyPrefix))
	assert.True(t, strings.HasSuffix(store.keys[0], ".mp4"))
}

func TestUploadVideo_StorageFailure(t *testing.T) {
	store := &memoryStore{putErr: assert.AnError}
	svc := newTestMediaService(store)

	_, err := svc.UploadVideo(context.Background(), UploadInput{
		FileName: "hero.mp4",
		Data:     []byte("bytes"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.AsAppError(err).Code)
}

func TestPresignUpload(t *testing.T) {
	svc := newTestMediaService(&memoryStore{})

	uploadURL, publicURL, err := svc.PresignUpload(context.Background(), "big.mp4", "video/mp4")
	require.NoError(t, err)
	assert.Contains(t, uploadURL, "presign")
	assert.True(t, strings.HasSuffix(publicURL, ".mp4"))

	_, _, err = svc.PresignUpload(context.Background(), "", "video/mp4")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

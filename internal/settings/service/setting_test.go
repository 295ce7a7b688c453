package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/logger"
	"tripdesk/pkg/model"
)

type fakeSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{values: map[string]string{}}
}

func (f *fakeSettingRepo) FindAll(_ context.Context) ([]*model.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Setting, 0, len(f.values))
	for name, value := range f.values {
		out = append(out, &model.Setting{Name: name, Value: value})
	}
	return out, nil
}

func (f *fakeSettingRepo) Upsert(_ context.Context, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
	return nil
}

func (f *fakeSettingRepo) DeleteByName(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, name)
	return nil
}

type recordingStore struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (s *recordingStore) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *recordingStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, string, error) {
	return "https://cdn.test/presign/" + key, "https://cdn.test/" + key, nil
}

func (s *recordingStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return s.deleteErr
}

func (s *recordingStore) DeleteMany(ctx context.Context, urls []string) (int, error) {
	for _, u := range urls {
		_ = s.Delete(ctx, u)
	}
	return len(urls), s.deleteErr
}

func newTestService(repo *fakeSettingRepo, store *recordingStore) SettingService {
	log := logger.New(logger.Options{Level: logger.LevelError, Service: "test"})
	return NewSettingService(repo, store, &config.Config{Log: log})
}

func TestSaveAndGet(t *testing.T) {
	repo := newFakeSettingRepo()
	svc := newTestService(repo, &recordingStore{})
	ctx := context.Background()

	err := svc.Save(ctx, map[string]string{
		model.SettingHeroTitle:      "Summer Sale",
		model.SettingFeaturedTripID: "abc123",
	})
	require.NoError(t, err)

	values, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", values[model.SettingHeroTitle])
	assert.Equal(t, "abc123", values[model.SettingFeaturedTripID])

	// Re-save overwrites in place.
	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroTitle: "Winter Sale"}))
	values, _ = svc.Get(ctx)
	assert.Equal(t, "Winter Sale", values[model.SettingHeroTitle])
}

func TestSave_ReplacedHeroMediaDeleted(t *testing.T) {
	repo := newFakeSettingRepo()
	store := &recordingStore{}
	svc := newTestService(repo, store)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroImage: "https://cdn.test/old.jpg"}))
	assert.Empty(t, store.deleted, "first save has nothing to replace")

	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroImage: "https://cdn.test/new.jpg"}))
	assert.Equal(t, []string{"https://cdn.test/old.jpg"}, store.deleted)

	// Saving the same URL again must not delete it.
	store.deleted = nil
	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroImage: "https://cdn.test/new.jpg"}))
	assert.Empty(t, store.deleted)
}

func TestSave_NonMediaSettingsNeverTouchStorage(t *testing.T) {
	repo := newFakeSettingRepo()
	store := &recordingStore{}
	svc := newTestService(repo, store)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroTitle: "One"}))
	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroTitle: "Two"}))
	assert.Empty(t, store.deleted)
}

func TestSave_StorageFailureDoesNotFailSave(t *testing.T) {
	repo := newFakeSettingRepo()
	store := &recordingStore{deleteErr: assert.AnError}
	svc := newTestService(repo, store)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroImage: "https://cdn.test/a.jpg"}))
	err := svc.Save(ctx, map[string]string{model.SettingHeroImage: "https://cdn.test/b.jpg"})
	require.NoError(t, err, "the settings write is authoritative")

	values, _ := svc.Get(ctx)
	assert.Equal(t, "https://cdn.test/b.jpg", values[model.SettingHeroImage])
}

func TestClearHeroMedia(t *testing.T) {
	repo := newFakeSettingRepo()
	store := &recordingStore{}
	svc := newTestService(repo, store)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, map[string]string{model.SettingHeroVideoDesktop: "https://cdn.test/hero.mp4"}))

	require.NoError(t, svc.ClearHeroMedia(ctx, model.SettingHeroVideoDesktop))
	assert.Equal(t, []string{"https://cdn.test/hero.mp4"}, store.deleted)

	values, _ := svc.Get(ctx)
	_, ok := values[model.SettingHeroVideoDesktop]
	assert.False(t, ok)
}

func TestClearHeroMedia_UnknownName(t *testing.T) {
	svc := newTestService(newFakeSettingRepo(), &recordingStore{})

	err := svc.ClearHeroMedia(context.Background(), model.SettingHeroTitle)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

func TestSave_EmptyRejected(t *testing.T) {
	svc := newTestService(newFakeSettingRepo(), &recordingStore{})

	err := svc.Save(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.AsAppError(err).Code)
}

package service

import (
	"bytes"
	"context"
	"path"

	"github.com/google/uuid"

	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/storage"
)

// UploadInput is one file pulled out of a multipart request.
type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

// UploadResult reports the outcome for a single file; a failed file carries an
// error message instead of a URL.
type UploadResult struct {
	FileName string `json:"fileName"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

type MediaService interface {
	// Upload processes and stores each file independently; per-file failures
	// land in the result list, not in the returned error.
	Upload(ctx context.Context, files []UploadInput) ([]UploadResult, error)
	// UploadVideo stores a video unprocessed under the video key prefix.
	UploadVideo(ctx context.Context, file UploadInput) (string, error)
	// PresignUpload hands the browser a direct upload URL for large objects.
	PresignUpload(ctx context.Context, fileName, contentType string) (uploadURL, publicURL string, err error)
}

type mediaService struct {
	store     storage.ObjectStore
	processor *ImageProcessor
	cfg       *config.Config
}

func NewMediaService(store storage.ObjectStore, processor *ImageProcessor, cfg *config.Config) MediaService {
	return &mediaService{
		store:     store,
		processor: processor,
		cfg:       cfg,
	}
}

func (s *mediaService) Upload(ctx context.Context, files []UploadInput) ([]UploadResult, error) {
	if len(files) == 0 {
		return nil, apperrors.InvalidInput("no files provided")
	}

	results := make([]UploadResult, 0, len(files))
	for _, file := range files {
		url, err := s.uploadOne(ctx, file)
		if err != nil {
			s.cfg.Log.Warn("File upload failed", "file", file.FileName, "error", err)
			results = append(results, UploadResult{FileName: file.FileName, Error: err.Error()})
			continue
		}
		results = append(results, UploadResult{FileName: file.FileName, URL: url})
	}
	return results, nil
}

func (s *mediaService) uploadOne(ctx context.Context, file UploadInput) (string, error) {
	processed, err := s.processor.Process(file.Data, file.ContentType)
	if err != nil {
		return "", err
	}

	key := uuid.NewString() + processed.Ext
	url, err := s.store.Put(ctx, key, bytes.NewReader(processed.Data), int64(len(processed.Data)), processed.ContentType)
	if err != nil {
		return "", err
	}

	s.cfg.Log.Info("File uploaded", "file", file.FileName, "key", key, "bytes", len(processed.Data))
	return url, nil
}

func (s *mediaService) UploadVideo(ctx context.Context, file UploadInput) (string, error) {
	if len(file.Data) == 0 {
		return "", apperrors.InvalidInput("no file provided")
	}

	ext := path.Ext(file.FileName)
	if ext == "" {
		ext = extensionFor(file.ContentType)
	}
	key := config.VideoKeyPrefix + uuid.NewString() + ext

	url, err := s.store.Put(ctx, key, bytes.NewReader(file.Data), int64(len(file.Data)), file.ContentType)
	if err != nil {
		s.cfg.Log.Error("Video upload failed", "file", file.FileName, "error", err)
		return "", apperrors.Internal("Failed to upload video", err)
	}

	s.cfg.Log.Info("Video uploaded", "file", file.FileName, "key", key, "bytes", len(file.Data))
	return url, nil
}

func (s *mediaService) PresignUpload(ctx context.Context, fileName, contentType string) (string, string, error) {
	if fileName == "" {
		return "", "", apperrors.InvalidInput("fileName is required")
	}

	key := uuid.NewString() + path.Ext(fileName)
	uploadURL, publicURL, err := s.store.PresignPut(ctx, key, s.cfg.PresignTTL)
	if err != nil {
		s.cfg.Log.Error("Failed to presign upload", "file", fileName, "error", err)
		return "", "", apperrors.Internal("Failed to presign upload", err)
	}
	return uploadURL, publicURL, nil
}

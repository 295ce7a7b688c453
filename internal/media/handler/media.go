package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tripdesk/internal/media/service"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/httputil"
	"tripdesk/pkg/logger"
)

type MediaHandler struct {
	service service.MediaService
	cfg     *config.Config
	log     *logger.Logger
}

func NewMediaHandler(service service.MediaService, cfg *config.Config) *MediaHandler {
	return &MediaHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

// Upload accepts one or more files in the "files" multipart field. Each file
// is processed and stored independently; a mixed outcome returns 207 with
// per-file results.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	files, err := h.readMultipart(r, "files")
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	results, err := h.service.Upload(r.Context(), files)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	status := http.StatusOK
	for _, result := range results {
		if result.Error != "" {
			status = http.StatusMultiStatus
			break
		}
	}
	h.writeJSON(w, "Upload", status, map[string]any{"results": results})
}

func (h *MediaHandler) UploadVideo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	files, err := h.readMultipart(r, "file")
	if err != nil {
		h.writeError(w, "UploadVideo", err)
		return
	}

	url, err := h.service.UploadVideo(r.Context(), files[0])
	if err != nil {
		h.writeError(w, "UploadVideo", err)
		return
	}
	h.writeJSON(w, "UploadVideo", http.StatusOK, map[string]string{"url": url})
}

func (h *MediaHandler) Presign(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	fileName := query.Get("fileName")
	contentType := query.Get("contentType")

	uploadURL, publicURL, err := h.service.PresignUpload(r.Context(), fileName, contentType)
	if err != nil {
		h.writeError(w, "Presign", err)
		return
	}
	h.writeJSON(w, "Presign", http.StatusOK, map[string]string{
		"uploadUrl": uploadURL,
		"publicUrl": publicURL,
	})
}

func (h *MediaHandler) readMultipart(r *http.Request, field string) ([]service.UploadInput, error) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		return nil, apperrors.InvalidInput("Invalid multipart request")
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, apperrors.InvalidInput("no files provided")
	}

	headers := r.MultipartForm.File[field]
	files := make([]service.UploadInput, 0, len(headers))
	for _, header := range headers {
		file, err := h.readOne(header)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func (h *MediaHandler) readOne(header *multipart.FileHeader) (service.UploadInput, error) {
	if header.Size > h.cfg.MaxUploadSize {
		return service.UploadInput{}, apperrors.InvalidInput("file exceeds the upload size limit")
	}

	f, err := header.Open()
	if err != nil {
		return service.UploadInput{}, apperrors.Internal("Failed to read uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxUploadSize+1))
	if err != nil {
		return service.UploadInput{}, apperrors.Internal("Failed to read uploaded file", err)
	}
	if int64(len(data)) > h.cfg.MaxUploadSize {
		return service.UploadInput{}, apperrors.InvalidInput("file exceeds the upload size limit")
	}

	return service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *MediaHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *MediaHandler) writeJSON(w http.ResponseWriter, op string, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", err)
	}
}

func (h *MediaHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/upload", h.Upload)
	router.POST("/api/v1/upload/video", h.UploadVideo)
	router.GET("/api/v1/upload/presign", h.Presign)
}

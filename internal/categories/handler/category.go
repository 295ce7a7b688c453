package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tripdesk/internal/categories/service"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/httputil"
	"tripdesk/pkg/logger"
	"tripdesk/pkg/model"
)

type CategoryHandler struct {
	service service.CategoryService
	log     *logger.Logger
}

func NewCategoryHandler(service service.CategoryService, cfg *config.Config) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		log:     cfg.Log,
	}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	h.writeJSON(w, "List", http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var category model.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &category); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	h.writeJSON(w, "Create", http.StatusCreated, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var category model.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), &category); err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeJSON(w, "Update", http.StatusOK, map[string]bool{"success": true})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, "Delete", apperrors.InvalidInput("id query parameter is required"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	h.writeJSON(w, "Delete", http.StatusOK, map[string]bool{"success": true})
}

// Properties serves the effective property schema for a trip form: the
// category's own definitions plus every ancestor's, leaf first.
func (h *CategoryHandler) Properties(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, "Properties", apperrors.InvalidInput("id query parameter is required"))
		return
	}

	properties, err := h.service.ResolveProperties(r.Context(), id)
	if err != nil {
		h.writeError(w, "Properties", err)
		return
	}
	h.writeJSON(w, "Properties", http.StatusOK, map[string]any{"properties": properties})
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *CategoryHandler) writeJSON(w http.ResponseWriter, op string, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", err)
	}
}

func (h *CategoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/categories", h.List)
	router.POST("/api/v1/categories", h.Create)
	router.PUT("/api/v1/categories", h.Update)
	router.DELETE("/api/v1/categories", h.Delete)
	router.GET("/api/v1/categories/properties", h.Properties)
}

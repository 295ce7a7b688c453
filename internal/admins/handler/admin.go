package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tripdesk/internal/admins/service"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/httputil"
	"tripdesk/pkg/logger"
)

type AdminHandler struct {
	service service.AdminService
	log     *logger.Logger
}

func NewAdminHandler(service service.AdminService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     cfg.Log,
	}
}

type addRequest struct {
	Email string `json:"email"`
}

type bulkAddRequest struct {
	Emails []string `json:"emails"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	admins, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	h.writeJSON(w, "List", http.StatusOK, admins)
}

func (h *AdminHandler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Add", apperrors.InvalidInput("Invalid request body"))
		return
	}

	admin, err := h.service.Add(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, "Add", err)
		return
	}
	h.writeJSON(w, "Add", http.StatusCreated, admin)
}

func (h *AdminHandler) BulkAdd(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bulkAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "BulkAdd", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if len(req.Emails) == 0 {
		h.writeError(w, "BulkAdd", apperrors.InvalidInput("emails list cannot be empty"))
		return
	}

	results, err := h.service.BulkAdd(r.Context(), req.Emails)
	if err != nil {
		h.writeError(w, "BulkAdd", err)
		return
	}
	h.writeJSON(w, "BulkAdd", http.StatusOK, map[string]any{"results": results})
}

func (h *AdminHandler) Remove(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, "Remove", apperrors.InvalidInput("id query parameter is required"))
		return
	}

	if err := h.service.Remove(r.Context(), id); err != nil {
		h.writeError(w, "Remove", err)
		return
	}
	h.writeJSON(w, "Remove", http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *AdminHandler) writeJSON(w http.ResponseWriter, op string, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", err)
	}
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/admins", h.List)
	router.POST("/api/v1/admins", h.Add)
	router.POST("/api/v1/admins/bulk", h.BulkAdd)
	router.DELETE("/api/v1/admins", h.Remove)
}

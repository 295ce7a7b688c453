package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tripdesk/internal/settings/service"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/httputil"
	"tripdesk/pkg/logger"
)

type SettingHandler struct {
	service service.SettingService
	log     *logger.Logger
}

func NewSettingHandler(service service.SettingService, cfg *config.Config) *SettingHandler {
	return &SettingHandler{
		service: service,
		log:     cfg.Log,
	}
}

func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	values, err := h.service.Get(r.Context())
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	h.writeJSON(w, "Get", http.StatusOK, values)
}

func (h *SettingHandler) Save(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		h.writeError(w, "Save", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Save(r.Context(), values); err != nil {
		h.writeError(w, "Save", err)
		return
	}
	h.writeJSON(w, "Save", http.StatusOK, map[string]bool{"success": true})
}

func (h *SettingHandler) ClearHeroMedia(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, "ClearHeroMedia", apperrors.InvalidInput("name query parameter is required"))
		return
	}

	if err := h.service.ClearHeroMedia(r.Context(), name); err != nil {
		h.writeError(w, "ClearHeroMedia", err)
		return
	}
	h.writeJSON(w, "ClearHeroMedia", http.StatusOK, map[string]bool{"success": true})
}

func (h *SettingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *SettingHandler) writeJSON(w http.ResponseWriter, op string, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", err)
	}
}

func (h *SettingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/settings", h.Get)
	router.POST("/api/v1/settings", h.Save)
	router.DELETE("/api/v1/settings/hero-media", h.ClearHeroMedia)
}

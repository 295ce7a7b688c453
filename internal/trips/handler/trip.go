package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tripdesk/internal/trips/service"
	"tripdesk/pkg/config"
	apperrors "tripdesk/pkg/errors"
	"tripdesk/pkg/httputil"
	"tripdesk/pkg/logger"
	"tripdesk/pkg/model"
)

type TripHandler struct {
	service service.TripService
	cfg     *config.Config
	log     *logger.Logger
}

func NewTripHandler(service service.TripService, cfg *config.Config) *TripHandler {
	return &TripHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

// tripPayload shadows AvailableSeats with a pointer so "absent" (default to
// maxSeats on create) is distinguishable from an explicit 0.
type tripPayload struct {
	model.Trip
	AvailableSeats *int `json:"availableSeats"`
}

type bookRequest struct {
	TripID        string `json:"tripId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

type cancelRequest struct {
	TripID           string `json:"tripId"`
	ReservationIndex *int   `json:"reservationIndex"`
}

type seatsResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	AvailableSeats int    `json:"availableSeats"`
}

func (h *TripHandler) GetOrList(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	if id := query.Get("id"); id != "" {
		trip, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			h.writeError(w, "GetOrList", err)
			return
		}
		h.writeJSON(w, "GetOrList", http.StatusOK, trip)
		return
	}

	page, limit, err := httputil.ExtractPageLimit(r, h.cfg.PageLimit)
	if err != nil {
		h.writeError(w, "GetOrList", err)
		return
	}

	result, err := h.service.List(r.Context(), model.TripListQuery{
		Page:      page,
		Limit:     limit,
		Search:    query.Get("search"),
		Status:    query.Get("status"),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
	})
	if err != nil {
		h.writeError(w, "GetOrList", err)
		return
	}
	h.writeJSON(w, "GetOrList", http.StatusOK, result)
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload tripPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	trip := payload.Trip
	if payload.AvailableSeats != nil {
		trip.AvailableSeats = *payload.AvailableSeats
	}

	if err := h.service.Create(r.Context(), &trip, payload.AvailableSeats != nil); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	h.writeJSON(w, "Create", http.StatusCreated, trip)
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload tripPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	trip := payload.Trip
	if payload.AvailableSeats != nil {
		trip.AvailableSeats = *payload.AvailableSeats
	}

	if err := h.service.Update(r.Context(), &trip); err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeJSON(w, "Update", http.StatusOK, map[string]bool{"success": true})
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

func (h *TripHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Book", apperrors.InvalidInput("Invalid request body"))
		return
	}

	seats, err := h.service.Book(r.Context(), req.TripID, req.CustomerName, req.CustomerEmail, req.CustomerPhone)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}
	h.writeJSON(w, "Book", http.StatusOK, seatsResponse{
		Success:        true,
		Message:        "Trip reserved successfully",
		AvailableSeats: seats,
	})
}

func (h *TripHandler) Cancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Cancel", apperrors.InvalidInput("Invalid request body"))
		return
	}
	if req.TripID == "" || req.ReservationIndex == nil {
		h.writeError(w, "Cancel", apperrors.InvalidInput("tripId and reservationIndex are required"))
		return
	}

	seats, err := h.service.Cancel(r.Context(), req.TripID, *req.ReservationIndex)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeJSON(w, "Cancel", http.StatusOK, seatsResponse{
		Success:        true,
		Message:        "Trip reservation cancelled successfully",
		AvailableSeats: seats,
	})
}

func (h *TripHandler) ArchivePast(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.ArchivePast(r.Context())
	if err != nil {
		h.writeError(w, "ArchivePast", err)
		return
	}
	h.writeJSON(w, "ArchivePast", http.StatusOK, report)
}

func (h *TripHandler) PurgeArchived(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report, err := h.service.PurgeArchived(r.Context())
	if err != nil {
		h.writeError(w, "PurgeArchived", err)
		return
	}
	h.writeJSON(w, "PurgeArchived", http.StatusOK, report)
}

func (h *TripHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}
	h.writeJSON(w, "Stats", http.StatusOK, map[string]any{"trips": stats})
}

func (h *TripHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *TripHandler) writeJSON(w http.ResponseWriter, op string, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.Error("failed to write JSON response", "handler", op, "error", err)
	}
}

func (h *TripHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/trips", h.GetOrList)
	router.POST("/api/v1/trips", h.Create)
	router.PUT("/api/v1/trips", h.Update)
	router.DELETE("/api/v1/trips", h.Delete)
	router.POST("/api/v1/trips/book", h.Book)
	router.POST("/api/v1/trips/cancel", h.Cancel)
	router.POST("/api/v1/trips/archive-past", h.ArchivePast)
	router.POST("/api/v1/trips/cleanup-archived", h.PurgeArchived)
	router.GET("/api/v1/stats", h.Stats)
}

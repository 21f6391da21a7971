package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"sharely/internal/bookings/service"
	apperrors "sharely/pkg/errors"
	httputil "sharely/pkg/http"
	"sharely/pkg/logger"
	"sharely/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookerID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	booking, err := h.service.Create(r.Context(), bookerID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	approvedStr := r.URL.Query().Get("approved")
	approved, err := strconv.ParseBool(approvedStr)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("approved query parameter must be true or false"))
		return
	}

	booking, err := h.service.Decide(r.Context(), actorID, ps.ByName("bookingId"), approved)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

// GetOne also serves GET /bookings/owner: httprouter cannot register a static
// child next to the :bookingId wildcard, so the owner listing is dispatched here.
func (h *BookingHandler) GetOne(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("bookingId") == "owner" {
		h.listByOwner(w, r)
		return
	}

	viewerID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), viewerID, ps.ByName("bookingId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) ListByBooker(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, h.service.ListByBooker)
}

func (h *BookingHandler) listByOwner(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListByOwner)
}

type listFunc func(ctx context.Context, viewerID string, category model.Category, limit int, offset int64) ([]*model.Booking, error)

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc) {
	viewerID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stateStr := r.URL.Query().Get("state")
	category, ok := model.ParseCategory(stateStr)
	if !ok {
		httputil.WriteError(w, apperrors.InvalidInput("Unknown state: "+stateStr))
		return
	}

	from, size, err := httputil.ExtractPaging(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, err := fn(r.Context(), viewerID, category, size, from)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, size, from)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/bookings", h.Create)
	router.GET("/bookings", h.ListByBooker)
	router.GET("/bookings/:bookingId", h.GetOne)
	router.PATCH("/bookings/:bookingId", h.Decide)
}

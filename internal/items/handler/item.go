package handler

import (
	"encoding/json"
	"net/http"

	"sharely/internal/items/service"
	httputil "sharely/pkg/http"
	"sharely/pkg/logger"
	"sharely/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ItemHandler struct {
	service service.ItemService
	log     *logger.Logger
}

func NewItemHandler(service service.ItemService, log *logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		log:     log,
	}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var item model.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), ownerID, &item); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, item)
}

// GetOne also serves GET /items/search: httprouter cannot register a static
// child next to the :itemId wildcard, so the search listing is dispatched here.
func (h *ItemHandler) GetOne(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("itemId") == "search" {
		h.search(w, r)
		return
	}

	viewerID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	item, err := h.service.Get(r.Context(), viewerID, ps.ByName("itemId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, item)
}

func (h *ItemHandler) ListByOwner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ownerID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	from, size, err := httputil.ExtractPaging(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.service.ListByOwner(r.Context(), ownerID, size, from)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, items, size, from)
}

func (h *ItemHandler) search(w http.ResponseWriter, r *http.Request) {
	from, size, err := httputil.ExtractPaging(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.service.Search(r.Context(), r.URL.Query().Get("text"), size, from)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, items, size, from)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actorID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var updates model.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	item, err := h.service.Update(r.Context(), actorID, ps.ByName("itemId"), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, item)
}

func (h *ItemHandler) AddComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	authorID, err := httputil.ExtractUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	comment, err := h.service.AddComment(r.Context(), authorID, ps.ByName("itemId"), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, comment)
}

func (h *ItemHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/items", h.Create)
	router.GET("/items", h.ListByOwner)
	router.GET("/items/:itemId", h.GetOne)
	router.PATCH("/items/:itemId", h.Update)
	router.POST("/items/:itemId/comment", h.AddComment)
}

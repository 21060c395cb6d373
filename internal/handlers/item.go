package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FindIt/internal/model"
	"FindIt/internal/service"
)

// ItemHandler: найденные вещи.
type ItemHandler struct {
	ItemService *service.ItemService
	Logger      *zap.SugaredLogger
}

func NewItemHandler(itemService *service.ItemService, logger *zap.SugaredLogger) *ItemHandler {
	return &ItemHandler{ItemService: itemService, Logger: logger}
}

// ItemDTO: вещь в ответах API.
type ItemDTO struct {
	ID          string    `json:"id"`
	FinderID    int64     `json:"finder_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toItemDTO(it *model.Item) ItemDTO {
	return ItemDTO{
		ID:          it.ID,
		FinderID:    it.FinderID,
		Title:       it.Title,
		Description: it.Description,
		Location:    it.Location,
		Status:      string(it.Status),
		CreatedAt:   it.CreatedAt.UTC(),
	}
}

// Report публикует найденную вещь от имени текущего пользователя.
func (h *ItemHandler) Report(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req service.ReportInput
	if !decodeBody(w, r, &req) {
		return
	}
	it, err := h.ItemService.Report(r.Context(), uid, req)
	if err != nil {
		writeError(w, h.Logger, "Report", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(it))
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	it, err := h.ItemService.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		writeError(w, h.Logger, "GetItem", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(it))
}

func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	items, err := h.ItemService.ListMine(r.Context(), uid)
	if err != nil {
		writeError(w, h.Logger, "ListItems", err)
		return
	}
	out := make([]ItemDTO, 0, len(items))
	for i := range items {
		out = append(out, toItemDTO(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

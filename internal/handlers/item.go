package handlers

import (
	"ShopKeeper/internal/config"
	"ShopKeeper/internal/middleware"
	"ShopKeeper/internal/model"
	"ShopKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItemHandler обрабатывает CRUD товаров каталога.
type ItemHandler struct {
	ItemService *service.ItemService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewItemHandler создаёт хендлер items
func NewItemHandler(itemService *service.ItemService, logger *zap.SugaredLogger, cfg *config.Config) *ItemHandler {
	return &ItemHandler{ItemService: itemService, Logger: logger, Config: cfg}
}

// ItemRequest — тело create/update. Ассет-поля принимают inline base64
// (только картинки), пути под /uploads и внешние URL.
type ItemRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	PriceCents   int64    `json:"price_cents"`
	Cover        string   `json:"cover,omitempty"`
	PreviewVideo string   `json:"preview_video,omitempty"`
	DemoVideo    string   `json:"demo_video,omitempty"`
	Gallery      []string `json:"gallery,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
}

// ItemResponse — товар в ответах API.
type ItemResponse struct {
	ID           string   `json:"id"`
	Code         int      `json:"code"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	PriceCents   int64    `json:"price_cents"`
	Cover        string   `json:"cover,omitempty"`
	PreviewVideo string   `json:"preview_video,omitempty"`
	DemoVideo    string   `json:"demo_video,omitempty"`
	Gallery      []string `json:"gallery"`
	Attachments  []string `json:"attachments"`
	Version      int64    `json:"version"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toItemResponse(it *model.Item) ItemResponse {
	gallery := it.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	attachments := it.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return ItemResponse{
		ID:           it.ID,
		Code:         it.Code,
		Name:         it.Name,
		Description:  it.Description,
		PriceCents:   it.PriceCents,
		Cover:        it.Cover,
		PreviewVideo: it.PreviewVideo,
		DemoVideo:    it.DemoVideo,
		Gallery:      gallery,
		Attachments:  attachments,
		Version:      it.Version,
		CreatedAt:    it.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    it.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toInput(req ItemRequest) service.ItemInput {
	return service.ItemInput{
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		Cover:        req.Cover,
		PreviewVideo: req.PreviewVideo,
		DemoVideo:    req.DemoVideo,
		Gallery:      req.Gallery,
		Attachments:  req.Attachments,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Create создаёт товар; коду и каталогу ассетов — см. ItemService.Create.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Create: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	it, err := h.ItemService.Create(r.Context(), userID, toInput(req))
	if err != nil {
		h.Logger.Errorw("Create: service error", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(it))
}

// Update обновляет товар; 409 при конфликте версий.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Update: invalid request body", "item_id", id, "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	it, err := h.ItemService.Update(r.Context(), userID, id, toInput(req))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toItemResponse(it))
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrVersionConflict):
		http.Error(w, "version conflict", http.StatusConflict)
	default:
		h.Logger.Errorw("Update: service error", "user_id", userID, "item_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Duplicate создаёт копию товара с новым кодом.
func (h *ItemHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	dup, err := h.ItemService.Duplicate(r.Context(), userID, id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toItemResponse(dup))
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.Logger.Errorw("Duplicate: service error", "user_id", userID, "item_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Delete помечает товар удалённым и зачищает его ассеты.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	err := h.ItemService.Delete(r.Context(), userID, id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.Logger.Errorw("Delete: service error", "user_id", userID, "item_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// Get возвращает товар.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	it, err := h.ItemService.Get(r.Context(), userID, id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toItemResponse(it))
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.Logger.Errorw("Get: service error", "user_id", userID, "item_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// List возвращает товары пользователя.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.ItemService.List(r.Context(), userID)
	if err != nil {
		h.Logger.Errorw("List: service error", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]ItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toItemResponse(&items[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/kaimono/internal/middleware"
	"github.com/hitoshi/kaimono/internal/model"
	"github.com/hitoshi/kaimono/internal/shoppinglist"
)

// AddItem はリストに品目を追加する。
// POST /api/shoppingLists/:id/items
func (h *ListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandAddItem, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandAddItem, apiErr)
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, shoppinglist.CommandAddItem, newInvalidRequestError())
		return
	}

	name, apiErr := h.sanitizeName(req.Name)
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandAddItem, apiErr)
		return
	}

	result, err := h.service.AddItem(r.Context(), listID, name, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandAddItem, err)
		return
	}

	h.writeEnvelope(w, http.StatusCreated, shoppinglist.CommandAddItem, shoppinglist.ProfileListMember, result, start)
}

// ResolveItem は品目を解決済みにする。
// PUT /api/shoppingLists/:id/items/:itemId/resolve
func (h *ListHandler) ResolveItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandResolveItem, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandResolveItem, apiErr)
		return
	}

	itemID, apiErr := parseIDParam(r, "itemId")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandResolveItem, apiErr)
		return
	}

	result, err := h.service.ResolveItem(r.Context(), listID, itemID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandResolveItem, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandResolveItem, shoppinglist.ProfileListMember, result, start)
}

// RemoveItem は品目をリストから外す。
// DELETE /api/shoppingLists/:id/items/:itemId
func (h *ListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandRemoveItem, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandRemoveItem, apiErr)
		return
	}

	itemID, apiErr := parseIDParam(r, "itemId")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandRemoveItem, apiErr)
		return
	}

	result, err := h.service.RemoveItem(r.Context(), listID, itemID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandRemoveItem, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandRemoveItem, shoppinglist.ProfileListMember, result, start)
}

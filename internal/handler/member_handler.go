package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/kaimono/internal/middleware"
	"github.com/hitoshi/kaimono/internal/model"
	"github.com/hitoshi/kaimono/internal/shoppinglist"
)

// addMemberRequest はメンバー追加リクエストのボディ。
type addMemberRequest struct {
	MemberID string `json:"memberId"`
}

// LeaveList は呼び出しユーザーをリストから退出させる。
// POST /api/shoppingLists/:id/leave
func (h *ListHandler) LeaveList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandLeaveList, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandLeaveList, apiErr)
		return
	}

	result, err := h.service.Leave(r.Context(), listID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandLeaveList, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandLeaveList, shoppinglist.ProfileUser, result, start)
}

// AddMember はリストにメンバーを追加する。
// POST /api/shoppingLists/:id/members
func (h *ListHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandAddMember, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandAddMember, apiErr)
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, shoppinglist.CommandAddMember, newInvalidRequestError())
		return
	}

	memberID, apiErr := parseUUIDField(req.MemberID, "memberId")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandAddMember, apiErr)
		return
	}

	list, err := h.service.AddMember(r.Context(), listID, memberID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandAddMember, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandAddMember, shoppinglist.ProfileListOwner, list, start)
}

// RemoveMember はリストからメンバーを外す。
// DELETE /api/shoppingLists/:id/members/:memberId
func (h *ListHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandRemoveMember, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandRemoveMember, apiErr)
		return
	}

	memberID, apiErr := parseIDParam(r, "memberId")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandRemoveMember, apiErr)
		return
	}

	result, err := h.service.RemoveMember(r.Context(), listID, memberID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandRemoveMember, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandRemoveMember, shoppinglist.ProfileListOwner, result, start)
}

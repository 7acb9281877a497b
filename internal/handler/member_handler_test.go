package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/kaimono/internal/model"
	"github.com/hitoshi/kaimono/internal/shoppinglist"
)

// ============================================================
// LeaveList
// ============================================================

func TestLeaveList_ReturnsResultPayload(t *testing.T) {
	svc := &mockService{
		leaveFn: func(ctx context.Context, id, callerID string) (*shoppinglist.LeaveResult, error) {
			return &shoppinglist.LeaveResult{
				ListID:  id,
				UserID:  callerID,
				Message: "リストから退出しました。",
			}, nil
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/shoppingLists/"+testListID+"/leave", nil)
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID})
	w := httptest.NewRecorder()

	h.LeaveList(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	data, sys := decodeEnvelope(t, resp)
	if data["listId"] != testListID {
		t.Errorf("data.listId = %v", data["listId"])
	}
	if data["userId"] != testUserID {
		t.Errorf("data.userId = %v", data["userId"])
	}
	if sys["command"] != "shoppingList/leaveList" {
		t.Errorf("sys.command = %v", sys["command"])
	}
	if sys["profile"] != "User" {
		t.Errorf("sys.profile = %v, want %q", sys["profile"], "User")
	}
}

// オーナーによる退出は409になることを検証
func TestLeaveList_OwnerCannotLeave_Returns409(t *testing.T) {
	svc := &mockService{
		leaveFn: func(ctx context.Context, id, callerID string) (*shoppinglist.LeaveResult, error) {
			return nil, model.NewOwnerCannotLeaveError()
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/shoppingLists/"+testListID+"/leave", nil)
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID})
	w := httptest.NewRecorder()

	h.LeaveList(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	if body := decodeAPIError(t, resp); body.Code != "OWNER_CANNOT_LEAVE" {
		t.Errorf("code = %q, want %q", body.Code, "OWNER_CANNOT_LEAVE")
	}
}

// ============================================================
// AddMember
// ============================================================

func TestAddMember_ReturnsUpdatedList(t *testing.T) {
	updated := testList()
	updated.Members = append(updated.Members, testMemberID)
	updated.Revision = 2

	svc := &mockService{
		addMemberFn: func(ctx context.Context, id, memberID, callerID string) (*model.ShoppingList, error) {
			if memberID != testMemberID {
				t.Errorf("memberID = %q, want %q", memberID, testMemberID)
			}
			return updated, nil
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/shoppingLists/"+testListID+"/members",
		strings.NewReader(`{"memberId":"`+testMemberID+`"}`))
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID})
	w := httptest.NewRecorder()

	h.AddMember(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	data, sys := decodeEnvelope(t, resp)
	members, ok := data["members"].([]any)
	if !ok || len(members) != 2 {
		t.Errorf("data.members = %v, want 2件", data["members"])
	}
	if sys["profile"] != "ListOwner" {
		t.Errorf("sys.profile = %v, want %q", sys["profile"], "ListOwner")
	}
}

func TestAddMember_InvalidMemberID_Returns400(t *testing.T) {
	h := newTestHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/api/shoppingLists/"+testListID+"/members",
		strings.NewReader(`{"memberId":"not-a-uuid"}`))
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID})
	w := httptest.NewRecorder()

	h.AddMember(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if body := decodeAPIError(t, resp); body.Code != "INVALID_ID" {
		t.Errorf("code = %q, want %q", body.Code, "INVALID_ID")
	}
}

func TestAddMember_NotOwner_Returns404(t *testing.T) {
	svc := &mockService{
		addMemberFn: func(ctx context.Context, id, memberID, callerID string) (*model.ShoppingList, error) {
			return nil, model.NewListNotFoundOrNotOwnerError(id)
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/shoppingLists/"+testListID+"/members",
		strings.NewReader(`{"memberId":"`+testMemberID+`"}`))
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID})
	w := httptest.NewRecorder()

	h.AddMember(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}

// ============================================================
// RemoveMember
// ============================================================

func TestRemoveMember_ReturnsResultPayload(t *testing.T) {
	svc := &mockService{
		removeMemberFn: func(ctx context.Context, id, memberID, callerID string) (*shoppinglist.RemoveMemberResult, error) {
			return &shoppinglist.RemoveMemberResult{
				ListID:          id,
				RemovedMemberID: memberID,
				Message:         "メンバーを削除しました。",
			}, nil
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/shoppingLists/"+testListID+"/members/"+testMemberID, nil)
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID, "memberId": testMemberID})
	w := httptest.NewRecorder()

	h.RemoveMember(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	data, _ := decodeEnvelope(t, resp)
	if data["removedMemberId"] != testMemberID {
		t.Errorf("data.removedMemberId = %v, want %q", data["removedMemberId"], testMemberID)
	}
}

// オーナー自身の削除は409になることを検証
func TestRemoveMember_OwnerNotRemovable_Returns409(t *testing.T) {
	svc := &mockService{
		removeMemberFn: func(ctx context.Context, id, memberID, callerID string) (*shoppinglist.RemoveMemberResult, error) {
			return nil, model.NewOwnerNotRemovableError()
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/shoppingLists/"+testListID+"/members/"+testUserID, nil)
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID, "memberId": testUserID})
	w := httptest.NewRecorder()

	h.RemoveMember(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	if body := decodeAPIError(t, resp); body.Code != "OWNER_CANNOT_BE_REMOVED" {
		t.Errorf("code = %q, want %q", body.Code, "OWNER_CANNOT_BE_REMOVED")
	}
}

func TestRemoveMember_MemberNotInList_Returns404(t *testing.T) {
	svc := &mockService{
		removeMemberFn: func(ctx context.Context, id, memberID, callerID string) (*shoppinglist.RemoveMemberResult, error) {
			return nil, model.NewMemberNotInListError(memberID)
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/shoppingLists/"+testListID+"/members/"+testMemberID, nil)
	req = withUserID(req, testUserID)
	req = withChiURLParams(req, map[string]string{"id": testListID, "memberId": testMemberID})
	w := httptest.NewRecorder()

	h.RemoveMember(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if body := decodeAPIError(t, resp); body.Code != "MEMBER_NOT_IN_LIST" {
		t.Errorf("code = %q, want %q", body.Code, "MEMBER_NOT_IN_LIST")
	}
}

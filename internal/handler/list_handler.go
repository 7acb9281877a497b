// Package handler はHTTP APIハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/kaimono/internal/metrics"
	"github.com/hitoshi/kaimono/internal/middleware"
	"github.com/hitoshi/kaimono/internal/model"
	"github.com/hitoshi/kaimono/internal/security"
	"github.com/hitoshi/kaimono/internal/shoppinglist"
)

// 表示名（リスト名・品目名）の長さ制約。サニタイズ後の文字数で判定する。
const (
	nameMinLength = 3
	nameMaxLength = 255
)

// ページネーションのデフォルト値と上限。
// maxPageはOFFSET計算（page*limit）が桁あふれしない範囲に抑える。
const (
	defaultPage  = 0
	defaultLimit = 10
	maxLimit     = 100
	maxPage      = math.MaxInt32
)

// ShoppingListServiceInterface はハンドラーが必要とするサービスインターフェース。
type ShoppingListServiceInterface interface {
	Create(ctx context.Context, name, ownerID string) (*model.ShoppingList, error)
	GetByID(ctx context.Context, id, callerID string) (*model.ShoppingList, error)
	UpdateName(ctx context.Context, id, name, callerID string) (*model.ShoppingList, error)
	Archive(ctx context.Context, id, callerID string) (*model.ShoppingList, error)
	Delete(ctx context.Context, id, callerID string) (*shoppinglist.DeleteResult, error)
	Leave(ctx context.Context, id, callerID string) (*shoppinglist.LeaveResult, error)
	AddMember(ctx context.Context, id, memberID, callerID string) (*model.ShoppingList, error)
	RemoveMember(ctx context.Context, id, memberID, callerID string) (*shoppinglist.RemoveMemberResult, error)
	AddItem(ctx context.Context, id, itemName, callerID string) (*shoppinglist.AddItemResult, error)
	ResolveItem(ctx context.Context, id, itemID, callerID string) (*shoppinglist.ResolveItemResult, error)
	RemoveItem(ctx context.Context, id, itemID, callerID string) (*shoppinglist.RemoveItemResult, error)
	ListActive(ctx context.Context, callerID string, page, limit int) (*shoppinglist.PageResult, error)
	ListArchived(ctx context.Context, callerID string, page, limit int) (*shoppinglist.PageResult, error)
}

// ListHandler は買い物リスト管理のHTTPハンドラー。
type ListHandler struct {
	service   ShoppingListServiceInterface
	sanitizer security.NameSanitizerService
	metrics   metrics.MetricsCollector
}

// NewListHandler はListHandlerを生成する。
// metricsはnilを許容する（テスト用）。
func NewListHandler(service ShoppingListServiceInterface, sanitizer security.NameSanitizerService, collector metrics.MetricsCollector) *ListHandler {
	return &ListHandler{
		service:   service,
		sanitizer: sanitizer,
		metrics:   collector,
	}
}

// nameRequest はリスト名を受け取るリクエストのボディ。
type nameRequest struct {
	Name string `json:"name"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateList はリスト作成を処理する。
// POST /api/shoppingLists
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandCreateList, model.NewUnauthorizedError())
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, shoppinglist.CommandCreateList, newInvalidRequestError())
		return
	}

	name, apiErr := h.sanitizeName(req.Name)
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandCreateList, apiErr)
		return
	}

	list, err := h.service.Create(r.Context(), name, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandCreateList, err)
		return
	}

	h.writeEnvelope(w, http.StatusCreated, shoppinglist.CommandCreateList, shoppinglist.ProfileListOwner, list, start)
}

// GetList はリスト詳細を取得する。
// GET /api/shoppingLists/:id
func (h *ListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandLoadList, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandLoadList, apiErr)
		return
	}

	list, err := h.service.GetByID(r.Context(), listID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandLoadList, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandLoadList, shoppinglist.ProfileListOwner, list, start)
}

// UpdateListName はリスト名を変更する。
// PUT /api/shoppingLists/:id
func (h *ListHandler) UpdateListName(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandUpdateListName, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandUpdateListName, apiErr)
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, shoppinglist.CommandUpdateListName, newInvalidRequestError())
		return
	}

	name, apiErr := h.sanitizeName(req.Name)
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandUpdateListName, apiErr)
		return
	}

	list, err := h.service.UpdateName(r.Context(), listID, name, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandUpdateListName, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandUpdateListName, shoppinglist.ProfileListOwner, list, start)
}

// DeleteList はリストを削除する。
// DELETE /api/shoppingLists/:id
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandDeleteList, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandDeleteList, apiErr)
		return
	}

	result, err := h.service.Delete(r.Context(), listID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandDeleteList, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandDeleteList, shoppinglist.ProfileListOwner, result, start)
}

// ArchiveList はアクティブなリストをアーカイブする。
// PUT /api/shoppingLists/:id/archive
func (h *ListHandler) ArchiveList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, shoppinglist.CommandArchiveList, model.NewUnauthorizedError())
		return
	}

	listID, apiErr := parseIDParam(r, "id")
	if apiErr != nil {
		h.writeError(w, shoppinglist.CommandArchiveList, apiErr)
		return
	}

	list, err := h.service.Archive(r.Context(), listID, userID)
	if err != nil {
		h.handleServiceError(w, shoppinglist.CommandArchiveList, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, shoppinglist.CommandArchiveList, shoppinglist.ProfileListOwner, list, start)
}

// ListActive は呼び出しユーザーが関与するアクティブなリスト一覧を取得する。
// GET /api/shoppingLists/active?page=0&limit=10
func (h *ListHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.listByState(w, r, shoppinglist.CommandListActive, h.service.ListActive)
}

// ListArchived は呼び出しユーザーが関与するアーカイブ済みリスト一覧を取得する。
// GET /api/shoppingLists/archived?page=0&limit=10
func (h *ListHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	h.listByState(w, r, shoppinglist.CommandListArchived, h.service.ListArchived)
}

// listByState は一覧系操作の共通処理。
func (h *ListHandler) listByState(w http.ResponseWriter, r *http.Request, command string, list func(ctx context.Context, callerID string, page, limit int) (*shoppinglist.PageResult, error)) {
	start := time.Now()

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, command, model.NewUnauthorizedError())
		return
	}

	page, limit, apiErr := parsePageParams(r)
	if apiErr != nil {
		h.writeError(w, command, apiErr)
		return
	}

	result, err := list(r.Context(), userID, page, limit)
	if err != nil {
		h.handleServiceError(w, command, err)
		return
	}

	h.writeEnvelope(w, http.StatusOK, command, shoppinglist.ProfileUser, result, start)
}

// --- ヘルパー関数 ---

// sanitizeName は表示名をサニタイズし、長さ制約を検証する。
// 長さ判定はサニタイズ・トリム後の文字数（バイト数ではない）で行う。
func (h *ListHandler) sanitizeName(raw string) (string, *model.APIError) {
	name := h.sanitizer.Sanitize(raw)
	if n := utf8.RuneCountInString(name); n < nameMinLength || n > nameMaxLength {
		return "", model.NewInvalidNameError()
	}
	return name, nil
}

// parseIDParam はURLパラメータからUUID形式の識別子を取り出す。
func parseIDParam(r *http.Request, param string) (string, *model.APIError) {
	value := chi.URLParam(r, param)
	if _, err := uuid.Parse(value); err != nil {
		return "", model.NewInvalidIDError(param)
	}
	return value, nil
}

// parseUUIDField はリクエストボディのUUID形式フィールドを検証する。
func parseUUIDField(value, field string) (string, *model.APIError) {
	if _, err := uuid.Parse(value); err != nil {
		return "", model.NewInvalidIDError(field)
	}
	return value, nil
}

// parsePageParams はクエリ文字列からページネーション入力を取り出す。
// 未指定の場合はデフォルト値（page=0、limit=10）を使用する。
func parsePageParams(r *http.Request) (int, int, *model.APIError) {
	page := defaultPage
	limit := defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > maxPage {
			return 0, 0, model.NewInvalidPageInfoError("pageは0以上2147483647以下の整数で指定してください")
		}
		page = v
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxLimit {
			return 0, 0, model.NewInvalidPageInfoError("limitは1以上100以下の整数で指定してください")
		}
		limit = v
	}

	return page, limit, nil
}

// newInvalidRequestError はリクエストボディ解析失敗のエラーを生成する。
func newInvalidRequestError() *model.APIError {
	return &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// writeEnvelope は操作結果を封筒に包んで書き込み、成功メトリクスを記録する。
func (h *ListHandler) writeEnvelope(w http.ResponseWriter, statusCode int, command, profile string, payload any, start time.Time) {
	env, err := shoppinglist.NewEnvelope(command, profile, payload)
	if err != nil {
		slog.Error("failed to build response envelope",
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		h.writeError(w, command, nil)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordOperationSuccess(command)
		h.metrics.RecordOperationLatency(command, time.Since(start))
		h.metrics.RecordHTTPStatus(statusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(env)
}

// writeError はAPIErrorを統一フォーマットで書き込み、失敗メトリクスを記録する。
// apiErrがnilの場合は内部エラーとして扱う。
func (h *ListHandler) writeError(w http.ResponseWriter, command string, apiErr *model.APIError) {
	if apiErr == nil {
		apiErr = &model.APIError{
			Code:     "INTERNAL_ERROR",
			Message:  "内部エラーが発生しました。",
			Category: "system",
			Action:   "しばらく待ってから再度お試しください。",
		}
	}

	statusCode := mapAPIErrorToHTTPStatus(apiErr)

	if h.metrics != nil {
		h.metrics.RecordOperationFailure(command, apiErr.Code)
		h.metrics.RecordHTTPStatus(statusCode)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
func (h *ListHandler) handleServiceError(w http.ResponseWriter, command string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		h.writeError(w, command, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("command", command),
		slog.String("error", err.Error()),
	)
	h.writeError(w, command, nil)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeListNotFound,
		model.ErrCodeListNotFoundOrOwner,
		model.ErrCodeNotAMember,
		model.ErrCodeItemNotFound,
		model.ErrCodeMemberNotInList:
		return http.StatusNotFound
	case model.ErrCodeListForbidden:
		return http.StatusForbidden
	case model.ErrCodeOwnerCannotLeave, model.ErrCodeOwnerNotRemovable:
		return http.StatusConflict
	case model.ErrCodeInvalidID, model.ErrCodeInvalidName, model.ErrCodeInvalidPageInfo, "INVALID_REQUEST":
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

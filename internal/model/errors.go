// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, list, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeListNotFound        = "LIST_NOT_FOUND"
	ErrCodeListForbidden       = "LIST_FORBIDDEN"
	ErrCodeListNotFoundOrOwner = "LIST_NOT_FOUND_OR_NOT_OWNER"
	ErrCodeOwnerCannotLeave    = "OWNER_CANNOT_LEAVE"
	ErrCodeOwnerNotRemovable   = "OWNER_CANNOT_BE_REMOVED"
	ErrCodeMemberNotInList     = "MEMBER_NOT_IN_LIST"
	ErrCodeNotAMember          = "NOT_A_MEMBER"
	ErrCodeItemNotFound        = "ITEM_NOT_FOUND"
	ErrCodeInvalidID           = "INVALID_ID"
	ErrCodeInvalidName         = "INVALID_NAME"
	ErrCodeInvalidPageInfo     = "INVALID_PAGE_INFO"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
)

// NewListNotFoundError はリスト未検出エラーを生成する。
func NewListNotFoundError(listID string) *APIError {
	return &APIError{
		Code:     ErrCodeListNotFound,
		Message:  fmt.Sprintf("指定されたリストが見つかりません: %s", listID),
		Category: "list",
		Action:   "リストIDを確認してください。",
	}
}

// NewListForbiddenError はリストへのアクセス権限がない場合のエラーを生成する。
func NewListForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeListForbidden,
		Message:  "このリストを閲覧する権限がありません。",
		Category: "list",
		Action:   "リストのオーナーにメンバー追加を依頼してください。",
	}
}

// NewListNotFoundOrNotOwnerError はリスト未検出とオーナー権限なしを
// 区別しない複合エラーを生成する。
// 条件付き一括更新の仕様上、両者は呼び出し側から識別できない。
func NewListNotFoundOrNotOwnerError(listID string) *APIError {
	return &APIError{
		Code:     ErrCodeListNotFoundOrOwner,
		Message:  fmt.Sprintf("リストが見つからないか、オーナーではありません: %s", listID),
		Category: "list",
		Action:   "リストIDとオーナー権限を確認してください。アーカイブ操作の場合はリストがアクティブであることも確認してください。",
	}
}

// NewOwnerCannotLeaveError はオーナーによる退出操作エラーを生成する。
func NewOwnerCannotLeaveError() *APIError {
	return &APIError{
		Code:     ErrCodeOwnerCannotLeave,
		Message:  "オーナーは自分のリストから退出できません。",
		Category: "list",
		Action:   "リストを削除する場合はdeleteListを使用してください。",
	}
}

// NewOwnerNotRemovableError はオーナーをメンバーから除外しようとした場合のエラーを生成する。
func NewOwnerNotRemovableError() *APIError {
	return &APIError{
		Code:     ErrCodeOwnerNotRemovable,
		Message:  "リストのオーナーをメンバーから削除することはできません。",
		Category: "list",
		Action:   "オーナー以外のメンバーIDを指定してください。",
	}
}

// NewMemberNotInListError は対象ユーザーがメンバーでない場合のエラーを生成する。
func NewMemberNotInListError(memberID string) *APIError {
	return &APIError{
		Code:     ErrCodeMemberNotInList,
		Message:  fmt.Sprintf("指定されたユーザーはこのリストのメンバーではありません: %s", memberID),
		Category: "list",
		Action:   "メンバーIDを確認してください。",
	}
}

// NewNotAMemberError は呼び出しユーザーがメンバーでない場合のエラーを生成する。
// リスト未検出との複合エラー（メンバーシップチェックはid+membersの一括検索で行う）。
func NewNotAMemberError(listID string) *APIError {
	return &APIError{
		Code:     ErrCodeNotAMember,
		Message:  fmt.Sprintf("リストが見つからないか、メンバーではありません: %s", listID),
		Category: "list",
		Action:   "リストIDを確認し、オーナーにメンバー追加を依頼してください。",
	}
}

// NewItemNotFoundError は品目未検出エラーを生成する。
func NewItemNotFoundError(itemID string) *APIError {
	return &APIError{
		Code:     ErrCodeItemNotFound,
		Message:  fmt.Sprintf("指定された品目が見つかりません: %s", itemID),
		Category: "list",
		Action:   "品目IDを確認してください。",
	}
}

// NewInvalidIDError は識別子の形式エラーを生成する。
func NewInvalidIDError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("識別子の形式が不正です: %s", field),
		Category: "validation",
		Action:   "UUID形式の識別子を指定してください。",
	}
}

// NewInvalidNameError は表示名の長さ制約違反エラーを生成する。
func NewInvalidNameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Message:  "名前は3文字以上255文字以下で指定してください。",
		Category: "validation",
		Action:   "名前の長さを確認してください。",
	}
}

// NewInvalidPageInfoError はページネーション入力の範囲エラーを生成する。
func NewInvalidPageInfoError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPageInfo,
		Message:  fmt.Sprintf("ページネーション入力が不正です: %s", reason),
		Category: "validation",
		Action:   "pageは0以上、limitは1以上100以下で指定してください。",
	}
}

// NewUnauthorizedError は認証情報欠落エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "X-User-Idヘッダーを設定してください。",
	}
}

// Package shoppinglist は買い物リスト管理のドメインロジックを提供する。
//
// 各操作はストアに対する短い独立したやり取りとして実装される。
// オーナー限定の更新系（名前変更・アーカイブ・削除）は認可条件を
// 条件付き更新のフィルタに畳み込んだ単一ラウンドトリップで行い、
// メンバー/品目系の更新は認可チェックと更新の2ラウンドトリップで行う。
// 後者ではチェックと更新の間にメンバーシップが変化しうるが、
// これは元契約の許容された性質であり、ここでも同じ振る舞いを保つ。
package shoppinglist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kaimono/internal/acl"
	"github.com/hitoshi/kaimono/internal/model"
	"github.com/hitoshi/kaimono/internal/repository"
)

// DeleteResult はリスト削除操作の結果ペイロード。
type DeleteResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// LeaveResult はリスト退出操作の結果ペイロード。
type LeaveResult struct {
	ListID  string `json:"listId"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// RemoveMemberResult はメンバー削除操作の結果ペイロード。
type RemoveMemberResult struct {
	ListID          string `json:"listId"`
	RemovedMemberID string `json:"removedMemberId"`
	Message         string `json:"message"`
}

// AddItemResult は品目追加操作の結果ペイロード。
type AddItemResult struct {
	ListID string     `json:"listId"`
	Item   model.Item `json:"item"`
}

// ResolveItemResult は品目解決操作の結果ペイロード。
type ResolveItemResult struct {
	ItemID     string `json:"itemId"`
	ListID     string `json:"listId"`
	Status     string `json:"status"`
	ResolvedBy string `json:"resolvedBy"`
}

// RemoveItemResult は品目削除操作の結果ペイロード。
type RemoveItemResult struct {
	ItemID  string `json:"itemId"`
	ListID  string `json:"listId"`
	Message string `json:"message"`
}

// UserInfo はページネーション結果に含まれる呼び出しユーザー情報。
type UserInfo struct {
	ID         string `json:"id"`
	ListsCount int    `json:"listsCount"`
}

// PageResult はリスト一覧操作の結果ペイロード。
type PageResult struct {
	PageInfo model.PageInfo      `json:"pageInfo"`
	ItemList []model.ListSummary `json:"itemList"`
	User     UserInfo            `json:"user"`
}

// Service は買い物リスト管理のサービス層。
type Service struct {
	repo repository.ListRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ListRepository) *Service {
	return &Service{repo: repo}
}

// Create は新しいリストを作成する。作成者がオーナーとなり、
// membersにはオーナーのみが登録される。
func (s *Service) Create(ctx context.Context, name, ownerID string) (*model.ShoppingList, error) {
	now := time.Now().UTC()
	list := &model.ShoppingList{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		Members:   []string{ownerID},
		Items:     []model.Item{},
		State:     model.ListStateActive,
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("リストの作成に失敗しました: %w", err)
	}

	return list, nil
}

// GetByID は指定IDのリストを取得する。
// オーナーまたはメンバーのみが閲覧できる。
func (s *Service) GetByID(ctx context.Context, id, callerID string) (*model.ShoppingList, error) {
	list, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("リストの取得に失敗しました: %w", err)
	}
	if list == nil {
		return nil, model.NewListNotFoundError(id)
	}

	if !acl.CanView(list, callerID) {
		return nil, model.NewListForbiddenError()
	}

	return list, nil
}

// UpdateName はリスト名を変更する。オーナー条件は更新フィルタに含まれ、
// 未検出とオーナー権限なしは区別されない。
func (s *Service) UpdateName(ctx context.Context, id, name, callerID string) (*model.ShoppingList, error) {
	list, err := s.repo.UpdateName(ctx, id, callerID, name)
	if err != nil {
		return nil, fmt.Errorf("リスト名の更新に失敗しました: %w", err)
	}
	if list == nil {
		return nil, model.NewListNotFoundOrNotOwnerError(id)
	}

	return list, nil
}

// Archive はアクティブなリストをアーカイブする。
// 未検出・権限なし・アーカイブ済みの3条件は結果から区別されない。
func (s *Service) Archive(ctx context.Context, id, callerID string) (*model.ShoppingList, error) {
	list, err := s.repo.Archive(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("リストのアーカイブに失敗しました: %w", err)
	}
	if list == nil {
		return nil, model.NewListNotFoundOrNotOwnerError(id)
	}

	return list, nil
}

// Delete はリストを削除する。オーナーのみが削除できる。
func (s *Service) Delete(ctx context.Context, id, callerID string) (*DeleteResult, error) {
	deleted, err := s.repo.Delete(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("リストの削除に失敗しました: %w", err)
	}
	if !deleted {
		return nil, model.NewListNotFoundOrNotOwnerError(id)
	}

	return &DeleteResult{
		ID:      id,
		Message: fmt.Sprintf("リスト %s を削除しました。", id),
	}, nil
}

// Leave は呼び出しユーザーをリストのメンバーから外す。
// オーナーは退出できない（削除を使用する）。
func (s *Service) Leave(ctx context.Context, id, callerID string) (*LeaveResult, error) {
	list, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("リストの取得に失敗しました: %w", err)
	}
	if list == nil {
		return nil, model.NewListNotFoundError(id)
	}

	if acl.IsOwner(list, callerID) {
		return nil, model.NewOwnerCannotLeaveError()
	}

	removed, err := s.repo.PullMember(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバーからの退出に失敗しました: %w", err)
	}
	if !removed {
		return nil, model.NewMemberNotInListError(callerID)
	}

	return &LeaveResult{
		ListID:  id,
		UserID:  callerID,
		Message: "リストから退出しました。",
	}, nil
}

// AddMember はリストにメンバーを追加する。オーナーのみが追加できる。
// 追加は集合的（冪等）で、既存メンバーを再追加しても重複しない。
func (s *Service) AddMember(ctx context.Context, id, memberID, callerID string) (*model.ShoppingList, error) {
	// 認可チェック（ラウンドトリップ1）
	owned, err := s.repo.FindByIDAndOwner(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("オーナー確認に失敗しました: %w", err)
	}
	if owned == nil {
		return nil, model.NewListNotFoundOrNotOwnerError(id)
	}

	// 更新（ラウンドトリップ2）。一致フィルタはidのみ。
	list, err := s.repo.AddMember(ctx, id, memberID)
	if err != nil {
		return nil, fmt.Errorf("メンバーの追加に失敗しました: %w", err)
	}
	if list == nil {
		return nil, model.NewListNotFoundError(id)
	}

	return list, nil
}

// RemoveMember はリストからメンバーを外す。オーナーのみが実行でき、
// オーナー自身を外すことはできない。
func (s *Service) RemoveMember(ctx context.Context, id, memberID, callerID string) (*RemoveMemberResult, error) {
	list, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("リストの取得に失敗しました: %w", err)
	}
	if list == nil || !acl.IsOwner(list, callerID) {
		return nil, model.NewListNotFoundOrNotOwnerError(id)
	}

	if memberID == list.OwnerID {
		return nil, model.NewOwnerNotRemovableError()
	}

	removed, err := s.repo.PullMember(ctx, id, memberID)
	if err != nil {
		return nil, fmt.Errorf("メンバーの削除に失敗しました: %w", err)
	}
	if !removed {
		return nil, model.NewMemberNotInListError(memberID)
	}

	return &RemoveMemberResult{
		ListID:          id,
		RemovedMemberID: memberID,
		Message:         "メンバーを削除しました。",
	}, nil
}

// AddItem はリストに品目を追加する。メンバーのみが追加できる。
func (s *Service) AddItem(ctx context.Context, id, itemName, callerID string) (*AddItemResult, error) {
	// 認可チェック（ラウンドトリップ1）
	member, err := s.repo.FindByIDAndMember(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバー確認に失敗しました: %w", err)
	}
	if member == nil {
		return nil, model.NewNotAMemberError(id)
	}

	item := model.Item{
		ID:       uuid.NewString(),
		Name:     itemName,
		AddedBy:  callerID,
		Resolved: false,
	}

	// 更新（ラウンドトリップ2）。一致フィルタはidのみ。
	list, err := s.repo.PushItem(ctx, id, item)
	if err != nil {
		return nil, fmt.Errorf("品目の追加に失敗しました: %w", err)
	}
	if list == nil {
		return nil, model.NewListNotFoundError(id)
	}

	return &AddItemResult{
		ListID: list.ID,
		Item:   item,
	}, nil
}

// ResolveItem は品目を解決済みにする。メンバーのみが実行できる。
func (s *Service) ResolveItem(ctx context.Context, id, itemID, callerID string) (*ResolveItemResult, error) {
	member, err := s.repo.FindByIDAndMember(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバー確認に失敗しました: %w", err)
	}
	if member == nil {
		return nil, model.NewNotAMemberError(id)
	}

	list, err := s.repo.ResolveItem(ctx, id, itemID, callerID)
	if err != nil {
		return nil, fmt.Errorf("品目の解決に失敗しました: %w", err)
	}
	if list == nil {
		return nil, model.NewItemNotFoundError(itemID)
	}

	return &ResolveItemResult{
		ItemID:     itemID,
		ListID:     list.ID,
		Status:     "resolved",
		ResolvedBy: callerID,
	}, nil
}

// RemoveItem は品目をリストから外す。メンバーのみが実行できる。
func (s *Service) RemoveItem(ctx context.Context, id, itemID, callerID string) (*RemoveItemResult, error) {
	member, err := s.repo.FindByIDAndMember(ctx, id, callerID)
	if err != nil {
		return nil, fmt.Errorf("メンバー確認に失敗しました: %w", err)
	}
	if member == nil {
		return nil, model.NewNotAMemberError(id)
	}

	removed, err := s.repo.PullItem(ctx, id, itemID)
	if err != nil {
		return nil, fmt.Errorf("品目の削除に失敗しました: %w", err)
	}
	if !removed {
		return nil, model.NewItemNotFoundError(itemID)
	}

	return &RemoveItemResult{
		ItemID:  itemID,
		ListID:  id,
		Message: "品目を削除しました。",
	}, nil
}

// ListActive は呼び出しユーザーが関与するアクティブなリストの一覧ページを返す。
func (s *Service) ListActive(ctx context.Context, callerID string, page, limit int) (*PageResult, error) {
	return s.listByState(ctx, model.ListStateActive, callerID, page, limit)
}

// ListArchived は呼び出しユーザーが関与するアーカイブ済みリストの一覧ページを返す。
func (s *Service) ListArchived(ctx context.Context, callerID string, page, limit int) (*PageResult, error) {
	return s.listByState(ctx, model.ListStateArchived, callerID, page, limit)
}

// listByState は状態別のリスト一覧ページを組み立てる。
// totalは当該ページ件数ではなくフィルタ条件に一致する全件数。
func (s *Service) listByState(ctx context.Context, state model.ListState, callerID string, page, limit int) (*PageResult, error) {
	summaries, total, err := s.repo.ListByState(ctx, state, callerID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("リスト一覧の取得に失敗しました: %w", err)
	}

	return &PageResult{
		PageInfo: model.PageInfo{
			Page:  page,
			Limit: limit,
			Total: total,
		},
		ItemList: summaries,
		User: UserInfo{
			ID:         callerID,
			ListsCount: total,
		},
	}, nil
}

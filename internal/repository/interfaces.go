// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/kaimono/internal/model"
)

// ListRepository は買い物リストドキュメントの永続化インターフェース。
// 1リスト=1行を単一のトランザクション境界とし、各メソッドはストアに対する
// 単一の原子的操作に対応する。認可条件はメソッドごとの一致フィルタに含まれる。
type ListRepository interface {
	// Create はリストを新規作成する。
	Create(ctx context.Context, list *model.ShoppingList) error

	// FindByID は指定IDのリストを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ShoppingList, error)

	// FindByIDAndOwner はid+オーナーIDの複合条件でリストを検索する。
	// オーナー認可の事前チェック用。見つからない場合はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.ShoppingList, error)

	// FindByIDAndMember はid+メンバーシップの複合条件でリストを検索する。
	// メンバー認可の事前チェック用。見つからない場合はnilを返す。
	FindByIDAndMember(ctx context.Context, id, memberID string) (*model.ShoppingList, error)

	// UpdateName は{id, ownerId}に一致するリストの名前を原子的に更新し、
	// revisionをインクリメントする。一致しない場合はnilを返す
	// （未検出とオーナー権限なしは区別できない）。
	UpdateName(ctx context.Context, id, ownerID, name string) (*model.ShoppingList, error)

	// Archive は{id, ownerId, state=active}に一致するリストをarchivedへ
	// 原子的に遷移させる。一致しない場合はnilを返す
	// （未検出・権限なし・アーカイブ済みは区別できない）。
	Archive(ctx context.Context, id, ownerID string) (*model.ShoppingList, error)

	// Delete は{id, ownerId}に一致するリストを削除する。
	// 削除された場合にtrueを返す。
	Delete(ctx context.Context, id, ownerID string) (bool, error)

	// AddMember はmemberIDをmembersへ集合的に追加する（重複なしの冪等追加）。
	// 一致フィルタはidのみ。既存メンバーでもrevisionはインクリメントされる。
	// リストが存在しない場合はnilを返す。
	AddMember(ctx context.Context, id, memberID string) (*model.ShoppingList, error)

	// PullMember は{id, memberId ∈ members}に一致するリストからmemberIDを
	// 原子的に除去する。除去された場合にtrueを返す。
	PullMember(ctx context.Context, id, memberID string) (bool, error)

	// PushItem は品目をitems末尾へ追加する。一致フィルタはidのみ。
	// リストが存在しない場合はnilを返す。
	PushItem(ctx context.Context, id string, item model.Item) (*model.ShoppingList, error)

	// ResolveItem は{id, itemId ∈ items[].id}に一致する品目を解決済みに更新する。
	// 一致しない場合はnilを返す（リスト未検出と品目未検出は区別できない）。
	ResolveItem(ctx context.Context, id, itemID, resolvedBy string) (*model.ShoppingList, error)

	// PullItem は{id, itemId ∈ items[].id}に一致する品目をitemsから除去する。
	// 除去された場合にtrueを返す。
	PullItem(ctx context.Context, id, itemID string) (bool, error)

	// ListByState は指定状態かつ呼び出しユーザーがオーナーまたはメンバーである
	// リストの要約ページと全件数を返す。
	// 並び順はcreated_at降順（同時刻はid降順）で固定データセットに対して安定。
	ListByState(ctx context.Context, state model.ListState, userID string, page, limit int) ([]model.ListSummary, int, error)
}

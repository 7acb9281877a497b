// Package acl はリストに対するオーナー/メンバー判定の純粋述語を提供する。
// ここでの判定は参照系の認可と、更新系の事前チェックに使用される。
// 更新系の最終的な認可は可能な限りストアの条件付き更新フィルタで再検証する。
package acl

import "github.com/hitoshi/kaimono/internal/model"

// IsOwner はuserIDがリストのオーナーかどうかを返す。
func IsOwner(list *model.ShoppingList, userID string) bool {
	return list != nil && list.OwnerID == userID
}

// IsMember はuserIDがリストのメンバーかどうかを返す。
// オーナーは作成時にmembersへ登録されるが、念のためオーナー自身も常にメンバーとみなす。
func IsMember(list *model.ShoppingList, userID string) bool {
	if list == nil {
		return false
	}
	if list.OwnerID == userID {
		return true
	}
	for _, m := range list.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// CanView はuserIDがリストを閲覧できるかどうかを返す。
// 閲覧はオーナーまたはメンバーに許可される。
func CanView(list *model.ShoppingList, userID string) bool {
	return IsOwner(list, userID) || IsMember(list, userID)
}

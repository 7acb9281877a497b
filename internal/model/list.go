// Package model はドメインモデルを定義する。
package model

import "time"

// ShoppingList は買い物リストの集約ルートを表す。
// Itemsは親リストに埋め込まれ、リスト外では独立した同一性を持たない。
type ShoppingList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	Members   []string  `json:"members"`
	Items     []Item    `json:"items"`
	State     ListState `json:"state"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListState はリストの状態を表す。
type ListState string

const (
	// ListStateActive はアクティブなリスト状態。
	ListStateActive ListState = "active"
	// ListStateArchived はアーカイブ済みのリスト状態。
	ListStateArchived ListState = "archived"
)

// Item はリストに埋め込まれた購入品目を表す。
// IDは親リスト内で一意であればよい。
type Item struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AddedBy    string `json:"addedBy"`
	Resolved   bool   `json:"resolved"`
	ResolvedBy string `json:"resolvedBy,omitempty"`
}

// ListSummary はページネーション一覧用のリスト要約射影。
type ListSummary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	OwnerID string    `json:"ownerId"`
	State   ListState `json:"state"`
}

// PageInfo はページネーションのメタ情報を表す。
// Totalはフィルタ条件に一致する全件数（当該ページ件数ではない）。
type PageInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

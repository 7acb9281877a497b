package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/kaimono/internal/model"
)

// PostgresListRepo はPostgreSQLを使用したリストリポジトリ。
// membersはTEXT[]、itemsはJSONB配列として1行に埋め込み、
// 行単位の条件付きUPDATEでドキュメントストアの原子的更新を再現する。
type PostgresListRepo struct {
	db *sql.DB
}

// NewPostgresListRepo はPostgresListRepoを生成する。
func NewPostgresListRepo(db *sql.DB) *PostgresListRepo {
	return &PostgresListRepo{db: db}
}

// listColumns はSELECT/RETURNINGで使用するカラム並び。scanListと対応する。
const listColumns = `id, name, owner_id, members, items, state, revision, created_at, updated_at`

// rowScanner はsql.Rowとsql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanList は1行をShoppingListへ読み出す。itemsはJSONBからデコードする。
func scanList(row rowScanner) (*model.ShoppingList, error) {
	list := &model.ShoppingList{}
	var itemsJSON []byte
	err := row.Scan(
		&list.ID,
		&list.Name,
		&list.OwnerID,
		pq.Array(&list.Members),
		&itemsJSON,
		&list.State,
		&list.Revision,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &list.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return list, nil
}

// Create はリストを新規作成する。
func (r *PostgresListRepo) Create(ctx context.Context, list *model.ShoppingList) error {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (id, name, owner_id, members, items, state, revision, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		list.ID, list.Name, list.OwnerID, pq.Array(list.Members), itemsJSON,
		list.State, list.Revision, list.CreatedAt, list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}

	return nil
}

// FindByID は指定IDのリストを取得する。見つからない場合はnilを返す。
func (r *PostgresListRepo) FindByID(ctx context.Context, id string) (*model.ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM shopping_lists WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find list by ID: %w", err)
	}

	return list, nil
}

// FindByIDAndOwner はid+オーナーIDの複合条件でリストを検索する。見つからない場合はnilを返す。
func (r *PostgresListRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM shopping_lists WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find list by ID and owner: %w", err)
	}

	return list, nil
}

// FindByIDAndMember はid+メンバーシップの複合条件でリストを検索する。見つからない場合はnilを返す。
func (r *PostgresListRepo) FindByIDAndMember(ctx context.Context, id, memberID string) (*model.ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM shopping_lists WHERE id = $1 AND $2 = ANY(members)`,
		id, memberID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find list by ID and member: %w", err)
	}

	return list, nil
}

// UpdateName は{id, ownerId}に一致するリストの名前を原子的に更新する。
// 一致しない場合はnilを返す。
func (r *PostgresListRepo) UpdateName(ctx context.Context, id, ownerID, name string) (*model.ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		`UPDATE shopping_lists
		 SET name = $3, revision = revision + 1, updated_at = now()
		 WHERE id = $1 AND owner_id = $2
		 RETURNING `+listColumns,
		id, ownerID, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update list name: %w", err)
	}

	return list, nil
}

// Archive は{id, ownerId, state=active}に一致するリストをarchivedへ遷移させる。
// 一致しない場合はnilを返す。
func (r *PostgresListRepo) Archive(ctx context.Context, id, ownerID string) (*model.ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		`UPDATE shopping_lists
		 SET state = $3, revision = revision + 1, updated_at = now()
		 WHERE id = $1 AND owner_id = $2 AND state = $4
		 RETURNING `+listColumns,
		id, ownerID, model.ListStateArchived, model.ListStateActive,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to archive list: %w", err)
	}

	return list, nil
}

// Delete は{id, ownerId}に一致するリストを削除する。削除された場合にtrueを返す。
func (r *PostgresListRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM shopping_lists WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete list: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// AddMember はmemberIDをmembersへ集合的に追加する。
// 既存メンバーの場合もrevisionはインクリメントされる（冪等な追加）。
// リストが存在しない場合はnilを返す。
func (r *PostgresListRepo) AddMember(ctx context.Context, id, memberID string) (*model.ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		`UPDATE shopping_lists
		 SET members = CASE WHEN $2 = ANY(members) THEN members ELSE array_append(members, $2) END,
		     revision = revision + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING `+listColumns,
		id, memberID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return list, nil
}

// PullMember は{id, memberId ∈ members}に一致するリストからmemberIDを除去する。
// 除去された場合にtrueを返す。
func (r *PostgresListRepo) PullMember(ctx context.Context, id, memberID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shopping_lists
		 SET members = array_remove(members, $2), revision = revision + 1, updated_at = now()
		 WHERE id = $1 AND $2 = ANY(members)`,
		id, memberID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to pull member: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// PushItem は品目をitems末尾へ追加する。リストが存在しない場合はnilを返す。
func (r *PostgresListRepo) PushItem(ctx context.Context, id string, item model.Item) (*model.ShoppingList, error) {
	itemJSON, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}

	list, err := scanList(r.db.QueryRowContext(ctx,
		`UPDATE shopping_lists
		 SET items = items || $2::jsonb, revision = revision + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING `+listColumns,
		id, itemJSON,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to push item: %w", err)
	}

	return list, nil
}

// ResolveItem は{id, itemId ∈ items[].id}に一致する品目を解決済みに更新する。
// 一致しない場合はnilを返す。
func (r *PostgresListRepo) ResolveItem(ctx context.Context, id, itemID, resolvedBy string) (*model.ShoppingList, error) {
	list, err := scanList(r.db.QueryRowContext(ctx,
		`UPDATE shopping_lists
		 SET items = (
		         SELECT jsonb_agg(
		             CASE WHEN elem->>'id' = $2
		                  THEN elem || jsonb_build_object('resolved', true, 'resolvedBy', $3::text)
		                  ELSE elem
		             END)
		         FROM jsonb_array_elements(items) AS elem
		     ),
		     revision = revision + 1, updated_at = now()
		 WHERE id = $1
		   AND EXISTS (SELECT 1 FROM jsonb_array_elements(items) AS e WHERE e->>'id' = $2)
		 RETURNING `+listColumns,
		id, itemID, resolvedBy,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve item: %w", err)
	}

	return list, nil
}

// PullItem は{id, itemId ∈ items[].id}に一致する品目をitemsから除去する。
// 除去された場合にtrueを返す。
func (r *PostgresListRepo) PullItem(ctx context.Context, id, itemID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE shopping_lists
		 SET items = COALESCE(
		         (SELECT jsonb_agg(elem) FROM jsonb_array_elements(items) AS elem WHERE elem->>'id' <> $2),
		         '[]'::jsonb
		     ),
		     revision = revision + 1, updated_at = now()
		 WHERE id = $1
		   AND EXISTS (SELECT 1 FROM jsonb_array_elements(items) AS e WHERE e->>'id' = $2)`,
		id, itemID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to pull item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListByState は指定状態かつユーザーが関与するリストの要約ページと全件数を返す。
// created_at降順（同時刻はid降順）で並び順を安定させる。
func (r *PostgresListRepo) ListByState(ctx context.Context, state model.ListState, userID string, page, limit int) ([]model.ListSummary, int, error) {
	offset := page * limit

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id, state
		 FROM shopping_lists
		 WHERE state = $1 AND (owner_id = $2 OR $2 = ANY(members))
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		state, userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list by state: %w", err)
	}
	defer rows.Close()

	summaries := []model.ListSummary{}
	for rows.Next() {
		var s model.ListSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID, &s.State); err != nil {
			return nil, 0, fmt.Errorf("failed to scan list summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate list summaries: %w", err)
	}

	var total int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shopping_lists
		 WHERE state = $1 AND (owner_id = $2 OR $2 = ANY(members))`,
		state, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count lists: %w", err)
	}

	return summaries, total, nil
}

// compile-time interface check
var _ ListRepository = (*PostgresListRepo)(nil)

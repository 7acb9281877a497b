package shoppinglist

import (
	"encoding/json"
	"time"
)

// レスポンスのsysセクションに記録される操作コマンド名。
const (
	CommandCreateList     = "shoppingList/createList"
	CommandLoadList       = "shoppingList/loadList"
	CommandUpdateListName = "shoppingList/updateListName"
	CommandDeleteList     = "shoppingList/deleteList"
	CommandArchiveList    = "shoppingList/archiveList"
	CommandLeaveList      = "shoppingList/leaveList"
	CommandAddMember      = "shoppingList/addMember"
	CommandRemoveMember   = "shoppingList/removeMember"
	CommandAddItem        = "shoppingList/addItem"
	CommandResolveItem    = "shoppingList/resolveItem"
	CommandRemoveItem     = "shoppingList/removeItem"
	CommandListActive     = "shoppingList/getActiveLists"
	CommandListArchived   = "shoppingList/getArchivedLists"
)

// sysセクションのprofileフィールドに入る認可プロファイル名。
const (
	ProfileListOwner  = "ListOwner"
	ProfileListMember = "ListMember"
	ProfileUser       = "User"
)

// Envelope は全操作共通のレスポンス封筒。
// dataに操作結果ペイロードを、sysに操作メタデータを持つ。
// sysにはコマンド名・プロファイル・タイムスタンプに加えて
// ペイロードの最上位フィールドが展開コピーされる。
type Envelope struct {
	Data any            `json:"data"`
	Sys  map[string]any `json:"sys"`
}

// NewEnvelope は操作結果をレスポンス封筒に包む。
// dataはJSONオブジェクトにマーシャル可能な値であること。
// ペイロードのフィールド名がsysの固定キー（command等）と衝突した場合は
// ペイロード側の値が優先される。
func NewEnvelope(command, profile string, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	sys := map[string]any{
		"command":     command,
		"profile":     profile,
		"currentTime": now,
		"serverTime":  now,
	}
	for k, v := range fields {
		sys[k] = v
	}

	return &Envelope{
		Data: data,
		Sys:  sys,
	}, nil
}

package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Task はユーザーが所有するタスクを表す。
// Descriptionがnilの場合は説明なし。
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask はタスク作成の正規化済み入力。
type NewTask struct {
	Title       string
	Description *string
}

// TaskPatch はタスク部分更新の正規化済み入力。
// nilのフィールドは変更しない。
type TaskPatch struct {
	Title       *string
	Description NullableString
	Completed   *bool
}

// Apply はパッチをタスクに適用する。
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description.Set {
		if p.Description.Null {
			t.Description = nil
		} else {
			v := p.Description.Value
			t.Description = &v
		}
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// NullableString は「未指定」「null」「値あり」の3状態を区別するJSON文字列。
// キーが存在しない場合UnmarshalJSONは呼ばれないため、Setはfalseのままになる。
type NullableString struct {
	Set   bool
	Null  bool
	Value string
}

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		n.Value = ""
		return nil
	}
	n.Null = false
	return json.Unmarshal(data, &n.Value)
}

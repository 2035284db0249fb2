// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/taskman/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は正規化済みメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーを作成日時の降順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての操作は所有者のユーザーIDでスコープされる。
type TaskRepository interface {
	// ListByUserID はユーザーのタスクを作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Task, error)

	// FindByIDAndUserID は所有者が一致するタスクを取得する。
	// 存在しない、または他ユーザーの所有の場合はnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// Update はタスクのタイトル・説明・完了状態を上書きする。
	// 対象が存在しない場合はfalseを返す。
	Update(ctx context.Context, task *model.Task) (bool, error)

	// DeleteByIDAndUserID は所有者が一致するタスクを削除する。
	// 対象が存在しない場合はfalseを返す。
	DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error)
}

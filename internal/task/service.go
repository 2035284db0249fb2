// Package task はタスク管理のドメインロジックを提供する。
// すべての操作は呼び出し元ユーザーの所有するタスクに限定される。
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// Service はタスク管理のサービス層。
type Service struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(taskRepo repository.TaskRepository) *Service {
	return &Service{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// List はユーザーのタスク一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Task, error) {
	tasks, err := s.taskRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
	}
	return tasks, nil
}

// Create はユーザーのタスクを作成する。完了状態は常にfalseで始まる。
func (s *Service) Create(ctx context.Context, userID string, in model.NewTask) (*model.Task, error) {
	now := s.now()
	task := &model.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("タスクの作成に失敗しました: %w", err)
	}
	return task, nil
}

// Get はユーザーが所有するタスクを返す。
// IDの形式不正、未存在、他ユーザー所有はすべてNOT_FOUNDとなる。
func (s *Service) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	if !validID(taskID) {
		return nil, model.NewTaskNotFoundError()
	}
	task, err := s.taskRepo.FindByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("タスクの取得に失敗しました: %w", err)
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError()
	}
	return task, nil
}

// Update はパッチを適用してタスクを更新する。
// 空のパッチでもupdated_atは更新される。
func (s *Service) Update(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	patch.Apply(task)
	task.UpdatedAt = s.now()

	updated, err := s.taskRepo.Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("タスクの更新に失敗しました: %w", err)
	}
	// 取得から更新までの間に削除された場合
	if !updated {
		return nil, model.NewTaskNotFoundError()
	}
	return task, nil
}

// Delete はユーザーが所有するタスクを削除する。
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	if !validID(taskID) {
		return model.NewTaskNotFoundError()
	}
	deleted, err := s.taskRepo.DeleteByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return fmt.Errorf("タスクの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTaskNotFoundError()
	}
	return nil
}

// validID はタスクIDがUUID形式かを判定する。UUID形式以外のIDはDBに問い合わせない。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

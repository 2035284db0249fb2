// Package auth はパスワード認証、セッショントークンの発行・検証、
// セッションCookieの受け渡しを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// AllowRoleOnRegister がtrueの場合のみ、登録時に指定されたロールを採用する。
	// テスト環境専用のフラグで、本番では必ずfalseにする。
	AllowRoleOnRegister bool
}

// Session は認証成功時の結果。
type Session struct {
	User  *model.User
	Token string
}

// Service は登録・ログインのビジネスロジックを提供する。
type Service struct {
	users     repository.UserRepository
	hasher    *PasswordHasher
	tokens    *TokenCodec
	config    ServiceConfig
	dummyHash string
	now       func() time.Time
}

// NewService はServiceを生成する。
// ユーザー不在時の比較に使うダミーハッシュを起動時に1回だけ計算する。
func NewService(
	users repository.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenCodec,
	config ServiceConfig,
) *Service {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		slog.Warn("failed to prepare dummy password hash", slog.String("error", err.Error()))
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		config:    config,
		dummyHash: dummy,
		now:       time.Now,
	}
}

// Register はユーザーを作成し、セッショントークンを発行する。
// メールアドレスが登録済みの場合はCONFLICTエラーを返す。
func (s *Service) Register(ctx context.Context, in model.Registration) (*Session, error) {
	role := model.RoleUser
	if s.config.AllowRoleOnRegister && in.Role.Valid() {
		role = in.Role
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailConflictError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(model.ClaimsFor(user))
	if err != nil {
		return nil, err
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &Session{User: user, Token: token}, nil
}

// Login は資格情報を検証し、セッショントークンを発行する。
// ユーザー不在とパスワード不一致はどちらも同じUNAUTHORIZEDエラーを返す。
func (s *Service) Login(ctx context.Context, in model.Credentials) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// 応答時間からアカウントの有無を推測されないよう、比較処理は常に行う
		s.hasher.Verify(in.Password, s.dummyHash)
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		slog.Info("login rejected", slog.String("user_id", user.ID))
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(model.ClaimsFor(user))
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return &Session{User: user, Token: token}, nil
}

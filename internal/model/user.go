// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "USER"
	// RoleAdmin は管理者。全ユーザー一覧の参照が許可される。
	RoleAdmin Role = "ADMIN"
)

// Valid はロールが定義済みの値であるかを返す。
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User はサービス利用ユーザーを表す。
// PasswordHashはAPIレスポンスに含めてはならない。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Claims はセッショントークンに埋め込まれる認証主体の情報。
// 発行時点のロールを保持するため、ロール変更は再ログインまで反映されない。
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
}

// ClaimsFor はユーザーからトークン用のClaimsを生成する。
func ClaimsFor(u *User) Claims {
	return Claims{
		Subject: u.ID,
		Email:   u.Email,
		Role:    u.Role,
	}
}

// Registration はユーザー登録の正規化済み入力。
// Roleが空の場合はRoleUserとして扱う。
type Registration struct {
	Email    string
	Password string
	Role     Role
}

// Credentials はログインの正規化済み入力。
type Credentials struct {
	Email    string
	Password string
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/taskman/internal/model"
)

// ErrInvalidToken はトークンの署名・有効期限・クレームのいずれかが不正な場合に返る。
// 呼び出し側は理由を区別せず「セッションなし」として扱う。
var ErrInvalidToken = errors.New("invalid session token")

// ErrEmptySecret は署名鍵が空の場合に返る。
var ErrEmptySecret = errors.New("token signing secret is empty")

// signingMethod は発行・検証で使用する唯一の署名アルゴリズム。
var signingMethod = jwt.SigningMethodHS256

// sessionClaims はJWTペイロードの構造。subject/iat/expは登録済みクレームを使う。
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec はセッショントークンの発行と検証を行う。
// 構築後はイミュータブルで、並行利用できる。
type TokenCodec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
// lifetimeが0以下の場合は1時間を使用する。
func NewTokenCodec(secret string, lifetime time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &TokenCodec{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Lifetime はトークンの有効期間を返す。
func (c *TokenCodec) Lifetime() time.Duration {
	return c.lifetime
}

// Issue はClaimsを埋め込んだ署名済みトークンを発行する。
func (c *TokenCodec) Issue(claims model.Claims) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(signingMethod, sessionClaims{
		Email: claims.Email,
		Role:  string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証しClaimsを返す。
// 署名・アルゴリズム・有効期限・クレームの型のいずれかが不正ならErrInvalidTokenを返す。
func (c *TokenCodec) Verify(raw string) (*model.Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(_ *jwt.Token) (any, error) {
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	role := model.Role(claims.Role)
	if claims.Subject == "" || claims.Email == "" || !role.Valid() {
		return nil, ErrInvalidToken
	}

	return &model.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    role,
	}, nil
}

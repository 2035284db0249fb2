package auth

import (
	"math"
	"net/http"
	"time"
)

// SessionCookieName はセッショントークンを運ぶCookieの名前。
const SessionCookieName = "task2_token"

// CookieTransport はセッショントークンとHTTP Cookieの相互変換を行う。
type CookieTransport struct {
	secure bool
	maxAge int // 秒
}

// NewCookieTransport はCookieTransportを生成する。
// secureは本番相当の環境でのみtrueにする。lifetimeはトークンの有効期間。
func NewCookieTransport(secure bool, lifetime time.Duration) *CookieTransport {
	maxAge := int(math.Ceil(lifetime.Seconds()))
	if maxAge < 1 {
		maxAge = 1
	}
	return &CookieTransport{
		secure: secure,
		maxAge: maxAge,
	}
}

// Attach はトークンをHTTP Only Cookieとしてレスポンスに設定する。
func (c *CookieTransport) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   c.maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear はセッションCookieを即時失効させる。
// net/httpではMaxAge<0が"Max-Age=0"として出力される。
func (c *CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Read はリクエストからセッショントークンを取り出す。
// Cookieが無いか空の場合はfalseを返す。
func (c *CookieTransport) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

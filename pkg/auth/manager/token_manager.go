package manager

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Константы cookie
const (
	// DefaultSessionCookie — имя cookie сессии по умолчанию
	DefaultSessionCookie = "updrill_session"
	// OAuthStateCookie хранит state на время OAuth-редиректа
	OAuthStateCookie = "oauth_state"
	// OAuthStateLifetime — время жизни state
	OAuthStateLifetime = 10 * time.Minute
)

// ErrStateMismatch возвращается, если state из callback не совпадает с cookie
var ErrStateMismatch = errors.New("oauth state mismatch")

// TokenManager управляет cookie сессии и OAuth state
type TokenManager struct {
	sessionCookie  string
	sessionExpiry  time.Duration
	cookiePath     string
	cookieDomain   string
	cookieSecure   bool
	cookieSameSite http.SameSite
}

// NewTokenManager создает менеджер cookie
func NewTokenManager(sessionCookie string, sessionExpiry time.Duration, secure bool) *TokenManager {
	if sessionCookie == "" {
		sessionCookie = DefaultSessionCookie
	}
	return &TokenManager{
		sessionCookie:  sessionCookie,
		sessionExpiry:  sessionExpiry,
		cookiePath:     "/",
		cookieSecure:   secure,
		cookieSameSite: http.SameSiteLaxMode, // Lax: cookie должна прийти после редиректа от Google
	}
}

// SetCookieAttributes переопределяет атрибуты cookie
func (m *TokenManager) SetCookieAttributes(path, domain string, secure bool, sameSite http.SameSite) {
	m.cookiePath = path
	m.cookieDomain = domain
	m.cookieSecure = secure
	m.cookieSameSite = sameSite
	log.Printf("[TokenManager] Cookie attributes set: Path=%s, Domain=%s, Secure=%v, SameSite=%v",
		path, domain, secure, sameSite)
}

// SessionCookieName возвращает имя cookie сессии
func (m *TokenManager) SessionCookieName() string {
	return m.sessionCookie
}

// SetSessionCookie устанавливает токен сессии в HttpOnly cookie
func (m *TokenManager) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(m.sessionCookie, token, int(m.sessionExpiry.Seconds())))
}

// GetSessionTokenFromCookie получает токен сессии из cookie
func (m *TokenManager) GetSessionTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.sessionCookie)
	if err != nil {
		return "", fmt.Errorf("session cookie %s: %w", m.sessionCookie, err)
	}
	if cookie.Value == "" {
		return "", fmt.Errorf("session cookie %s: %w", m.sessionCookie, http.ErrNoCookie)
	}
	return cookie.Value, nil
}

// ClearSessionCookie удаляет cookie сессии
func (m *TokenManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(m.sessionCookie, "", -1))
}

// IssueState генерирует state для OAuth и сохраняет его в cookie
func (m *TokenManager) IssueState(w http.ResponseWriter) string {
	state := uuid.NewString()
	http.SetCookie(w, m.cookie(OAuthStateCookie, state, int(OAuthStateLifetime.Seconds())))
	return state
}

// VerifyState сверяет state из callback с cookie и удаляет cookie
func (m *TokenManager) VerifyState(w http.ResponseWriter, r *http.Request, state string) error {
	cookie, err := r.Cookie(OAuthStateCookie)
	http.SetCookie(w, m.cookie(OAuthStateCookie, "", -1))
	if err != nil || cookie.Value == "" || state == "" {
		return ErrStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

func (m *TokenManager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.cookiePath,
		Domain:   m.cookieDomain,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: m.cookieSameSite,
		MaxAge:   maxAge,
	}
}

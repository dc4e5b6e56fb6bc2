package clientstate

import (
	"net/http"
	"time"
)

const refreshTokenCookie = "refresh_token"

// CookieStore binds a Store to one request/response pair. Reads consult
// values written earlier in the same request before falling back to the
// cookies the browser sent, so read-modify-write sequences observe their own
// writes before the response is flushed.
type CookieStore struct {
	req     *http.Request
	w       http.ResponseWriter
	secure  bool
	pending map[string]string
	removed map[string]bool
}

// NewCookieStore wraps the given request and response writer.
func NewCookieStore(w http.ResponseWriter, req *http.Request, secure bool) *CookieStore {
	return &CookieStore{
		req:     req,
		w:       w,
		secure:  secure,
		pending: make(map[string]string),
		removed: make(map[string]bool),
	}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		return v, true
	}
	if s.removed[key] {
		return "", false
	}
	c, err := s.req.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) Set(key, value string, ttl time.Duration) {
	s.pending[key] = value
	delete(s.removed, key)
	http.SetCookie(s.w, &http.Cookie{
		Name:    key,
		Value:   value,
		Path:    "/",
		Expires: time.Now().Add(ttl),
		Secure:  s.secure,
	})
}

func (s *CookieStore) Remove(key string) {
	delete(s.pending, key)
	s.removed[key] = true
	http.SetCookie(s.w, &http.Cookie{
		Name:   key,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
		Secure: s.secure,
	})
}

// RefreshToken reads the HttpOnly refresh cookie. It is reachable here only
// because this code runs server-side; it is never part of the generic Store.
func (s *CookieStore) RefreshToken() (string, bool) {
	if v, ok := s.pending[refreshTokenCookie]; ok {
		return v, true
	}
	if s.removed[refreshTokenCookie] {
		return "", false
	}
	c, err := s.req.Cookie(refreshTokenCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (s *CookieStore) SetRefreshToken(token string, ttl time.Duration) {
	s.pending[refreshTokenCookie] = token
	delete(s.removed, refreshTokenCookie)
	http.SetCookie(s.w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *CookieStore) ClearRefreshToken() {
	delete(s.pending, refreshTokenCookie)
	s.removed[refreshTokenCookie] = true
	http.SetCookie(s.w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

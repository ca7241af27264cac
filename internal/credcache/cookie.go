package credcache

import (
	"net/http"
	"net/url"
	"time"
)

const cookieLifetime = 365 * 24 * time.Hour

// CookieStore reads values from a request's cookies and writes them back as
// Set-Cookie headers on the response. Values are URL-escaped on the wire.
// Writes are visible to later reads on the same store.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	written map[string]*string // nil value marks a deletion
}

// Ensure CookieStore implements Store
var _ Store = (*CookieStore)(nil)

// NewCookieStore creates a CookieStore for a single request/response pair
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{w: w, r: r, written: make(map[string]*string)}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}

	c, err := s.r.Cookie(key)
	if err != nil {
		return "", false
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return c.Value, true
	}
	return v, true
}

func (s *CookieStore) Set(key, value string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   int(cookieLifetime.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	s.written[key] = &value
	return nil
}

func (s *CookieStore) Delete(key string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:   key,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	s.written[key] = nil
	return nil
}

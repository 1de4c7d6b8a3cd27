package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CookieName is the name of the session cookie
const CookieName = "symptom_session"

// SetSessionCookie sets an HTTP-only session cookie that lives as long as the
// server keeps the session's form state.
func SetSessionCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSessionCookie reads the session ID from the cookie
func GetSessionCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// getOrCreateSessionID reuses the cookie's session or starts a new one.
func (s *Server) getOrCreateSessionID(w http.ResponseWriter, r *http.Request) string {
	if sid, err := GetSessionCookie(r); err == nil {
		if _, err := uuid.Parse(sid); err == nil {
			SetSessionCookie(w, sid, s.cfg.SessionTTL)
			return sid
		}
	}
	sid := uuid.NewString()
	SetSessionCookie(w, sid, s.cfg.SessionTTL)
	return sid
}

package web

import (
	"net/http"

	"boba-kart/internal/cart"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "boba_session"

// currentSession returns the id of the caller's live session, if any.
func (h *Handler) currentSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	if !h.sessions.Exists(c.Value) {
		return "", false
	}
	return c.Value, true
}

// withSession runs fn on the caller's session, starting one when needed,
// and refreshes the cookie.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*cart.Session)) {
	id, ok := h.currentSession(r)
	if !ok || !h.sessions.Update(id, fn) {
		id = h.sessions.Create()
		h.sessions.Update(id, fn)
		h.logger.Debug().Msg("session started")
	}
	h.setCookie(w, id)
}

func (h *Handler) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

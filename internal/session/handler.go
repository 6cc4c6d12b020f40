package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const stateCookieName = "buildboard_oauth_state"

// Handler serves the login/callback/logout endpoints that establish and
// destroy sessions.
type Handler struct {
	store    *Store
	provider *Provider
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(store *Store, provider *Provider, logger *slog.Logger) *Handler {
	return &Handler{store: store, provider: provider, logger: logger}
}

// Mount registers the auth routes on mux.
func (h *Handler) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/login", h.login)
	mux.HandleFunc("GET /auth/callback", h.callback)
	mux.HandleFunc("POST /auth/logout", h.logout)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	clearCookie(w, stateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	token, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("code exchange failed", "err", err)
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}
	user, err := h.provider.Userinfo(r.Context(), token)
	if err != nil {
		h.logger.Error("userinfo fetch failed", "err", err)
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	sess := h.store.Create(user, token)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("session established", "user", user.Subject)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		h.store.Delete(cookie.Value)
	}
	clearCookie(w, CookieName)
	w.WriteHeader(http.StatusNoContent)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

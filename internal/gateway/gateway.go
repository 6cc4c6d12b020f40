// Package gateway exposes the browser-facing API surface. Each handler
// resolves the caller's session, attaches the stored credential to one
// upstream call, and relays the upstream status and body. Handlers hold no
// state of their own and are safe to run in parallel.
package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/waabox/buildboard/internal/session"
	"github.com/waabox/buildboard/internal/upstream"
)

// Gateway proxies browser requests to the Constructum CI API.
type Gateway struct {
	sessions *session.Store
	upstream *upstream.Client
	logger   *slog.Logger
}

// New creates a Gateway.
func New(sessions *session.Store, client *upstream.Client, logger *slog.Logger) *Gateway {
	return &Gateway{sessions: sessions, upstream: client, logger: logger}
}

// Mount registers the gateway routes on mux. The surface mirrors the
// upstream API one-to-one under the /v1/api prefix, minus the credential
// header, which is injected server-side.
func (g *Gateway) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/api/repos", g.withSession(g.listRepos))
	mux.HandleFunc("POST /v1/api/repos", g.withSession(g.registerRepo))
	mux.HandleFunc("GET /v1/api/repos/{repoId}", g.withSession(g.getRepo))
	mux.HandleFunc("DELETE /v1/api/repos/{repoId}", g.withSession(g.unregisterRepo))
	mux.HandleFunc("GET /v1/api/repos/{repoId}/jobs", g.withSession(g.listRepoJobs))
	mux.HandleFunc("GET /v1/api/jobs", g.withSession(g.listJobs))
	mux.HandleFunc("GET /v1/api/jobs/{jobId}", g.withSession(g.getJob))
	mux.HandleFunc("GET /v1/api/jobs/{jobId}/steps/{stepId}/logs", g.withSession(g.getStepLogs))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess session.Session)

// withSession resolves the session before the handler runs. A request with
// no valid session gets a uniform 401 envelope and never reaches upstream.
func (g *Gateway) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := g.sessions.FromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r, sess)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// relay writes an upstream response through unmodified.
func relay(w http.ResponseWriter, resp upstream.Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

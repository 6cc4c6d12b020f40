package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/waabox/buildboard/internal/domain"
	"github.com/waabox/buildboard/internal/session"
)

func (g *Gateway) listRepos(w http.ResponseWriter, r *http.Request, sess session.Session) {
	resp, err := g.upstream.Forward(r.Context(), http.MethodGet, "/v1/repos", sess.AccessToken, nil)
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	relay(w, resp)
}

func (g *Gateway) getRepo(w http.ResponseWriter, r *http.Request, sess session.Session) {
	path := "/v1/repos/" + url.PathEscape(r.PathValue("repoId"))
	resp, err := g.upstream.Forward(r.Context(), http.MethodGet, path, sess.AccessToken, nil)
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	relay(w, resp)
}

// registerRepo forwards a {owner, name} registration. Only those two fields
// are passed on, and the upstream status is honored whether or not it is a
// 2xx.
func (g *Gateway) registerRepo(w http.ResponseWriter, r *http.Request, sess session.Session) {
	var payload domain.RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid registration payload")
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encoding registration payload")
		return
	}

	resp, err := g.upstream.Forward(r.Context(), http.MethodPost, "/v1/repos", sess.AccessToken, bytes.NewReader(body))
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	relay(w, resp)
}

// unregisterRepo relays the exact upstream status: a 204 reads as success
// with an empty JSON object, anything else becomes an error envelope
// carrying that same code.
func (g *Gateway) unregisterRepo(w http.ResponseWriter, r *http.Request, sess session.Session) {
	path := "/v1/repos/" + url.PathEscape(r.PathValue("repoId"))
	resp, err := g.upstream.Forward(r.Context(), http.MethodDelete, path, sess.AccessToken, nil)
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	if resp.Status != http.StatusNoContent {
		writeError(w, resp.Status, http.StatusText(resp.Status))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (g *Gateway) upstreamFailure(w http.ResponseWriter, r *http.Request, err error) {
	g.logger.Error("upstream call failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusBadGateway, "upstream unreachable")
}

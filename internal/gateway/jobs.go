package gateway

import (
	"net/http"
	"net/url"

	"github.com/waabox/buildboard/internal/domain"
	"github.com/waabox/buildboard/internal/session"
)

func (g *Gateway) listJobs(w http.ResponseWriter, r *http.Request, sess session.Session) {
	resp, err := g.upstream.Forward(r.Context(), http.MethodGet, "/v1/jobs", sess.AccessToken, nil)
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	relay(w, resp)
}

func (g *Gateway) listRepoJobs(w http.ResponseWriter, r *http.Request, sess session.Session) {
	path := "/v1/repos/" + url.PathEscape(r.PathValue("repoId")) + "/jobs"
	resp, err := g.upstream.Forward(r.Context(), http.MethodGet, path, sess.AccessToken, nil)
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	relay(w, resp)
}

func (g *Gateway) getJob(w http.ResponseWriter, r *http.Request, sess session.Session) {
	path := "/v1/jobs/" + url.PathEscape(r.PathValue("jobId"))
	resp, err := g.upstream.Forward(r.Context(), http.MethodGet, path, sess.AccessToken, nil)
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	relay(w, resp)
}

// getStepLogs is the one route that rewrites the upstream body: the
// Logs/ManyLogs union is resolved here, once, into flat numbered lines so
// nothing downstream branches on shape again.
func (g *Gateway) getStepLogs(w http.ResponseWriter, r *http.Request, sess session.Session) {
	path := "/v1/jobs/" + url.PathEscape(r.PathValue("jobId")) +
		"/steps/" + url.PathEscape(r.PathValue("stepId")) + "/logs"
	resp, err := g.upstream.Forward(r.Context(), http.MethodGet, path, sess.AccessToken, nil)
	if err != nil {
		g.upstreamFailure(w, r, err)
		return
	}
	if !resp.OK() {
		relay(w, resp)
		return
	}

	lines, err := domain.ParseStepLogs(resp.Body)
	if err != nil {
		g.logger.Error("malformed log payload", "path", r.URL.Path, "err", err)
		writeError(w, http.StatusBadGateway, "malformed log payload")
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

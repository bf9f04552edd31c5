package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sagenex/teamtree/pkg/backend"
	"github.com/sagenex/teamtree/pkg/buildinfo"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/pipeline"
	"github.com/sagenex/teamtree/pkg/snapshot"
	"github.com/sagenex/teamtree/pkg/tree"
)

// maxBodyBytes bounds posted trees.
const maxBodyBytes = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// client returns a backend client carrying the caller's token.
func (s *Server) client(r *http.Request) *backend.Client {
	return s.backend.WithToken(bearerToken(r.Context()))
}

// =============================================================================
// Tree
// =============================================================================

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	resp, err := s.runner.Fetch(r.Context(), s.client(r), s.cfg.Defaults)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTreeLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.runner.Fetch(r.Context(), s.client(r), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), resp, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleTreeRender(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.client(r))
}

// =============================================================================
// Posted trees
// =============================================================================

func (s *Server) handlePostLayout(w http.ResponseWriter, r *http.Request) {
	resp, err := decodeTree(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), resp, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handlePostRender(w http.ResponseWriter, r *http.Request) {
	resp, err := decodeTree(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, pipeline.Static(resp))
}

// decodeTree reads a {tree, parent} body. Validation is left to the layout
// stage so lenient mode can skip bad members instead of failing.
func decodeTree(w http.ResponseWriter, r *http.Request) (tree.Response, error) {
	var resp tree.Response
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&resp); err != nil {
		return tree.Response{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	if resp.Tree == nil {
		return tree.Response{}, errors.New(errors.ErrCodeInvalidTree, "request body has no tree")
	}
	return resp, nil
}

// render runs the full pipeline for the {format} URL parameter and writes
// the artifact.
func (s *Server) render(w http.ResponseWriter, r *http.Request, f pipeline.Fetcher) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), f, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("ETag", strconv.Quote(res.LayoutHash))
	w.Header().Set("X-Teamtree-Cache", cacheStatus(res.CacheInfo))
	if n := res.Stats.Skipped; n > 0 {
		w.Header().Set("X-Teamtree-Skipped", strconv.Itoa(n))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func cacheStatus(info pipeline.CacheInfo) string {
	if info.RenderHit {
		return "hit"
	}
	return "miss"
}

// options applies query parameters on top of the configured defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.Logger = s.logger
	q := r.URL.Query()

	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("renderer"); v != "" {
		opts.Renderer = v
	}
	if v := q.Get("highlight"); v != "" {
		opts.Highlight = strings.Split(v, ",")
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v)
		}
		opts.Scale = f
	}
	for name, dst := range map[string]*bool{
		"hide_packages": &opts.HidePackages,
		"detailed":      &opts.Detailed,
		"refresh":       &opts.Refresh,
		"strict":        &opts.Layout.Strict,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

// =============================================================================
// Placement
// =============================================================================

func (s *Server) handlePlacementQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := s.client(r).FetchPlacementQueue(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if queue == nil {
		queue = []backend.PendingUser{}
	}
	writeJSON(w, http.StatusOK, queue)
}

func (s *Server) handlePlacement(w http.ResponseWriter, r *http.Request) {
	var req backend.PlacementRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode placement request"))
		return
	}
	res, err := s.client(r).Place(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	snaps, err := s.cfg.Snapshots.List(r.Context(), memberID(r.Context()), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]snapshotSummary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, summarize(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := snapshot.New(member(r.Context()), s.backend.BaseURL())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.cfg.Snapshots.Save(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, summarize(snap))
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.cfg.Snapshots.Get(r.Context(), memberID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleDiffSnapshots compares ?from= with ?to=. A missing to means the
// latest snapshot.
func (s *Server) handleDiffSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := memberID(ctx)
	q := r.URL.Query()
	from, err := s.cfg.Snapshots.Get(ctx, owner, q.Get("from"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var to *snapshot.Snapshot
	if id := q.Get("to"); id != "" {
		to, err = s.cfg.Snapshots.Get(ctx, owner, id)
	} else {
		to, err = s.cfg.Snapshots.Latest(ctx, owner)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot.Diff(from, to))
}

// snapshotSummary is a snapshot without its tree.
type snapshotSummary struct {
	ID      string     `json:"id"`
	TakenAt string     `json:"taken_at"`
	Hash    string     `json:"hash"`
	Stats   tree.Stats `json:"stats"`
}

func summarize(s *snapshot.Snapshot) snapshotSummary {
	return snapshotSummary{
		ID:      s.ID,
		TakenAt: s.TakenAt.Format(time.RFC3339),
		Hash:    s.Hash,
		Stats:   s.Stats,
	}
}

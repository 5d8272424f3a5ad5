package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/lineagescope/pkg/buildinfo"
	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/interact"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/pipeline"
	"github.com/matzehuels/lineagescope/pkg/report"
	"github.com/matzehuels/lineagescope/pkg/session"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type createResponse struct {
	ID        string         `json:"id"`
	ExpiresAt time.Time      `json:"expires_at"`
	Target    string         `json:"target"`
	Summary   report.Summary `json:"summary"`
	Graph     lineage.Graph  `json:"graph"`
	State     interact.State `json:"state"`
}

type graphResponse struct {
	Graph lineage.Graph  `json:"graph"`
	State interact.State `json:"state"`
}

type resetResponse struct {
	Cleared int           `json:"cleared"`
	Graph   lineage.Graph `json:"graph"`
}

type positionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type viewRequest struct {
	Mode string `json:"mode"`
}

type filterRequest struct {
	Risk *bool `json:"risk"`
}

// artifact is a handler result written as raw bytes.
type artifact struct {
	contentType string
	data        []byte
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "read report"))
		return
	}
	rep, err := report.Parse(data)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	canonical, err := report.Marshal(rep)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	sess, err := session.New(canonical, s.cfg.SessionTTL)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	ctrl := s.newController()
	ctrl.Load(ctx, rep)
	sess.State = ctrl.Snapshot()

	if err := s.store.Set(ctx, sess); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID, "target", rep.Target.QualifiedName(), "packages", len(rep.Packages))

	writeJSON(w, http.StatusCreated, createResponse{
		ID:        sess.ID,
		ExpiresAt: sess.ExpiresAt,
		Target:    rep.Target.QualifiedName(),
		Summary:   rep.Summary,
		Graph:     ctrl.Graph(),
		State:     sess.State,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSessionID(id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	release := s.locks.Lock(id)
	defer release()

	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, false, func(ctx context.Context, c *interact.Controller) (any, error) {
		return graphResponse{Graph: c.Graph(), State: c.Snapshot()}, nil
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.withSession(w, r, false, func(ctx context.Context, c *interact.Controller) (any, error) {
		artifacts, err := s.runner.Render(ctx, c.Graph(), pipeline.Options{
			Formats:  []string{format},
			Detailed: c.ViewMode() == lineage.ViewDetailed,
		})
		if err != nil {
			return nil, err
		}
		return artifact{contentType: pipeline.ContentTypes[format], data: artifacts[format]}, nil
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	s.withSession(w, r, true, func(ctx context.Context, c *interact.Controller) (any, error) {
		return c.OnNodeClick(ctx, node)
	})
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	var req positionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "position requires x and y"))
		return
	}
	pos := lineage.Position{X: *req.X, Y: *req.Y}
	s.withSession(w, r, true, func(ctx context.Context, c *interact.Controller) (any, error) {
		if err := c.OnNodePositionChange(ctx, node, pos); err != nil {
			return nil, err
		}
		return graphResponse{Graph: c.Graph(), State: c.Snapshot()}, nil
	})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	node := chi.URLParam(r, "node")
	s.withSession(w, r, false, func(ctx context.Context, c *interact.Controller) (any, error) {
		return c.Detail(node)
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, true, func(ctx context.Context, c *interact.Controller) (any, error) {
		n := c.ResetPositions(ctx)
		return resetResponse{Cleared: n, Graph: c.Graph()}, nil
	})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	s.withSession(w, r, true, func(ctx context.Context, c *interact.Controller) (any, error) {
		if err := c.SetViewMode(ctx, lineage.ViewMode(req.Mode)); err != nil {
			return nil, err
		}
		return graphResponse{Graph: c.Graph(), State: c.Snapshot()}, nil
	})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.Risk == nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeInvalidInput, "filter requires risk"))
		return
	}
	s.withSession(w, r, true, func(ctx context.Context, c *interact.Controller) (any, error) {
		c.SetRiskFilter(ctx, *req.Risk)
		return graphResponse{Graph: c.Graph(), State: c.Snapshot()}, nil
	})
}

// =============================================================================
// Session plumbing
// =============================================================================

// withSession loads the session named in the URL, restores a controller from
// it, runs fn, and writes the result. When mutate is set and fn succeeds, the
// controller's state is saved back and the session expiry extended.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, mutate bool, fn func(context.Context, *interact.Controller) (any, error)) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSessionID(id); err != nil {
		writeError(w, s.logger, err)
		return
	}

	release := s.locks.Lock(id)
	defer release()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if sess == nil {
		writeError(w, s.logger, errors.New(errors.ErrCodeSessionNotFound, "session %s not found or expired", id))
		return
	}

	rep, err := report.Parse(sess.Report)
	if err != nil {
		writeError(w, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "stored report for session %s", id))
		return
	}
	ctrl := s.newController()
	ctrl.Load(ctx, rep)
	ctrl.Restore(ctx, sess.State)

	result, err := fn(ctx, ctrl)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if mutate {
		sess.State = ctrl.Snapshot()
		sess.Touch(s.cfg.SessionTTL)
		if err := s.store.Set(ctx, sess); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}

	if a, ok := result.(artifact); ok {
		w.Header().Set("Content-Type", a.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(a.data)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(a.data)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) newController() *interact.Controller {
	return interact.NewController(s.cfg.Controller)
}

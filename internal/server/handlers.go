package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/claimgraph/pkg/buildinfo"
	errs "github.com/matzehuels/claimgraph/pkg/errors"
	"github.com/matzehuels/claimgraph/pkg/explore"
	"github.com/matzehuels/claimgraph/pkg/layout"
	"github.com/matzehuels/claimgraph/pkg/render/nodelink"
)

type viewKey struct{}

// createRequest is the body of POST /api/views.
type createRequest struct {
	Root      string `json:"root"`
	Kind      string `json:"kind"`
	Layout    string `json:"layout"`
	Direction string `json:"direction"`
}

// createResponse is returned by POST /api/views.
type createResponse struct {
	ID    string        `json:"id"`
	Scene explore.Scene `json:"scene"`
}

// layoutRequest is the body of PUT /api/views/{viewID}/layout.
type layoutRequest struct {
	Layout    string `json:"layout"`
	Direction string `json:"direction"`
}

// gestureRequest is the body of POST /api/views/{viewID}/gestures and of
// messages sent over the stream.
type gestureRequest struct {
	Gesture string `json:"gesture"`
	Target  string `json:"target"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Root != "" {
		if err := errs.ValidateRoot(req.Root); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	kind, err := explore.ParseRootKind(req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	strategy, dir, err := s.strategy(req.Layout, req.Direction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.explore
	opts.Kind = kind
	opts.Logger = s.logger
	v, err := explore.Open(r.Context(), s.src, req.Root, explore.ViewOptions{
		Options:   opts,
		Layout:    strategy,
		Direction: dir,
		Resolver:  s.resolver,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	scene, err := v.Snapshot(r.Context())
	if err != nil {
		v.Close()
		s.writeError(w, r, err)
		return
	}
	s.views.add(v)
	w.Header().Set("Location", "/api/views/"+v.ID())
	writeJSON(w, http.StatusCreated, createResponse{ID: v.ID(), Scene: scene})
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.writeScene(w, r, viewFrom(r.Context()))
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	s.views.remove(viewFrom(r.Context()).ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	strategy, dir, err := s.strategy(req.Layout, req.Direction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v := viewFrom(r.Context())
	v.SetLayout(r.Context(), strategy, dir)
	s.writeScene(w, r, v)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	if err := errs.ValidateID(nodeID); err != nil {
		s.writeError(w, r, err)
		return
	}
	v := viewFrom(r.Context())
	if err := v.Expand(r.Context(), nodeID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeScene(w, r, v)
}

func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	var req gestureRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := dispatch(r.Context(), viewFrom(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = io.WriteString(w, dot)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := s.svg(r.Context(), dot)
	if err != nil {
		s.writeError(w, r, errs.Wrap(errs.ErrCodeInternal, err, "could not render the graph"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) dot(r *http.Request) (string, error) {
	scene, err := viewFrom(r.Context()).Snapshot(r.Context())
	if err != nil {
		return "", err
	}
	labels, _ := strconv.ParseBool(r.URL.Query().Get("labels"))
	return nodelink.ToDOT(scene.Diagram(), nodelink.Options{EdgeLabels: labels}), nil
}

// =============================================================================
// Helpers
// =============================================================================

// withView resolves {viewID} and stores the view in the request context.
func (s *Server) withView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "viewID")
		if err := errs.ValidateID(id); err != nil {
			s.writeError(w, r, err)
			return
		}
		v, ok := s.views.get(id)
		if !ok {
			s.writeError(w, r, errs.New(errs.ErrCodeViewNotFound, "This exploration no longer exists. Please start a new one."))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewKey{}, v)))
	})
}

func viewFrom(ctx context.Context) *explore.View {
	return ctx.Value(viewKey{}).(*explore.View)
}

func (s *Server) strategy(name, direction string) (layout.Strategy, layout.Direction, error) {
	kind, err := layout.Parse(name)
	if err != nil {
		return nil, "", err
	}
	dir, err := layout.ParseDirection(direction)
	if err != nil {
		return nil, "", err
	}
	strategy, err := s.strategies(kind)
	if err != nil {
		return nil, "", err
	}
	return strategy, dir, nil
}

func (s *Server) writeScene(w http.ResponseWriter, r *http.Request, v *explore.View) {
	scene, err := v.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func dispatch(ctx context.Context, v *explore.View, req gestureRequest) (explore.Result, error) {
	kind, err := explore.ParseEventKind(req.Gesture)
	if err != nil {
		return explore.Result{}, err
	}
	return v.Dispatch(ctx, explore.Event{Kind: kind, Target: req.Target})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body is not valid JSON")
	}
	return nil
}

// writeError writes err as a JSON error body. Only the user message leaves
// the server; the full error is logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	var rl *errs.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: errs.UserMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

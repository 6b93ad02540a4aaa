package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/ontolayout/pkg/buildinfo"
	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/io"
	"github.com/matzehuels/ontolayout/pkg/metrics"
	"github.com/matzehuels/ontolayout/pkg/model"
	"github.com/matzehuels/ontolayout/pkg/pipeline"
	"github.com/matzehuels/ontolayout/pkg/store"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Build     buildinfo.Info    `json:"build"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// MetricsResponse is the body of POST /v1/metrics.
type MetricsResponse struct {
	Metrics  metrics.Report `json:"metrics"`
	Mean     float64        `json:"mean"`
	CacheHit bool           `json:"cacheHit"`
}

// DiagramLayoutRequest is the body of POST /v1/diagrams/{id}/layout.
// The diagram itself comes from the store.
type DiagramLayoutRequest struct {
	Models  []model.Static   `json:"models"`
	Options pipeline.Options `json:"options"`
	// DryRun computes the changes without committing them.
	DryRun bool `json:"dryRun,omitempty"`
}

// DiagramLayoutResponse is the body returned by POST /v1/diagrams/{id}/layout.
type DiagramLayoutResponse struct {
	*io.Response
	Committed bool `json:"committed"`
	Updated   int  `json:"updated"`
	Created   int  `json:"created"`
}

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	details := map[string]string{"store": "disabled"}
	if s.Store != nil {
		details["store"] = "enabled"
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "ontolayout",
		Build:     buildinfo.Get(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Details:   details,
	})
}

func (s *Server) solvers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"solvers": s.Runner.Solvers.Names()})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	req, err := io.ReadRequest(r.Body)
	if err != nil {
		s.writeError(w, r, bodyError(err))
		return
	}
	res, err := s.run(r, req.Models, req.Diagram.Memory(), req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.response(r, res)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	req, err := io.ReadRequest(r.Body)
	if err != nil {
		s.writeError(w, r, bodyError(err))
		return
	}
	ctx := r.Context()
	ex, err := model.Extract(ctx, req.Sources()...)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "extract models"))
		return
	}
	opts := s.options(req.Options)
	mg, _, err := s.Runner.Build(ctx, ex, req.Diagram.Memory(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, hit, err := s.Runner.Evaluate(ctx, mg.Snapshot())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MetricsResponse{Metrics: report, Mean: report.Mean(), CacheHit: hit})
}

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	d, err := s.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, io.FromMemory(d))
}

func (s *Server) layoutDiagram(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	var req DiagramLayoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, bodyError(errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram layout request")))
		return
	}
	if len(req.Models) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "layout request has no models"))
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")
	d, err := s.Store.Load(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.run(r, req.Models, d, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.response(r, res)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := DiagramLayoutResponse{Response: resp}
	if !req.DryRun {
		stats, err := store.Commit(ctx, s.Store, id, res.Changes)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out.Committed = true
		out.Updated, out.Created = stats.Updated, stats.Created
		s.Logger.Info("diagram committed", "diagram", id, "updated", stats.Updated, "created", stats.Created)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) run(r *http.Request, models []model.Static, d diagram.Reader, opts pipeline.Options) (*pipeline.Result, error) {
	ctx := r.Context()
	sources := make([]model.Source, len(models))
	for i, m := range models {
		sources[i] = m
	}
	ex, err := model.Extract(ctx, sources...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "extract models")
	}
	return s.Runner.Execute(ctx, ex, d, s.options(opts))
}

// response converts res, scoring the layout when the query asks for it
// with ?metrics=true.
func (s *Server) response(r *http.Request, res *pipeline.Result) (*io.Response, error) {
	resp := io.NewResponse(res)
	score, err := queryBool(r, "metrics")
	if err != nil || !score {
		return resp, err
	}
	report, _, err := s.Runner.Evaluate(r.Context(), res.Graph.Snapshot())
	if err != nil {
		return nil, err
	}
	resp.Metrics = &report
	return resp, nil
}

func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
	}
	return b, nil
}

// bodyError reports a body cut off by the size limit as REQUEST_TOO_LARGE.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.Wrap(errors.ErrCodeTooLarge, err, "request body exceeds %d bytes", tooLarge.Limit)
	}
	return err
}

func (s *Server) options(opts pipeline.Options) pipeline.Options {
	if s.Defaults != nil {
		s.Defaults(&opts)
	}
	opts.Logger = s.Logger
	return opts
}

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.Store != nil {
		return true
	}
	s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no diagram store configured"))
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", r.URL.Path, "error", err)
	} else {
		s.Logger.Debug("request rejected", "path", r.URL.Path, "code", body.Error.Code, "error", err)
	}
	s.writeJSON(w, status, body)
}

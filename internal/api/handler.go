package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/cartcheck/internal/evaluation"
	"github.com/eugenenazirov/cartcheck/internal/metrics"
	"github.com/eugenenazirov/cartcheck/internal/packing"
	"github.com/eugenenazirov/cartcheck/internal/strategy"
	"github.com/eugenenazirov/cartcheck/internal/supplier"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the problem supplier into HTTP handlers that judge submitted solutions.
type Handler struct {
	supplier supplier.Supplier
	recorder *metrics.Recorder

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithRecorder counts judged submissions.
func WithRecorder(r *metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		h.recorder = r
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(sup supplier.Supplier, opts ...HandlerOption) *Handler {
	h := &Handler{
		supplier: sup,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListProblems(w http.ResponseWriter, r *http.Request) {
	ids, err := h.supplier.ListProblemIDs(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if ids == nil {
		ids = []packing.ProblemID{}
	}
	writeJSON(w, http.StatusOK, problemsResponse{Problems: ids})
}

func (h *Handler) handleGetProblem(w http.ResponseWriter, r *http.Request) {
	problem, ok := h.loadProblem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, problemResponse{
		ID:       problem.ID,
		Capacity: problem.Capacity,
		Items:    problem.Items,
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "username is required")
		return
	}

	problem, ok := h.loadProblem(w, r)
	if !ok {
		return
	}

	result := evaluation.Judge(problem, strategy.Solution{
		Username: req.Username,
		Carts:    req.Carts,
		Nickname: req.Nickname,
	}).Reported()
	h.recorder.ObserveProblem(result.OK, result.Load.WithinCapacity, result.Load.OverCapacity)

	writeJSON(w, http.StatusOK, submissionResponse{
		Result:    result,
		Line:      result.Line(),
		RequestID: requestIDFromContext(r.Context()),
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}
	if req.Capacity < 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "capacity must not be negative")
		return
	}

	items, err := packing.DecodeItems(req.Items)
	if err != nil {
		if errors.Is(err, packing.ErrInvalidItemsType) {
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	verdict := packing.Assess(items, req.Capacity, req.Carts)
	writeJSON(w, http.StatusOK, validateResponse{
		OK:       verdict.OK(),
		Load:     verdict.Load,
		Coverage: verdict.Coverage,
		Errors:   verdict.Messages(),
	})
}

// loadProblem resolves the {id} path value and writes the error response itself when it fails.
func (h *Handler) loadProblem(w http.ResponseWriter, r *http.Request) (packing.Problem, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid problem id", "problem id must be an integer")
		return packing.Problem{}, false
	}

	problem, err := h.supplier.GetProblem(r.Context(), packing.ProblemID(id))
	if err != nil {
		if errors.Is(err, supplier.ErrProblemNotFound) {
			writeError(w, http.StatusNotFound, "Problem not found", err.Error(), "GET /api/problems lists the available problem ids")
			return packing.Problem{}, false
		}
		writeInternalError(w, err)
		return packing.Problem{}, false
	}
	return problem, true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type submissionRequest struct {
	Username string          `json:"username"`
	Nickname string          `json:"nickname"`
	Carts    json.RawMessage `json:"carts"`
}

type validateRequest struct {
	Items    json.RawMessage `json:"items"`
	Capacity float64         `json:"capacity"`
	Carts    json.RawMessage `json:"carts"`
}

type problemsResponse struct {
	Problems []packing.ProblemID `json:"problems"`
}

type problemResponse struct {
	ID       packing.ProblemID `json:"id"`
	Capacity float64           `json:"capacity"`
	Items    packing.Items     `json:"items"`
}

type submissionResponse struct {
	Result    evaluation.Result `json:"result"`
	Line      string            `json:"line"`
	RequestID string            `json:"requestId,omitempty"`
}

type validateResponse struct {
	OK       bool             `json:"ok"`
	Load     packing.Load     `json:"load"`
	Coverage packing.Coverage `json:"coverage"`
	Errors   []string         `json:"errors,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

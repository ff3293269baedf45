package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/multitask-helper/internal/config"
	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/core/ports"
	"github.com/kirillkom/multitask-helper/internal/core/usecase"
	"github.com/kirillkom/multitask-helper/internal/observability/metrics"
)

const maxBodyBytes = 1 << 20

type Router struct {
	cfg       config.Config
	suggester ports.TargetSuggester
	targets   ports.TargetDirectory

	metrics         *metrics.SuggestionMetrics
	completionState func() string
}

func NewRouter(cfg config.Config, suggester ports.TargetSuggester, targets ports.TargetDirectory) *Router {
	return &Router{
		cfg:       cfg,
		suggester: suggester,
		targets:   targets,
	}
}

// WithMetrics enables the /metrics endpoint and request instrumentation.
func (rt *Router) WithMetrics(m *metrics.SuggestionMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithCompletionState reports the completion backend state on /v1/system.
func (rt *Router) WithCompletionState(fn func() string) *Router {
	rt.completionState = fn
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /v1/targets", rt.listTargets)
	mux.HandleFunc("POST /v1/targets/activate", rt.activateTarget)
	mux.Handle("POST /v1/suggestions", backpressureMiddleware(
		http.HandlerFunc(rt.suggest),
		rt.cfg.APIMaxInFlight,
		rt.cfg.BackpressureWait(),
	))
	mux.HandleFunc("GET /v1/system", rt.system)

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listTargets(w http.ResponseWriter, r *http.Request) {
	candidates, err := rt.candidates(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"targets": candidates})
}

type suggestRequest struct {
	Content    string             `json:"content"`
	Candidates []domain.Candidate `json:"candidates,omitempty"`
	Current    *domain.Candidate  `json:"current,omitempty"`
}

type suggestResponse struct {
	ID string `json:"id"`
	domain.Decision
}

func (rt *Router) suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "suggest", errors.New("content is required")))
		return
	}

	candidates := req.Candidates
	if candidates == nil {
		listed, err := rt.candidates(r)
		if err != nil {
			writeError(w, err)
			return
		}
		candidates = listed
	}

	decision := rt.suggester.Decide(r.Context(), req.Content, req.Current, candidates)
	writeJSON(w, http.StatusOK, suggestResponse{ID: uuid.NewString(), Decision: decision})
}

func (rt *Router) activateTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "activate", errors.New("id is required")))
		return
	}

	ok, err := rt.targets.Activate(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, domain.WrapError(domain.ErrTargetNotFound, "activate", fmt.Errorf("id=%s", req.ID)))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "activated": true})
}

type systemResponse struct {
	usecase.SystemInfo
	CompletionState string    `json:"completion_state"`
	CheckedAt       time.Time `json:"checked_at"`
}

func (rt *Router) system(w http.ResponseWriter, r *http.Request) {
	candidates, err := rt.candidates(r)
	if err != nil {
		writeError(w, err)
		return
	}

	state := "disabled"
	if rt.completionState != nil {
		state = rt.completionState()
	}
	writeJSON(w, http.StatusOK, systemResponse{
		SystemInfo:      usecase.Summarize(candidates, rt.suggester.ModelEnabled()),
		CompletionState: state,
		CheckedAt:       time.Now().UTC(),
	})
}

func (rt *Router) candidates(r *http.Request) ([]domain.Candidate, error) {
	listed, err := rt.targets.ListCandidates(r.Context())
	if err != nil {
		return nil, err
	}
	return usecase.ExcludeTitles(listed, rt.cfg.ExcludedTitles), nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode request", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

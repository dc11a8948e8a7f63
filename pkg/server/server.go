// Package server exposes the HTTP API and the WebSocket chat front end.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zen-systems/teamgate/pkg/agent"
	"github.com/zen-systems/teamgate/pkg/expert"
	"github.com/zen-systems/teamgate/pkg/memory"
	"github.com/zen-systems/teamgate/pkg/queue"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Options configures a Server. Store and Selector are required; the graph
// handle may be nil and the dispatcher may be nil to disable /api/retro/run.
type Options struct {
	Store         memory.Store
	Graph         *memory.KnowledgeGraph
	Selector      *expert.Selector
	Dispatcher    queue.Dispatcher
	Version       string
	OracleTimeout time.Duration
	Log           *zap.Logger
}

// Server handles the public API and the chat socket.
type Server struct {
	store         memory.Store
	graph         *memory.KnowledgeGraph
	selector      *expert.Selector
	dispatcher    queue.Dispatcher
	version       string
	oracleTimeout time.Duration
	log           *zap.Logger
	upgrader      websocket.Upgrader
	mux           *http.ServeMux
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Selector == nil {
		opts.Selector = expert.NewSelector(nil, nil, opts.Log)
	}
	if opts.Store == nil {
		opts.Store = memory.NewInMemoryStore()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.OracleTimeout <= 0 {
		opts.OracleTimeout = 20 * time.Second
	}

	s := &Server{
		store:         opts.Store,
		graph:         opts.Graph,
		selector:      opts.Selector,
		dispatcher:    opts.Dispatcher,
		version:       opts.Version,
		oracleTimeout: opts.OracleTimeout,
		log:           opts.Log,
		upgrader: websocket.Upgrader{
			// Demo front end; cross-origin browsers are allowed in.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/version", s.handleVersion)
	s.mux.HandleFunc("GET /api/memory/{agent}/history", s.handleMemoryHistory)
	s.mux.HandleFunc("POST /api/memory/{agent}/append", s.handleMemoryAppend)
	s.mux.HandleFunc("POST /api/plan", s.handlePlan)
	s.mux.HandleFunc("POST /api/ac_feedback", s.handleACFeedback)
	s.mux.HandleFunc("POST /api/agent/think", s.handleAgentThink)
	s.mux.HandleFunc("POST /api/experts/run", s.handleExpertsRun)
	s.mux.HandleFunc("POST /api/retro/run", s.handleRetroRun)
	s.mux.HandleFunc("GET /ws/chat", s.handleChat)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleMemoryHistory(w http.ResponseWriter, r *http.Request) {
	agentName := r.PathValue("agent")

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	limit = max(1, min(maxHistoryLimit, limit))

	items, err := s.store.History(r.Context(), agentName, limit)
	if err != nil {
		s.log.Error("memory history failed", zap.String("agent", agentName), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to read memory")
		return
	}
	if items == nil {
		items = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"agent": agentName,
		"limit": limit,
		"items": items,
	})
}

func (s *Server) handleMemoryAppend(w http.ResponseWriter, r *http.Request) {
	agentName := r.PathValue("agent")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "missing 'content'")
		return
	}

	if err := s.store.Append(r.Context(), agentName, req.Content); err != nil {
		s.log.Error("memory append failed", zap.String("agent", agentName), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to append memory")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	description, ok := decodeDescription(w, r)
	if !ok {
		return
	}

	po := agent.NewProductOwner(s.store, s.graph, s.log)
	tasks := po.PlanWork(r.Context(), description)

	writeJSON(w, http.StatusOK, map[string]any{
		"description": description,
		"tasks":       tasks,
	})
}

func (s *Server) handleACFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tasks []string `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Tasks == nil {
		writeError(w, http.StatusBadRequest, "missing 'tasks'")
		return
	}

	coach := agent.NewAgileCoach(s.store, s.graph, s.log)
	feedback := coach.FeedbackOnPlan(r.Context(), req.Tasks)

	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

func (s *Server) handleAgentThink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Agent string `json:"agent"`
		Goal  string `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Goal == "" {
		writeError(w, http.StatusBadRequest, "missing 'goal'")
		return
	}

	var thinker *agent.Agent
	switch req.Agent {
	case "po":
		thinker = &agent.NewProductOwner(s.store, s.graph, s.log).Agent
	case "ac":
		thinker = &agent.NewAgileCoach(s.store, s.graph, s.log).Agent
	default:
		writeError(w, http.StatusBadRequest, "unknown agent")
		return
	}

	thought := thinker.Think(r.Context(), req.Goal)

	resp := map[string]any{"thought": thought}
	if r.URL.Query().Get("debug") == "1" {
		resp["_debug"] = map[string]any{
			"agent": thinker.Name,
			"role":  thinker.Role,
			"goal":  req.Goal,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExpertsRun(w http.ResponseWriter, r *http.Request) {
	description, ok := decodeDescription(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	po := agent.NewProductOwner(s.store, s.graph, s.log)
	tasks := po.PlanWork(ctx, description)

	selection := s.selectExperts(ctx, tasks)

	experts := make([]string, len(selection.Experts))
	results := make(map[string]string, len(selection.Experts))
	for i, a := range agent.CreateAgents(selection.Experts, s.store, s.log) {
		experts[i] = a.Expertise
		results[a.Expertise] = a.Solve(ctx, "Prepare for: "+description)
	}

	resp := map[string]any{
		"tasks":   tasks,
		"experts": experts,
		"results": results,
	}
	if r.URL.Query().Get("debug") == "1" {
		resp["_debug"] = map[string]any{
			"plan":      map[string]any{"description": description, "tasks": tasks},
			"selection": selection.Debug,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetroRun(w http.ResponseWriter, r *http.Request) {
	if s.dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "task dispatcher not configured")
		return
	}

	id, err := s.dispatcher.Dispatch(r.Context(), queue.KindRetro, nil)
	if err != nil {
		s.log.Error("retro dispatch failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to dispatch retro")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": id,
		"status":  "queued",
	})
}

// selectExperts runs the classifier with the oracle timeout bound. Oracle
// timeouts surface as "oracle unavailable" inside the selector, never as a
// request failure.
func (s *Server) selectExperts(ctx context.Context, tasks []string) expert.Selection {
	selectCtx, cancel := context.WithTimeout(ctx, s.oracleTimeout)
	defer cancel()
	return s.selector.SelectFromTasks(selectCtx, tasks)
}

func decodeDescription(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "missing 'description'")
		return "", false
	}
	return req.Description, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

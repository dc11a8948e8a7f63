package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zen-systems/teamgate/pkg/agent"
	"go.uber.org/zap"
)

// chatConn serializes writes to one WebSocket connection. Expert
// preparation streams from multiple goroutines.
type chatConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *chatConn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type chatEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Index   int    `json:"index,omitempty"`
	Task    string `json:"task,omitempty"`
	Expert  string `json:"expert,omitempty"`

	Tasks   []string `json:"tasks,omitempty"`
	Experts []string `json:"experts,omitempty"`
	Debug   any      `json:"_debug,omitempty"`
}

// handleChat runs the chat session: Product Owner planning steps, Agile
// Coach feedback, then expert selection and preparation, all streamed as
// JSON events.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &chatConn{conn: conn}
	if err := c.send(chatEvent{Type: "system", Message: "Connected to teamgate chat."}); err != nil {
		return
	}

	for {
		var payload struct {
			Message string `json:"message"`
		}
		if err := conn.ReadJSON(&payload); err != nil {
			s.log.Info("chat disconnected", zap.Error(err))
			return
		}
		s.log.Info("chat message received", zap.String("message", payload.Message))

		if payload.Message == "" {
			if err := c.send(chatEvent{Type: "error", Message: "Missing 'message' in payload."}); err != nil {
				return
			}
			continue
		}

		if err := s.runChatTurn(r, c, payload.Message); err != nil {
			s.log.Info("chat send failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) runChatTurn(r *http.Request, c *chatConn, userMsg string) error {
	ctx := r.Context()

	// Plan and stream progress.
	if err := c.send(chatEvent{Type: "po_plan_start", Message: "Planning started."}); err != nil {
		return err
	}
	po := agent.NewProductOwner(s.store, s.graph, s.log)
	tasks := po.PlanWork(ctx, userMsg)
	for i, task := range tasks {
		if err := c.send(chatEvent{Type: "po_plan_step", Index: i + 1, Task: task}); err != nil {
			return err
		}
	}
	if err := c.send(chatEvent{
		Type:    "po_plan_final",
		Message: fmt.Sprintf("Plan created: %d task(s)", len(tasks)),
		Tasks:   tasks,
	}); err != nil {
		return err
	}

	// Coach feedback.
	coach := agent.NewAgileCoach(s.store, s.graph, s.log)
	feedback := coach.FeedbackOnPlan(ctx, tasks)
	if err := c.send(chatEvent{Type: "ac_feedback", Message: feedback}); err != nil {
		return err
	}

	// Select experts and stream their preparation.
	selection := s.selectExperts(ctx, tasks)
	names := make([]string, len(selection.Experts))
	for i, spec := range selection.Experts {
		names[i] = spec.Expertise
	}
	if err := c.send(chatEvent{
		Type:    "expert_update",
		Message: "Selecting experts...",
		Experts: names,
		Debug:   selection.Debug,
	}); err != nil {
		return err
	}

	agents := agent.CreateAgents(selection.Experts, s.store, s.log)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		prepared []string
		sendErr  error
	)
	for _, a := range agents {
		wg.Add(1)
		go func(a *agent.DynamicExpert) {
			defer wg.Done()
			result := a.Solve(ctx, "Prepare for: "+userMsg)

			mu.Lock()
			prepared = append(prepared, a.Expertise)
			mu.Unlock()

			if err := c.send(chatEvent{Type: "expert_update", Expert: a.Expertise, Message: result}); err != nil {
				mu.Lock()
				sendErr = err
				mu.Unlock()
			}
		}(a)
	}
	wg.Wait()
	if sendErr != nil {
		return sendErr
	}

	return c.send(chatEvent{Type: "expert_update", Message: "Experts prepared.", Experts: prepared})
}

package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zen-systems/teamgate/pkg/memory"
)

type wsEvent struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Index   int      `json:"index"`
	Task    string   `json:"task"`
	Expert  string   `json:"expert"`
	Tasks   []string `json:"tasks"`
	Experts []string `json:"experts"`
}

func dialChat(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev wsEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func TestChatGreeting(t *testing.T) {
	ts := newTestServer(t, Options{Store: memory.NewInMemoryStore()})
	conn := dialChat(t, ts)

	ev := readEvent(t, conn)
	if ev.Type != "system" {
		t.Fatalf("first event type = %q, want system", ev.Type)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	ts := newTestServer(t, Options{Store: memory.NewInMemoryStore()})
	conn := dialChat(t, ts)
	readEvent(t, conn)

	if err := conn.WriteJSON(map[string]string{}); err != nil {
		t.Fatal(err)
	}
	ev := readEvent(t, conn)
	if ev.Type != "error" {
		t.Fatalf("event type = %q, want error", ev.Type)
	}
}

func TestChatFullTurn(t *testing.T) {
	ts := newTestServer(t, Options{Store: memory.NewInMemoryStore()})
	conn := dialChat(t, ts)
	readEvent(t, conn)

	if err := conn.WriteJSON(map[string]string{"message": "Fix the PostgreSQL schema migration"}); err != nil {
		t.Fatal(err)
	}

	ev := readEvent(t, conn)
	if ev.Type != "po_plan_start" {
		t.Fatalf("event type = %q, want po_plan_start", ev.Type)
	}

	for i := 1; i <= 2; i++ {
		ev = readEvent(t, conn)
		if ev.Type != "po_plan_step" || ev.Index != i {
			t.Fatalf("event = %+v, want po_plan_step index %d", ev, i)
		}
		if ev.Task == "" {
			t.Error("plan step with empty task")
		}
	}

	ev = readEvent(t, conn)
	if ev.Type != "po_plan_final" || len(ev.Tasks) != 2 {
		t.Fatalf("event = %+v, want po_plan_final with 2 tasks", ev)
	}

	ev = readEvent(t, conn)
	if ev.Type != "ac_feedback" || ev.Message == "" {
		t.Fatalf("event = %+v, want ac_feedback with message", ev)
	}

	ev = readEvent(t, conn)
	if ev.Type != "expert_update" || len(ev.Experts) == 0 {
		t.Fatalf("event = %+v, want expert_update with selection", ev)
	}
	selected := ev.Experts

	// One preparation event per expert, then the summary.
	prepared := map[string]bool{}
	for range selected {
		ev = readEvent(t, conn)
		if ev.Type != "expert_update" || ev.Expert == "" {
			t.Fatalf("event = %+v, want per-expert update", ev)
		}
		prepared[ev.Expert] = true
	}
	for _, name := range selected {
		if !prepared[name] {
			t.Errorf("no preparation event for expert %q", name)
		}
	}

	ev = readEvent(t, conn)
	if ev.Type != "expert_update" || ev.Message != "Experts prepared." {
		t.Fatalf("event = %+v, want final summary", ev)
	}
	if len(ev.Experts) != len(selected) {
		t.Errorf("summary experts = %v, want %d entries", ev.Experts, len(selected))
	}
}

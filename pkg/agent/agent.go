// Package agent implements the team roster: the Product Owner, the Agile
// Coach and dynamically created experts. Agents record observations to
// short-term memory and best-effort notes to the long-term graph; neither
// persistence path may fail a caller's primary response.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Memory is the short-term history agents record observations to.
type Memory interface {
	Append(ctx context.Context, agent, item string) error
}

// NoteRecorder is the long-term note sink. A nil-backed implementation is
// expected when the graph store is disabled.
type NoteRecorder interface {
	UpsertNote(ctx context.Context, agent, text string) error
}

// Agent carries the identity and shared behavior of every team member.
type Agent struct {
	Name   string
	Role   string
	Memory Memory
	Log    *zap.Logger
}

func (a *Agent) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

// Observe records content to the agent's short-term memory if available.
// Append failures are logged and swallowed.
func (a *Agent) Observe(ctx context.Context, content string) {
	if a.Memory == nil {
		return
	}
	if err := a.Memory.Append(ctx, a.Name, content); err != nil {
		a.logger().Warn("failed to record observation",
			zap.String("agent", a.Name), zap.Error(err))
	}
}

// Think echoes the goal with role context and records it.
func (a *Agent) Think(ctx context.Context, goal string) string {
	thought := fmt.Sprintf("[%s] Considering: %s", a.Role, goal)
	a.Observe(ctx, thought)
	return thought
}

// Act returns a simple action message and records it.
func (a *Agent) Act(ctx context.Context, goal string) string {
	action := fmt.Sprintf("[%s] Action for: %s", a.Role, goal)
	a.Observe(ctx, action)
	return action
}

// note writes a long-term note, logging and swallowing failures.
func (a *Agent) note(ctx context.Context, recorder NoteRecorder, text string) {
	if recorder == nil {
		return
	}
	if err := recorder.UpsertNote(ctx, a.Name, text); err != nil {
		a.logger().Warn("failed to record long-term note",
			zap.String("agent", a.Name), zap.Error(err))
	}
}

package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ProductOwner decomposes a goal description into coarse-grained tasks.
type ProductOwner struct {
	Agent
	Graph NoteRecorder
}

// NewProductOwner creates the Product Owner agent.
func NewProductOwner(mem Memory, graph NoteRecorder, log *zap.Logger) *ProductOwner {
	return &ProductOwner{
		Agent: Agent{Name: "po", Role: "Product Owner", Memory: mem, Log: log},
		Graph: graph,
	}
}

// PlanWork breaks a description into tasks and records the planning, both
// in short-term memory and as a best-effort long-term note.
func (p *ProductOwner) PlanWork(ctx context.Context, description string) []string {
	p.Observe(ctx, "planning: "+description)

	tasks := []string{
		"Define acceptance criteria for: " + description,
		"Identify needed experts for: " + description,
	}

	p.note(ctx, p.Graph, fmt.Sprintf("planned %d task(s) for: %s", len(tasks), description))
	return tasks
}

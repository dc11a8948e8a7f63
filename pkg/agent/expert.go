package agent

import (
	"context"
	"fmt"

	"github.com/zen-systems/teamgate/pkg/expert"
	"go.uber.org/zap"
)

// DynamicExpert is a cross-functional expert agent spun up on demand.
type DynamicExpert struct {
	Agent
	Expertise string
}

// Solve handles a task using the agent's expertise and records it.
func (d *DynamicExpert) Solve(ctx context.Context, task string) string {
	msg := fmt.Sprintf("[%s] solving: %s", d.Expertise, task)
	d.Observe(ctx, msg)
	return msg
}

// CreateAgents instantiates one expert agent per spec, carrying the
// category as its identity. Pure construction, no selection logic.
func CreateAgents(specs []expert.Spec, mem Memory, log *zap.Logger) []*DynamicExpert {
	agents := make([]*DynamicExpert, 0, len(specs))
	for _, s := range specs {
		agents = append(agents, &DynamicExpert{
			Agent: Agent{
				Name:   "expert-" + s.Expertise,
				Role:   "Expert",
				Memory: mem,
				Log:    log,
			},
			Expertise: s.Expertise,
		})
	}
	return agents
}

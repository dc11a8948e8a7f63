package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// AgileCoach critiques plans and facilitates ceremonies.
type AgileCoach struct {
	Agent
	Graph NoteRecorder
}

// NewAgileCoach creates the Agile Coach agent.
func NewAgileCoach(mem Memory, graph NoteRecorder, log *zap.Logger) *AgileCoach {
	return &AgileCoach{
		Agent: Agent{Name: "ac", Role: "Agile Coach", Memory: mem, Log: log},
		Graph: graph,
	}
}

// ScheduleRetro schedules the next retrospective and records it.
func (c *AgileCoach) ScheduleRetro(ctx context.Context) string {
	msg := "Scheduled next retrospective"
	c.Observe(ctx, msg)
	c.note(ctx, c.Graph, "retro: improvements captured")
	return msg
}

// FeedbackOnPlan provides brief feedback on a Product Owner plan. The
// advice checks for acceptance criteria and expert involvement and always
// pushes for small, testable increments.
func (c *AgileCoach) FeedbackOnPlan(ctx context.Context, tasks []string) string {
	var advice string
	if len(tasks) == 0 {
		advice = "Please provide at least one actionable task."
	} else {
		var actionable, experts bool
		for _, task := range tasks {
			lower := strings.ToLower(task)
			if strings.Contains(lower, "acceptance") {
				actionable = true
			}
			if strings.Contains(lower, "expert") {
				experts = true
			}
		}
		var suggestions []string
		if !actionable {
			suggestions = append(suggestions, "Define measurable acceptance criteria.")
		}
		if !experts {
			suggestions = append(suggestions, "Involve the right experts early.")
		}
		suggestions = append(suggestions, "Slice work into small, testable increments.")
		advice = strings.Join(suggestions, " ")
	}

	c.Observe(ctx, "ac_feedback: "+advice)
	c.note(ctx, c.Graph, "feedback: "+advice)
	return advice
}

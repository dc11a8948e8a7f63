package queue

import (
	"context"

	"github.com/zen-systems/teamgate/pkg/agent"
	"go.uber.org/zap"
)

// KindRetro is the built-in retrospective task.
const KindRetro = "retro"

// NewRetroHandler returns the handler running a retrospective: the Agile
// Coach schedules it and the note lands in long-term memory.
func NewRetroHandler(coach *agent.AgileCoach, log *zap.Logger) Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, task Task) error {
		log.Info("retro started", zap.String("task", task.ID))
		msg := coach.ScheduleRetro(ctx)
		log.Info("retro finished", zap.String("task", task.ID), zap.String("result", msg))
		return nil
	}
}

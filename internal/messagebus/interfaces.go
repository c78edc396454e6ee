package messagebus

import (
	"context"

	"github.com/alexanderramin/ember/internal/domain"
)

// AnalysisPublisher announces completed analyses.
type AnalysisPublisher interface {
	PublishAnalysis(ctx context.Context, a *domain.BurnoutAnalysis) error
}

// TaskMutationSubscriber delivers task changes made by the task collaborator.
type TaskMutationSubscriber interface {
	SubscribeTaskMutations(handler func(TaskMutation)) error
}

// NoopPublisher drops every event. Used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishAnalysis(context.Context, *domain.BurnoutAnalysis) error { return nil }

var (
	_ AnalysisPublisher      = (*NatsMessageBus)(nil)
	_ TaskMutationSubscriber = (*NatsMessageBus)(nil)
	_ AnalysisPublisher      = NoopPublisher{}
)

package messagebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/alexanderramin/ember/internal/domain"
)

// NatsMessageBus publishes analysis events and consumes task mutations over
// core NATS. Events are fire-and-forget; nothing here needs JetStream.
type NatsMessageBus struct {
	conn   *nats.Conn
	logger *slog.Logger

	mu            sync.Mutex
	subscriptions map[string]*nats.Subscription
}

// Config holds NATS configuration.
type Config struct {
	URL     string        // NATS server URL (e.g., "nats://localhost:4222")
	Name    string        // client connection name
	Timeout time.Duration // connection timeout
	Logger  *slog.Logger
}

// NewNatsMessageBus connects to NATS.
func NewNatsMessageBus(cfg Config) (*NatsMessageBus, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Name == "" {
		cfg.Name = "ember"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NatsMessageBus{
		conn:          nc,
		logger:        logger,
		subscriptions: make(map[string]*nats.Subscription),
	}, nil
}

// PublishAnalysis publishes a on ember.analysis.<user_id>.
func (mb *NatsMessageBus) PublishAnalysis(ctx context.Context, a *domain.BurnoutAnalysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mb.publish(AnalysisSubject(a.UserID), NewAnalysisEvent(a))
}

func (mb *NatsMessageBus) publish(subject string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := mb.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish message to %s: %w", subject, err)
	}
	return nil
}

// SubscribeTaskMutations delivers task mutations for every user.
func (mb *NatsMessageBus) SubscribeTaskMutations(handler func(TaskMutation)) error {
	subject := taskSubject + ".*"
	sub, err := mb.conn.Subscribe(subject, func(msg *nats.Msg) {
		m, err := decodeTaskMutation(msg)
		if err != nil {
			mb.logger.Warn("dropping task mutation", "subject", msg.Subject, "error", err)
			return
		}
		handler(m)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	mb.mu.Lock()
	mb.subscriptions[subject] = sub
	mb.mu.Unlock()
	mb.logger.Info("subscribed", "subject", subject)
	return nil
}

// decodeTaskMutation parses msg. A missing user_id is taken from the subject.
func decodeTaskMutation(msg *nats.Msg) (TaskMutation, error) {
	var m TaskMutation
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		return m, fmt.Errorf("unmarshal task mutation: %w", err)
	}
	if m.UserID == "" {
		if len(msg.Subject) > len(taskSubject)+1 {
			m.UserID = msg.Subject[len(taskSubject)+1:]
		}
	}
	if m.UserID == "" {
		return m, errors.New("task mutation has no user_id")
	}
	return m, nil
}

// Close drains subscriptions and closes the connection.
func (mb *NatsMessageBus) Close() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for subject, sub := range mb.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			mb.logger.Warn("unsubscribe failed", "subject", subject, "error", err)
		}
		delete(mb.subscriptions, subject)
	}
	if mb.conn != nil {
		if err := mb.conn.Drain(); err != nil {
			mb.conn.Close()
			return err
		}
	}
	return nil
}

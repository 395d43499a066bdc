package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cwbudde/mayflywatch/internal/problem"
	"github.com/redis/go-redis/v9"
)

// PublishClient is the subset of a Redis client used by Publisher.
// *redis.Client and *redis.ClusterClient satisfy it.
type PublishClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// FrontMessage is the payload published for each throttled snapshot.
type FrontMessage struct {
	RunID         string        `json:"runId"`
	Evaluations   int           `json:"evaluations"`
	ComputingTime time.Duration `json:"computingTime"`
	Title         string        `json:"title"`
	Front         [][]float64   `json:"front"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Publisher publishes the current front to a Redis channel so remote
// dashboards can follow a run. The client is owned by the caller.
type Publisher struct {
	throttle Throttle
	client   PublishClient
	channel  string
}

// NewPublisher creates a publisher on channel acting every frequency
// evaluations.
func NewPublisher(client PublishClient, channel string, frequency int) (*Publisher, error) {
	if client == nil {
		return nil, &ConfigError{Field: "client", Reason: "cannot be nil"}
	}
	if channel == "" {
		return nil, &ConfigError{Field: "channel", Reason: "cannot be empty"}
	}
	throttle, err := NewThrottle(frequency)
	if err != nil {
		return nil, err
	}
	return &Publisher{throttle: throttle, client: client, channel: channel}, nil
}

// Name implements Named.
func (p *Publisher) Name() string { return "publish" }

// Update implements Observer.
func (p *Publisher) Update(ctx context.Context, s Snapshot) error {
	if err := s.Require(FieldComputingTime, FieldEvaluations); err != nil {
		return err
	}
	if len(s.Solutions) == 0 || !p.throttle.Allow(s.Evaluations) {
		return nil
	}

	data, err := json.Marshal(FrontMessage{
		RunID:         s.RunID,
		Evaluations:   s.Evaluations,
		ComputingTime: s.ComputingTime,
		Title:         Title(s.Evaluations, s.ComputingTime),
		Front:         problem.ObjectiveMatrix(s.Solutions),
		Timestamp:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal front message: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	return nil
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const analysisQueueKey = "media_analysis_queue"

// ErrQueueEmpty is returned when no job arrives within the poll window.
var ErrQueueEmpty = errors.New("analysis queue is empty")

type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(redisClient *redis.Client) *RedisQueue {
	return &RedisQueue{client: redisClient}
}

// AnalysisJob is the unit of work handed to the worker process: one
// enqueued task per pipeline run, at-least-once best-effort.
type AnalysisJob struct {
	AnalysisID string `json:"analysis_id"`
	MediaID    string `json:"media_id"`
}

func (q *RedisQueue) EnqueueAnalysis(ctx context.Context, job AnalysisJob) error {
	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.LPush(ctx, analysisQueueKey, jobData).Err()
}

func (q *RedisQueue) DequeueAnalysis(ctx context.Context) (*AnalysisJob, error) {
	result, err := q.client.BRPop(ctx, 30*time.Second, analysisQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid queue result")
	}

	var job AnalysisJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// PublishAnalysisUpdate emits a per-stage progress event so interested
// consumers can follow a running analysis.
func (q *RedisQueue) PublishAnalysisUpdate(ctx context.Context, analysisID string, update interface{}) error {
	updateData, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	return q.client.Publish(ctx, analysisChannel(analysisID), updateData).Err()
}

// AnalysisSubscription is one live progress stream. Channel carries the
// raw JSON payloads published by the worker and is closed when the
// subscription ends.
type AnalysisSubscription struct {
	Channel <-chan string
	close   func() error
}

func NewAnalysisSubscription(ch <-chan string, closeFn func() error) *AnalysisSubscription {
	return &AnalysisSubscription{Channel: ch, close: closeFn}
}

func (s *AnalysisSubscription) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// SubscribeAnalysisUpdates opens a pub/sub subscription on one
// analysis's progress channel.
func (q *RedisQueue) SubscribeAnalysisUpdates(ctx context.Context, analysisID string) (*AnalysisSubscription, error) {
	pubsub := q.client.Subscribe(ctx, analysisChannel(analysisID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to analysis %s: %w", analysisID, err)
	}

	out := make(chan string, 64)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()

	return NewAnalysisSubscription(out, pubsub.Close), nil
}

func analysisChannel(analysisID string) string {
	return fmt.Sprintf("analysis_updates:%s", analysisID)
}

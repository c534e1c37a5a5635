// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pubsub pushes decoded ledger events to Redis for external indexers.
package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/gigstream/gigstream/log"
	"github.com/gigstream/gigstream/metrics"
)

// Channel is the Redis channel every message is published on.
const Channel = "gigstream:events"

const (
	queueSize      = 256
	publishTimeout = 3 * time.Second
)

var (
	logger = log.WithContext("pkg", "pubsub")

	metricPublish = metrics.LazyLoadCounterVec("pubsub_publish_count", []string{"result"})
)

// Publisher publishes messages on a Redis channel.
// Enqueue never blocks; batches are dropped when the queue is full.
type Publisher struct {
	client *redis.Client
	queue  chan []*Message
}

// New creates a publisher for redisURL, e.g. redis://localhost:6379/0.
// No connection is made until the first publish.
func New(redisURL string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	opts.DialTimeout = time.Second
	opts.MaxRetries = 1

	return &Publisher{
		client: redis.NewClient(opts),
		queue:  make(chan []*Message, queueSize),
	}, nil
}

// Ping checks the connection to Redis.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Publish sends msgs in one pipeline.
func (p *Publisher) Publish(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	pipe := p.client.Pipeline()
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return errors.Wrap(err, "marshal message")
		}
		pipe.Publish(ctx, Channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		metricPublish().AddWithLabel(int64(len(msgs)), map[string]string{"result": "failed"})
		return errors.Wrap(err, "publish")
	}
	metricPublish().AddWithLabel(int64(len(msgs)), map[string]string{"result": "ok"})
	return nil
}

// Enqueue queues msgs for Run. It reports false when the batch was dropped.
func (p *Publisher) Enqueue(msgs []*Message) bool {
	if len(msgs) == 0 {
		return true
	}
	select {
	case p.queue <- msgs:
		return true
	default:
		metricPublish().AddWithLabel(int64(len(msgs)), map[string]string{"result": "dropped"})
		logger.Warn("publish queue full, dropping events", "count", len(msgs))
		return false
	}
}

// Run publishes queued batches until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msgs := <-p.queue:
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := p.Publish(pctx, msgs); err != nil {
				logger.Warn("failed to publish events", "count", len(msgs), "err", err)
			}
			cancel()
		}
	}
}

// Close closes the Redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

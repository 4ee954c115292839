package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// redisClient implements Client using a Redis list
type redisClient struct {
	client    *redis.Client
	queueName string
	logger    *slog.Logger
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL       string
	QueueName string
}

// NewRedisClient creates a new Redis queue client
func NewRedisClient(cfg RedisConfig, logger *slog.Logger) (Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis",
		slog.String("addr", opts.Addr),
		slog.String("queue", cfg.QueueName),
	)

	return &redisClient{
		client:    client,
		queueName: cfg.QueueName,
		logger:    logger,
	}, nil
}

// Publish enqueues a campaign send job (LPUSH for FIFO with BRPOP)
func (c *redisClient) Publish(ctx context.Context, job *models.CampaignJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := c.client.LPush(ctx, c.queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to push job to queue: %w", err)
	}

	c.logger.Debug("job published to queue",
		slog.String("campaign_id", job.CampaignID.String()),
	)

	return nil
}

// Consume receives campaign jobs from the queue and processes them with the
// handler. concurrency is clamped to [1,5]; each slot dispatches a whole
// campaign, so this bounds concurrently-sending campaigns, never recipients.
func (c *redisClient) Consume(ctx context.Context, handler JobHandler, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 5 {
		concurrency = 5
	}

	c.logger.Info("starting queue consumer",
		slog.String("queue", c.queueName),
		slog.Int("concurrency", concurrency),
	)

	// Semaphore to limit concurrent campaign dispatches
	semaphore := make(chan struct{}, concurrency)

	drain := func() {
		for i := 0; i < concurrency; i++ {
			semaphore <- struct{}{}
		}
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped by context, waiting for in-flight sends to finish")
			drain()
			c.logger.Info("all in-flight sends finished")
			return ctx.Err()

		default:
			result, err := c.client.BRPop(ctx, 1*time.Second, c.queueName).Result()
			if err != nil {
				if err == redis.Nil {
					// Timeout, queue empty
					continue
				}
				if err == context.Canceled || err == context.DeadlineExceeded {
					c.logger.Info("consumer stopped by context")
					drain()
					return err
				}
				c.logger.Error("failed to pop from queue", slog.String("error", err.Error()))
				time.Sleep(1 * time.Second)
				continue
			}

			// BRPOP returns [queueName, value]
			if len(result) < 2 {
				c.logger.Error("unexpected BRPOP result format")
				continue
			}

			var job models.CampaignJob
			if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
				c.logger.Error("failed to unmarshal job",
					slog.String("error", err.Error()),
					slog.String("data", result[1]),
				)
				continue
			}

			semaphore <- struct{}{}

			go func(job models.CampaignJob) {
				defer func() { <-semaphore }()

				if err := handler(ctx, &job); err != nil {
					c.logger.Error("handler failed to process job",
						slog.String("campaign_id", job.CampaignID.String()),
						slog.String("error", err.Error()),
					)
				}
			}(job)
		}
	}
}

// Close closes the Redis connection
func (c *redisClient) Close() error {
	c.logger.Info("closing Redis connection")
	return c.client.Close()
}

// Health checks if Redis is healthy
func (c *redisClient) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Length returns the number of queued jobs (for monitoring)
func (c *redisClient) Length(ctx context.Context) (int64, error) {
	length, err := c.client.LLen(ctx, c.queueName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

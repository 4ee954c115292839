package queue

import (
	"context"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// Client defines the interface for the send-job queue
type Client interface {
	// Publish enqueues a campaign send job
	Publish(ctx context.Context, job *models.CampaignJob) error

	// Consume receives jobs from the queue and processes them with the
	// handler. concurrency bounds how many campaigns may be dispatched at
	// once; recipients within one campaign are always sequential.
	Consume(ctx context.Context, handler JobHandler, concurrency int) error

	// Close closes the queue connection
	Close() error

	// Health checks if the queue is healthy
	Health(ctx context.Context) error
}

// JobHandler is a function that processes a campaign send job
type JobHandler func(ctx context.Context, job *models.CampaignJob) error

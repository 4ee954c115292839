package mailer

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// mockMailer simulates mail delivery with a configurable success rate.
// Used for local development and load testing without an SES account.
type mockMailer struct {
	successRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
}

// NewMockMailer creates a mock mailer.
// successRate is the probability of success (0.0 to 1.0), default 0.95.
func NewMockMailer(successRate float64) Mailer {
	if successRate <= 0 || successRate > 1.0 {
		successRate = 0.95
	}

	return &mockMailer{
		successRate: successRate,
		minDelay:    20 * time.Millisecond, // Simulate provider latency
		maxDelay:    120 * time.Millisecond,
	}
}

// Send simulates sending an email
func (m *mockMailer) Send(ctx context.Context, msg *Message) error {
	delay := m.minDelay + time.Duration(rand.Int63n(int64(m.maxDelay-m.minDelay)))

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return ctx.Err()
	}

	if rand.Float64() > m.successRate {
		return fmt.Errorf("mock mailer: simulated provider error for %s", msg.To)
	}

	return nil
}

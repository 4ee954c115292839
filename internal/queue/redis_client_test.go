package queue

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

func newTestClient(t *testing.T) (Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := NewRedisClient(RedisConfig{
		URL:       "redis://" + mr.Addr(),
		QueueName: "campaign_sends_test",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestRedisClient_PublishConsume(t *testing.T) {
	client, _ := newTestClient(t)

	campaignID := uuid.New()
	err := client.Publish(context.Background(), &models.CampaignJob{CampaignID: campaignID})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan uuid.UUID, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = client.Consume(ctx, func(ctx context.Context, job *models.CampaignJob) error {
			received <- job.CampaignID
			return nil
		}, 1)
	}()

	select {
	case got := <-received:
		assert.Equal(t, campaignID, got)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestRedisClient_FIFOOrder(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, client.Publish(ctx, &models.CampaignJob{CampaignID: first}))
	require.NoError(t, client.Publish(ctx, &models.CampaignJob{CampaignID: second}))

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	order := []uuid.UUID{}
	go func() {
		_ = client.Consume(consumeCtx, func(ctx context.Context, job *models.CampaignJob) error {
			mu.Lock()
			order = append(order, job.CampaignID)
			if len(order) == 2 {
				cancel()
			}
			mu.Unlock()
			return nil
		}, 1)
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uuid.UUID{first, second}, order)
}

func TestRedisClient_SkipsMalformedJobs(t *testing.T) {
	client, mr := newTestClient(t)

	// Garbage ahead of a valid job must not wedge the consumer.
	_, err := mr.Lpush("campaign_sends_test", "not json")
	require.NoError(t, err)

	campaignID := uuid.New()
	require.NoError(t, client.Publish(context.Background(), &models.CampaignJob{CampaignID: campaignID}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan uuid.UUID, 1)
	go func() {
		_ = client.Consume(ctx, func(ctx context.Context, job *models.CampaignJob) error {
			received <- job.CampaignID
			return nil
		}, 1)
	}()

	select {
	case got := <-received:
		assert.Equal(t, campaignID, got)
	case <-time.After(5 * time.Second):
		t.Fatal("valid job was never processed")
	}
}

func TestRedisClient_Health(t *testing.T) {
	client, mr := newTestClient(t)

	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestRedisClient_Length(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	counter, ok := client.(interface {
		Length(ctx context.Context) (int64, error)
	})
	require.True(t, ok)

	n, err := counter.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, client.Publish(ctx, &models.CampaignJob{CampaignID: uuid.New()}))

	n, err = counter.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

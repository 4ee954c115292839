package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/mailer"
	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// mockCampaignRepository for testing
type mockCampaignRepository struct {
	mu        sync.Mutex
	campaigns map[uuid.UUID]*models.Campaign

	// cancelAfter, when positive, flips the campaign to cancelled after
	// that many UpdateCounters calls, simulating an API-side cancel.
	cancelAfter  int
	counterCalls int
}

func newMockCampaignRepository(campaigns ...*models.Campaign) *mockCampaignRepository {
	m := &mockCampaignRepository{campaigns: make(map[uuid.UUID]*models.Campaign)}
	for _, c := range campaigns {
		m.campaigns[c.ID] = c
	}
	return m
}

func (m *mockCampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	m.campaigns[campaign.ID] = campaign
	return nil
}

func (m *mockCampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, models.ErrNotFoundWithMsg("campaign not found")
	}
	copied := *c
	return &copied, nil
}

func (m *mockCampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error) {
	return nil, 0, nil
}

func (m *mockCampaignRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.Status != from {
		return models.ErrConflictWithMsg(fmt.Sprintf("campaign is not in status '%s'", from))
	}
	c.Status = to
	return nil
}

func (m *mockCampaignRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return models.ErrNotFoundWithMsg("campaign not found")
	}
	c.Status = status
	return nil
}

func (m *mockCampaignRepository) MarkSending(ctx context.Context, id uuid.UUID, totalRecipients int, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return models.ErrNotFoundWithMsg("campaign not found")
	}
	c.TotalRecipients = totalRecipients
	c.PendingCount = totalRecipients
	c.SentCount = 0
	c.FailedCount = 0
	c.SentAt = &sentAt
	return nil
}

func (m *mockCampaignRepository) UpdateCounters(ctx context.Context, id uuid.UUID, sent, failed, pending int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return models.ErrNotFoundWithMsg("campaign not found")
	}
	c.SentCount = sent
	c.FailedCount = failed
	c.PendingCount = pending

	m.counterCalls++
	if m.cancelAfter > 0 && m.counterCalls >= m.cancelAfter {
		c.Status = models.CampaignStatusCancelled
	}
	return nil
}

func (m *mockCampaignRepository) Finalize(ctx context.Context, id uuid.UUID, status string, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return models.ErrNotFoundWithMsg("campaign not found")
	}
	c.Status = status
	c.CompletedAt = &completedAt
	return nil
}

func (m *mockCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.campaigns, id)
	return nil
}

// mockParticipantRepository for testing
type mockParticipantRepository struct {
	participants []*models.Participant
}

func (m *mockParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.participants = append(m.participants, p)
	return nil
}

func (m *mockParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	for _, p := range m.participants {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("participant not found")
}

func (m *mockParticipantRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Participant, error) {
	result := []*models.Participant{}
	for _, p := range m.participants {
		if p.EventID == eventID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockParticipantRepository) ListByEventAndStatus(ctx context.Context, eventID uuid.UUID, status string) ([]*models.Participant, error) {
	result := []*models.Participant{}
	for _, p := range m.participants {
		if p.EventID == eventID && p.Status == status {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockParticipantRepository) ListByIDs(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]*models.Participant, error) {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := []*models.Participant{}
	for _, p := range m.participants {
		if p.EventID == eventID && wanted[p.ID] {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockParticipantRepository) List(ctx context.Context, filter models.ParticipantFilter) ([]*models.Participant, int64, error) {
	return m.participants, int64(len(m.participants)), nil
}

func (m *mockParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	return nil
}

func (m *mockParticipantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// mockEventRepository for testing
type mockEventRepository struct {
	events []*models.Event
}

func (m *mockEventRepository) Create(ctx context.Context, e *models.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("event not found")
}

func (m *mockEventRepository) List(ctx context.Context, page, pageSize int) ([]*models.Event, int64, error) {
	return m.events, int64(len(m.events)), nil
}

// mockTemplateRepository for testing
type mockTemplateRepository struct {
	templates []*models.EmailTemplate
}

func (m *mockTemplateRepository) Create(ctx context.Context, t *models.EmailTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.templates = append(m.templates, t)
	return nil
}

func (m *mockTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error) {
	for _, t := range m.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("template not found")
}

func (m *mockTemplateRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EmailTemplate, error) {
	result := []*models.EmailTemplate{}
	for _, t := range m.templates {
		if t.EventID == eventID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTemplateRepository) Update(ctx context.Context, t *models.EmailTemplate) error {
	return nil
}

func (m *mockTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// mockDeliveryRepository for testing
type mockDeliveryRepository struct {
	mu         sync.Mutex
	deliveries []*models.Delivery
	failCreate bool
}

func (m *mockDeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return fmt.Errorf("insert failed")
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()
	m.deliveries = append(m.deliveries, d)
	return nil
}

func (m *mockDeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.deliveries {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("delivery not found")
}

func (m *mockDeliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, sendErr *string, sentAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.deliveries {
		if d.ID == id {
			d.Status = status
			d.Error = sendErr
			d.SentAt = sentAt
			return nil
		}
	}
	return models.ErrNotFoundWithMsg("delivery not found")
}

func (m *mockDeliveryRepository) ListLatestByCampaign(ctx context.Context, campaignID uuid.UUID, filter models.DeliveryFilter) ([]*models.Delivery, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[uuid.UUID]*models.Delivery{}
	for _, d := range m.deliveries {
		if d.CampaignID != campaignID {
			continue
		}
		if prev, ok := latest[d.ParticipantID]; !ok || d.CreatedAt.After(prev.CreatedAt) {
			latest[d.ParticipantID] = d
		}
	}
	result := []*models.Delivery{}
	for _, d := range latest {
		result = append(result, d)
	}
	return result, int64(len(result)), nil
}

func (m *mockDeliveryRepository) MarkOpened(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (m *mockDeliveryRepository) MarkClicked(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (m *mockDeliveryRepository) byStatus(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, d := range m.deliveries {
		if d.Status == status {
			count++
		}
	}
	return count
}

// mockMailer records messages and fails for configured addresses
type mockMailer struct {
	mu      sync.Mutex
	sent    []*mailer.Message
	failFor map[string]bool
	failAll bool
}

func newMockMailer() *mockMailer {
	return &mockMailer{failFor: make(map[string]bool)}
}

func (m *mockMailer) Send(ctx context.Context, msg *mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || m.failFor[msg.To] {
		return fmt.Errorf("provider rejected %s", msg.To)
	}
	m.sent = append(m.sent, msg)
	return nil
}

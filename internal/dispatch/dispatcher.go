package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/mailer"
	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

// Options tune the dispatch loop
type Options struct {
	// SendDelay is the fixed pause between recipients. It is a throttle to
	// stay under the mail provider's rate limits, not an optimization knob.
	SendDelay time.Duration
	// TrackingEnabled controls body augmentation with link and open
	// tracking references.
	TrackingEnabled bool
	// FailOnAllFailed marks a campaign failed instead of completed when
	// every single recipient failed.
	FailOnAllFailed bool
	// FromName and FromEmail identify the sender on outbound mail.
	FromName  string
	FromEmail string
}

// Dispatcher runs the whole send pipeline for one campaign: resolve
// recipients, then for each one render, record, augment and send, updating
// the campaign's counters as it goes. Recipients are processed strictly
// sequentially; no two sends overlap.
type Dispatcher struct {
	campaignRepo    repository.CampaignRepository
	eventRepo       repository.EventRepository
	templateRepo    repository.TemplateRepository
	participantRepo repository.ParticipantRepository
	deliveryRepo    repository.DeliveryRepository
	resolver        *Resolver
	augmenter       *Augmenter
	mailer          mailer.Mailer
	opts            Options
	logger          *slog.Logger
}

// NewDispatcher creates a new campaign dispatcher
func NewDispatcher(
	campaignRepo repository.CampaignRepository,
	eventRepo repository.EventRepository,
	templateRepo repository.TemplateRepository,
	participantRepo repository.ParticipantRepository,
	deliveryRepo repository.DeliveryRepository,
	augmenter *Augmenter,
	m mailer.Mailer,
	opts Options,
	logger *slog.Logger,
) *Dispatcher {
	if opts.SendDelay <= 0 {
		opts.SendDelay = 500 * time.Millisecond
	}
	return &Dispatcher{
		campaignRepo:    campaignRepo,
		eventRepo:       eventRepo,
		templateRepo:    templateRepo,
		participantRepo: participantRepo,
		deliveryRepo:    deliveryRepo,
		resolver:        NewResolver(participantRepo),
		augmenter:       augmenter,
		mailer:          m,
		opts:            opts,
		logger:          logger,
	}
}

// Result summarizes a finished campaign send
type Result struct {
	CampaignID uuid.UUID `json:"campaign_id"`
	Status     string    `json:"status"`
	Total      int       `json:"total"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}

// Run executes the dispatch pipeline for a campaign.
//
// Precondition failures (missing template, missing event, no recipients)
// abort the send before any recipient is attempted and leave the campaign
// failed. A single recipient's failure never stops the loop; failures are
// counted and the campaign still completes. Only an error escaping the loop
// itself marks the campaign failed mid-send.
func (d *Dispatcher) Run(ctx context.Context, campaignID uuid.UUID) (*Result, error) {
	campaign, err := d.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Channel != models.ChannelEmail {
		return nil, models.ErrInvalidInput(
			fmt.Sprintf("channel '%s' is not dispatchable", campaign.Channel),
		)
	}

	// Optimistic guard: only one sender wins the draft -> sending
	// transition, so a double-enqueued job is a no-op.
	if err := d.campaignRepo.TransitionStatus(ctx, campaignID, models.CampaignStatusDraft, models.CampaignStatusSending); err != nil {
		return nil, err
	}

	result, err := d.send(ctx, campaign)
	if err != nil {
		d.fail(campaignID, err)
		return nil, err
	}

	return result, nil
}

func (d *Dispatcher) send(ctx context.Context, campaign *models.Campaign) (*Result, error) {
	// Precondition reads. A deleted template or event aborts the whole
	// send before any recipient is touched.
	template, err := d.templateRepo.GetByID(ctx, campaign.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("template precondition failed: %w", err)
	}

	event, err := d.eventRepo.GetByID(ctx, campaign.EventID)
	if err != nil {
		return nil, fmt.Errorf("event precondition failed: %w", err)
	}

	recipients, err := d.resolver.Resolve(ctx, campaign)
	if err != nil {
		return nil, fmt.Errorf("recipient resolution failed: %w", err)
	}
	if len(recipients) == 0 {
		return nil, models.ErrInvalidInput("campaign resolved no recipients")
	}

	now := time.Now().UTC()
	if err := d.campaignRepo.MarkSending(ctx, campaign.ID, len(recipients), now); err != nil {
		return nil, err
	}

	d.logger.Info("campaign send started",
		slog.String("campaign_id", campaign.ID.String()),
		slog.String("target_type", campaign.TargetType),
		slog.Int("recipients", len(recipients)),
	)

	var sent, failed, skipped int

	for i, recipient := range recipients {
		// Checkpoint between recipients: stop on context cancellation or
		// when the campaign was cancelled through the API.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			if cancelled, err := d.isCancelled(ctx, campaign.ID); err == nil && cancelled {
				skipped = len(recipients) - i
				d.logger.Info("campaign cancelled mid-send",
					slog.String("campaign_id", campaign.ID.String()),
					slog.Int("skipped", skipped),
				)
				return d.finalize(ctx, campaign.ID, models.CampaignStatusCancelled, sent, failed, skipped)
			}
		}

		if d.deliverOne(ctx, campaign, template, event, recipient) {
			sent++
		} else {
			failed++
		}

		if err := d.campaignRepo.UpdateCounters(ctx, campaign.ID, sent, failed, len(recipients)-sent-failed); err != nil {
			return nil, err
		}

		// Fixed inter-recipient throttle.
		if i < len(recipients)-1 {
			select {
			case <-time.After(d.opts.SendDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	status := models.CampaignStatusCompleted
	if d.opts.FailOnAllFailed && sent == 0 {
		status = models.CampaignStatusFailed
	}

	return d.finalize(ctx, campaign.ID, status, sent, failed, skipped)
}

// deliverOne processes a single recipient and reports whether the send
// succeeded. Every failure inside this method is absorbed: it is recorded
// on the delivery row and counted, never propagated.
func (d *Dispatcher) deliverOne(
	ctx context.Context,
	campaign *models.Campaign,
	template *models.EmailTemplate,
	event *models.Event,
	recipient *models.Participant,
) bool {
	subject := Render(template.Subject, recipient, event)
	body := Render(template.Body, recipient, event)

	// The delivery record must exist before augmentation: the tracking
	// references carry its id.
	delivery := &models.Delivery{
		CampaignID:    campaign.ID,
		ParticipantID: recipient.ID,
		TemplateID:    template.ID,
		TemplateName:  template.Name,
		Subject:       subject,
		Status:        models.DeliveryStatusPending,
	}

	tracked := false
	if err := d.deliveryRepo.Create(ctx, delivery); err != nil {
		// Degrade rather than abort: send without a trackable record.
		d.logger.Error("failed to create delivery record, sending untracked",
			slog.String("campaign_id", campaign.ID.String()),
			slog.String("participant_id", recipient.ID.String()),
			slog.String("error", err.Error()),
		)
		delivery = nil
	} else if d.opts.TrackingEnabled {
		body = d.augmenter.Augment(body, delivery.ID, recipient.ID)
		tracked = true
	}

	attachments := append([]models.Attachment{}, template.Attachments...)
	if template.IncludeQRCode {
		if recipient.QRCodeURL != nil && *recipient.QRCodeURL != "" {
			attachments = append(attachments, models.Attachment{
				Name: "qr-code.png",
				URL:  *recipient.QRCodeURL,
			})
		} else {
			d.logger.Warn("participant has no QR artifact, sending without it",
				slog.String("campaign_id", campaign.ID.String()),
				slog.String("participant_id", recipient.ID.String()),
			)
		}
	}

	msg := &mailer.Message{
		To:          recipient.Email,
		FromName:    d.opts.FromName,
		FromEmail:   d.opts.FromEmail,
		Subject:     subject,
		HTML:        body,
		Attachments: attachments,
		CampaignID:  campaign.ID.String(),
	}
	if delivery != nil {
		msg.DeliveryID = delivery.ID.String()
	}

	sendErr := d.mailer.Send(ctx, msg)

	if delivery != nil {
		sentAt := time.Now().UTC()
		status := models.DeliveryStatusSent
		var errMsg *string
		if sendErr != nil {
			status = models.DeliveryStatusFailed
			s := sendErr.Error()
			errMsg = &s
		}
		if err := d.deliveryRepo.UpdateStatus(ctx, delivery.ID, status, errMsg, &sentAt); err != nil {
			d.logger.Error("failed to update delivery status",
				slog.String("delivery_id", delivery.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	if sendErr != nil {
		d.logger.Warn("delivery failed",
			slog.String("campaign_id", campaign.ID.String()),
			slog.String("participant_id", recipient.ID.String()),
			slog.String("error", sendErr.Error()),
		)
		observeDelivery(models.DeliveryStatusFailed)
		return false
	}

	d.logger.Debug("delivery sent",
		slog.String("campaign_id", campaign.ID.String()),
		slog.String("participant_id", recipient.ID.String()),
		slog.Bool("tracked", tracked),
	)
	observeDelivery(models.DeliveryStatusSent)
	return true
}

// isCancelled re-reads the campaign status so an API-side cancel takes
// effect between recipients.
func (d *Dispatcher) isCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	campaign, err := d.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return campaign.Status == models.CampaignStatusCancelled, nil
}

func (d *Dispatcher) finalize(ctx context.Context, id uuid.UUID, status string, sent, failed, skipped int) (*Result, error) {
	completedAt := time.Now().UTC()

	if err := d.campaignRepo.UpdateCounters(ctx, id, sent, failed, skipped); err != nil {
		return nil, err
	}
	if err := d.campaignRepo.Finalize(ctx, id, status, completedAt); err != nil {
		return nil, err
	}

	d.logger.Info("campaign send finished",
		slog.String("campaign_id", id.String()),
		slog.String("status", status),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
		slog.Int("skipped", skipped),
	)
	observeCampaign(status)

	return &Result{
		CampaignID: id,
		Status:     status,
		Total:      sent + failed + skipped,
		Sent:       sent,
		Failed:     failed,
		Skipped:    skipped,
	}, nil
}

// fail marks the campaign failed after an error escaped the send loop. A
// fresh context detached from the caller is used so the terminal status is
// recorded even when the loop died to cancellation.
func (d *Dispatcher) fail(campaignID uuid.UUID, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.campaignRepo.Finalize(ctx, campaignID, models.CampaignStatusFailed, time.Now().UTC()); err != nil {
		d.logger.Error("failed to mark campaign failed",
			slog.String("campaign_id", campaignID.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	d.logger.Error("campaign send aborted",
		slog.String("campaign_id", campaignID.String()),
		slog.String("error", cause.Error()),
	)
	observeCampaign(models.CampaignStatusFailed)
}

package dispatch

import (
	"context"
	"fmt"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

// Resolver computes the concrete recipient list for a campaign's target
// specification. It is a pure read over the participant store.
type Resolver struct {
	participantRepo repository.ParticipantRepository
}

// NewResolver creates a new recipient resolver
func NewResolver(participantRepo repository.ParticipantRepository) *Resolver {
	return &Resolver{participantRepo: participantRepo}
}

// Resolve returns the participants a campaign targets.
//
//   - "all": every participant of the event, in registration order.
//   - "manual": the subset of the supplied ids that exist and belong to the
//     event; unknown ids are silently skipped.
//   - "filtered": an equality filter over the event's participants. Only
//     the "status" key is recognized; unrecognized keys are ignored, and a
//     filter with no recognized key resolves to all participants rather
//     than an empty set.
func (r *Resolver) Resolve(ctx context.Context, campaign *models.Campaign) ([]*models.Participant, error) {
	switch campaign.TargetType {
	case models.TargetAll:
		return r.participantRepo.ListByEvent(ctx, campaign.EventID)

	case models.TargetManual:
		return r.participantRepo.ListByIDs(ctx, campaign.EventID, campaign.TargetIDs)

	case models.TargetFiltered:
		if status, ok := campaign.TargetFilter["status"]; ok && status != "" {
			return r.participantRepo.ListByEventAndStatus(ctx, campaign.EventID, status)
		}
		// No recognized filter key behaves like no filter at all.
		return r.participantRepo.ListByEvent(ctx, campaign.EventID)

	default:
		return nil, models.ErrInvalidInput(fmt.Sprintf("unknown target type: %s", campaign.TargetType))
	}
}

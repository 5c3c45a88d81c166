package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	oppDomain "volunteerhub/internal/domain/opportunity"
	volDomain "volunteerhub/internal/domain/volunteer"
)

// CompletionStore defines the opportunity store interface needed for
// completion.
type CompletionStore interface {
	GetByID(ctx context.Context, id string) (oppDomain.Opportunity, error)
	ApprovedVolunteers(ctx context.Context, opportunityID string) ([]string, error)
	Complete(ctx context.Context, opportunityID string, forced bool) error
}

// MarkCompletedInput carries input for the completion orchestrator.
// OrganizationID must own the opportunity; empty skips the ownership check
// (admin path).
type MarkCompletedInput struct {
	OpportunityID  string
	OrganizationID string
}

// MarkCompletedResult reports the completion outcome.
type MarkCompletedResult struct {
	Rewarded int               // volunteers who received rewards
	Badges   []volDomain.Badge // badges newly earned during this completion
}

// MarkCompletedDeps holds dependencies for MarkCompleted.
type MarkCompletedDeps struct {
	OpportunityStore CompletionStore
	VolunteerStore   RewardStore
	Notify           NotifyDeps
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteMarkCompleted moves an opportunity to completed and rewards every
// volunteer with an approved proof. The transition is a conditional update
// on status: when two callers race, exactly one wins and runs the reward
// pass, so no volunteer is rewarded twice for the same opportunity.
// PRE: Opportunity is open or in progress with at least one approved proof
// POST: Status is completed; each approved volunteer rewarded exactly once
func ExecuteMarkCompleted(ctx context.Context, input MarkCompletedInput, deps MarkCompletedDeps) (MarkCompletedResult, error) {
	if input.OpportunityID == "" {
		return MarkCompletedResult{}, errors.New("opportunity ID is required")
	}

	o, err := deps.OpportunityStore.GetByID(ctx, input.OpportunityID)
	if err != nil {
		return MarkCompletedResult{}, err
	}
	if input.OrganizationID != "" && o.OrganizationID != input.OrganizationID {
		return MarkCompletedResult{}, oppDomain.ErrNotOwner
	}

	approved, err := deps.OpportunityStore.ApprovedVolunteers(ctx, input.OpportunityID)
	if err != nil {
		return MarkCompletedResult{}, err
	}
	if len(approved) == 0 {
		return MarkCompletedResult{}, oppDomain.ErrNoApprovedProofs
	}

	if err := deps.OpportunityStore.Complete(ctx, input.OpportunityID, false); err != nil {
		return MarkCompletedResult{}, err
	}

	// Re-read after winning the transition so approvals that landed between
	// the precondition check and the status flip are still rewarded.
	approved, err = deps.OpportunityStore.ApprovedVolunteers(ctx, input.OpportunityID)
	if err != nil {
		return MarkCompletedResult{}, err
	}

	result := MarkCompletedResult{}
	for _, volunteerID := range approved {
		award, err := ExecuteAwardRewards(ctx, AwardRewardsInput{
			VolunteerID:      volunteerID,
			OpportunityTitle: o.Title,
		}, AwardRewardsDeps{
			VolunteerStore: deps.VolunteerStore,
			Notify:         deps.Notify,
			GenerateID:     deps.GenerateID,
			Now:            deps.Now,
		})
		if err != nil {
			// The transition already happened; keep rewarding the rest.
			slog.Error("completion_event", "event", "reward_failed",
				"opportunity_id", input.OpportunityID, "volunteer_id", volunteerID, "error", err)
			continue
		}
		result.Rewarded++
		if award.Badge != nil {
			result.Badges = append(result.Badges, *award.Badge)
		}
	}

	slog.Info("completion_event", "event", "opportunity_completed",
		"opportunity_id", input.OpportunityID, "rewarded", result.Rewarded,
		"new_badges", len(result.Badges))
	return result, nil
}

// ForceCompleteInput carries input for the forced-completion orchestrator.
type ForceCompleteInput struct {
	OpportunityID  string
	OrganizationID string // empty skips the ownership check (admin path)
}

// ForceCompleteDeps holds dependencies for ForceComplete.
type ForceCompleteDeps struct {
	OpportunityStore CompletionStore
}

// ExecuteForceComplete moves an opportunity to completed without proofs and
// without rewards, recording the override on the record.
// PRE: Opportunity exists and is not already completed
// POST: Status is completed with forcedComplete set; no rewards issued
func ExecuteForceComplete(ctx context.Context, input ForceCompleteInput, deps ForceCompleteDeps) error {
	if input.OpportunityID == "" {
		return errors.New("opportunity ID is required")
	}

	o, err := deps.OpportunityStore.GetByID(ctx, input.OpportunityID)
	if err != nil {
		return err
	}
	if input.OrganizationID != "" && o.OrganizationID != input.OrganizationID {
		return oppDomain.ErrNotOwner
	}

	if err := deps.OpportunityStore.Complete(ctx, input.OpportunityID, true); err != nil {
		return err
	}

	slog.Info("completion_event", "event", "opportunity_force_completed", "opportunity_id", input.OpportunityID)
	return nil
}

package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"volunteerhub/internal/domain/notification"
	"volunteerhub/internal/domain/reward"
	volDomain "volunteerhub/internal/domain/volunteer"
)

// RewardStore defines the volunteer store interface needed by the reward
// engine. The mutating methods are atomic in the store, so two completions
// rewarding the same volunteer concurrently never lose an update.
type RewardStore interface {
	GetByID(ctx context.Context, id string) (volDomain.Volunteer, error)
	IncrementCompleted(ctx context.Context, id string) (int, error)
	AddPoints(ctx context.Context, id string, points int) error
	AddBadge(ctx context.Context, b volDomain.Badge) (bool, error)
}

// AwardRewardsInput carries input for the reward engine.
type AwardRewardsInput struct {
	VolunteerID      string
	OpportunityTitle string // used in notification copy
}

// AwardRewardsResult reports what one completion earned.
type AwardRewardsResult struct {
	CompletedTasks int // new value after the increment
	PointsAwarded  int // completion points plus any badge bonus
	Badge          *volDomain.Badge
}

// AwardRewardsDeps holds dependencies for AwardRewards.
type AwardRewardsDeps struct {
	VolunteerStore RewardStore
	Notify         NotifyDeps
	GenerateID     func() string
	Now            func() time.Time
}

// ExecuteAwardRewards issues the rewards for one verified completion:
// completedTasks is incremented atomically, completion points are computed
// from the new count, and a badge is appended when the count lands exactly
// on a milestone. The badge append is conditional in the store, so a
// milestone is awarded at most once even under concurrent completions.
// Only a newly appended badge is notified.
// PRE: VolunteerID refers to an existing volunteer
// POST: completedTasks +1; points increased; at most one new badge
func ExecuteAwardRewards(ctx context.Context, input AwardRewardsInput, deps AwardRewardsDeps) (AwardRewardsResult, error) {
	if input.VolunteerID == "" {
		return AwardRewardsResult{}, volDomain.ErrNotFound
	}

	count, err := deps.VolunteerStore.IncrementCompleted(ctx, input.VolunteerID)
	if err != nil {
		return AwardRewardsResult{}, fmt.Errorf("increment completed tasks: %w", err)
	}

	points := reward.CompletionPoints(count)
	if err := deps.VolunteerStore.AddPoints(ctx, input.VolunteerID, points); err != nil {
		return AwardRewardsResult{}, fmt.Errorf("add completion points: %w", err)
	}

	result := AwardRewardsResult{CompletedTasks: count, PointsAwarded: points}

	if m, ok := reward.MilestoneFor(count); ok {
		badge := volDomain.Badge{
			VolunteerID: input.VolunteerID,
			Name:        m.Name,
			Description: m.Description,
			BonusPoints: m.BonusPoints,
			EarnedAt:    deps.Now(),
		}
		added, err := deps.VolunteerStore.AddBadge(ctx, badge)
		if err != nil {
			return AwardRewardsResult{}, fmt.Errorf("append badge: %w", err)
		}
		if added {
			if err := deps.VolunteerStore.AddPoints(ctx, input.VolunteerID, m.BonusPoints); err != nil {
				return AwardRewardsResult{}, fmt.Errorf("add badge bonus: %w", err)
			}
			result.PointsAwarded += m.BonusPoints
			result.Badge = &badge
		}
	}

	slog.Info("reward_event", "event", "rewards_awarded",
		"volunteer_id", input.VolunteerID, "completed_tasks", count,
		"points_awarded", result.PointsAwarded, "badge", badgeName(result.Badge))

	notifyVolunteerOfRewards(ctx, input, result, deps)
	return result, nil
}

// notifyVolunteerOfRewards tells the volunteer what they earned. A badge
// gets its own notification; without one only the points are announced.
// Best-effort: failures are logged and dropped.
func notifyVolunteerOfRewards(ctx context.Context, input AwardRewardsInput, result AwardRewardsResult, deps AwardRewardsDeps) {
	if deps.Notify.NotificationStore == nil {
		return
	}

	v, err := deps.VolunteerStore.GetByID(ctx, input.VolunteerID)
	if err != nil {
		slog.Warn("reward_event", "event", "reward_fanout_lookup_failed", "volunteer_id", input.VolunteerID, "error", err)
		return
	}
	recipient := notification.Recipient{Kind: notification.KindVolunteer, ID: v.ID}

	title := "Points earned"
	message := fmt.Sprintf("You earned **%d points** for completing **%s**.",
		result.PointsAwarded, input.OpportunityTitle)
	kind := notification.EventReward
	if result.Badge != nil {
		title = "New badge: " + result.Badge.Name
		message = fmt.Sprintf("You earned the **%s** badge (%s) and **%d points** for completing **%s**.",
			result.Badge.Name, result.Badge.Description, result.PointsAwarded, input.OpportunityTitle)
		kind = notification.EventBadge
	}

	err = ExecuteNotify(ctx, NotifyInput{
		Recipient:      recipient,
		RecipientEmail: v.Email,
		Title:          title,
		Message:        message,
		Kind:           kind,
		Channel:        notification.ChannelBoth,
	}, deps.Notify)
	if err != nil {
		slog.Warn("reward_event", "event", "reward_fanout_failed", "volunteer_id", v.ID, "error", err)
	}
}

func badgeName(b *volDomain.Badge) string {
	if b == nil {
		return ""
	}
	return b.Name
}

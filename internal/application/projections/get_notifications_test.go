package projections

import (
	"context"
	"errors"
	"testing"

	domainNotification "volunteerhub/internal/domain/notification"
)

// mockNotificationStore implements NotificationStore for testing.
type mockNotificationStore struct {
	records []domainNotification.Notification
}

func (m *mockNotificationStore) ListByRecipient(_ context.Context, r domainNotification.Recipient, channel string) ([]domainNotification.Notification, error) {
	var out []domainNotification.Notification
	for _, n := range m.records {
		if n.RecipientKind == r.Kind && n.RecipientID == r.ID && n.Channel == channel {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationStore) UnreadCount(_ context.Context, r domainNotification.Recipient) (int, error) {
	count := 0
	for _, n := range m.records {
		if n.RecipientKind == r.Kind && n.RecipientID == r.ID && n.Channel == domainNotification.ChannelInApp && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func feedFixture() *mockNotificationStore {
	return &mockNotificationStore{records: []domainNotification.Notification{
		{ID: "n-1", RecipientKind: domainNotification.KindVolunteer, RecipientID: "vol-1", Title: "a", Message: "m", Kind: domainNotification.EventSignup, Channel: domainNotification.ChannelInApp, IsRead: true, CreatedAt: testTime},
		{ID: "n-2", RecipientKind: domainNotification.KindVolunteer, RecipientID: "vol-1", Title: "b", Message: "m", Kind: domainNotification.EventBadge, Channel: domainNotification.ChannelInApp, CreatedAt: testTime},
		{ID: "n-3", RecipientKind: domainNotification.KindVolunteer, RecipientID: "vol-1", Title: "c", Message: "m", Kind: domainNotification.EventBadge, Channel: domainNotification.ChannelEmail, IsRead: true, CreatedAt: testTime},
		{ID: "n-4", RecipientKind: domainNotification.KindOrganization, RecipientID: "org-1", Title: "d", Message: "m", Kind: domainNotification.EventSignup, Channel: domainNotification.ChannelInApp, CreatedAt: testTime},
	}}
}

func vol1() domainNotification.Recipient {
	return domainNotification.Recipient{Kind: domainNotification.KindVolunteer, ID: "vol-1"}
}

// TestQueryGetNotifications_InAppFeed tests the feed tab: unread first,
// email records excluded, unread count attached.
func TestQueryGetNotifications_InAppFeed(t *testing.T) {
	res, err := QueryGetNotifications(context.Background(), GetNotificationsQuery{
		Recipient: vol1(),
	}, GetNotificationsDeps{NotificationStore: feedFixture()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Notifications) != 2 {
		t.Fatalf("expected 2 in-app records, got %d", len(res.Notifications))
	}
	if res.Notifications[0].ID != "n-2" {
		t.Errorf("expected unread record first, got %s", res.Notifications[0].ID)
	}
	if res.UnreadCount != 1 {
		t.Errorf("expected unread count 1, got %d", res.UnreadCount)
	}
}

// TestQueryGetNotifications_EmailAuditTab tests the audit tab: only
// email-channel records, all read, unread count still from the feed.
func TestQueryGetNotifications_EmailAuditTab(t *testing.T) {
	res, err := QueryGetNotifications(context.Background(), GetNotificationsQuery{
		Recipient: vol1(),
		Channel:   domainNotification.ChannelEmail,
	}, GetNotificationsDeps{NotificationStore: feedFixture()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Notifications) != 1 || res.Notifications[0].ID != "n-3" {
		t.Fatalf("expected only the email record, got %+v", res.Notifications)
	}
	if res.UnreadCount != 1 {
		t.Errorf("expected unread count 1 from in-app feed, got %d", res.UnreadCount)
	}
}

// TestQueryGetNotifications_ScopedToRecipient tests that another user's
// records never leak into the feed.
func TestQueryGetNotifications_ScopedToRecipient(t *testing.T) {
	res, err := QueryGetNotifications(context.Background(), GetNotificationsQuery{
		Recipient: domainNotification.Recipient{Kind: domainNotification.KindOrganization, ID: "org-1"},
	}, GetNotificationsDeps{NotificationStore: feedFixture()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Notifications) != 1 || res.Notifications[0].ID != "n-4" {
		t.Fatalf("expected only org-1's record, got %+v", res.Notifications)
	}
}

// TestQueryGetNotifications_InvalidChannel tests tab validation. The
// fan-out value "both" is a write-side concept and is not a readable tab.
func TestQueryGetNotifications_InvalidChannel(t *testing.T) {
	_, err := QueryGetNotifications(context.Background(), GetNotificationsQuery{
		Recipient: vol1(),
		Channel:   domainNotification.ChannelBoth,
	}, GetNotificationsDeps{NotificationStore: feedFixture()})
	if !errors.Is(err, domainNotification.ErrInvalidChannel) {
		t.Errorf("expected ErrInvalidChannel, got %v", err)
	}
}

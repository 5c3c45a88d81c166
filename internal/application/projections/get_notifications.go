package projections

import (
	"context"
	"sort"

	domainNotification "volunteerhub/internal/domain/notification"
)

// GetNotificationsQuery carries query parameters. Channel picks the tab:
// in_app for the live feed, email for the audit trail.
type GetNotificationsQuery struct {
	Recipient domainNotification.Recipient
	Channel   string
}

// GetNotificationsResult carries the query result.
type GetNotificationsResult struct {
	Notifications []domainNotification.Notification
	UnreadCount   int
}

// GetNotificationsDeps holds dependencies for GetNotifications.
type GetNotificationsDeps struct {
	NotificationStore NotificationStore
}

// QueryGetNotifications retrieves one tab of a recipient's notifications.
// The in-app feed sorts unread before read, newest first within each group;
// the email-audit tab is purely newest first. UnreadCount always reflects
// the in-app feed regardless of the requested tab.
// PRE: Recipient is valid; Channel is in_app or email
// POST: Returns the tab's records and the in-app unread count
func QueryGetNotifications(ctx context.Context, query GetNotificationsQuery, deps GetNotificationsDeps) (GetNotificationsResult, error) {
	if err := query.Recipient.Validate(); err != nil {
		return GetNotificationsResult{}, err
	}
	channel := query.Channel
	if channel == "" {
		channel = domainNotification.ChannelInApp
	}
	if channel != domainNotification.ChannelInApp && channel != domainNotification.ChannelEmail {
		return GetNotificationsResult{}, domainNotification.ErrInvalidChannel
	}

	records, err := deps.NotificationStore.ListByRecipient(ctx, query.Recipient, channel)
	if err != nil {
		return GetNotificationsResult{}, err
	}
	if records == nil {
		records = []domainNotification.Notification{}
	}

	if channel == domainNotification.ChannelInApp {
		sort.SliceStable(records, func(i, j int) bool {
			return !records[i].IsRead && records[j].IsRead
		})
	}

	unread, err := deps.NotificationStore.UnreadCount(ctx, query.Recipient)
	if err != nil {
		return GetNotificationsResult{}, err
	}

	return GetNotificationsResult{Notifications: records, UnreadCount: unread}, nil
}

package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	emailAdapter "volunteerhub/internal/adapters/email"
	"volunteerhub/internal/adapters/presence"
	"volunteerhub/internal/domain/notification"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// NotificationRecorder defines the store interface for persisting delivery
// records.
type NotificationRecorder interface {
	Save(ctx context.Context, n notification.Notification) error
}

// PresencePusher defines the live-push interface for connected users.
type PresencePusher interface {
	Push(userID string, ev presence.Event) int
}

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// NotifyInput carries one notification to fan out.
type NotifyInput struct {
	Recipient      notification.Recipient
	RecipientEmail string // resolved by the caller; required for the email channel
	Title          string
	Message        string // Markdown content
	Kind           string // event kind, e.g. proof_approved
	Channel        string // in_app, email, or both
}

// NotifyDeps holds dependencies for the notification fanout.
type NotifyDeps struct {
	NotificationStore NotificationRecorder
	Presence          PresencePusher      // optional: nil skips live push
	EmailSender       emailAdapter.Sender // optional: nil skips email dispatch
	GenerateID        func() string
	Now               func() time.Time
	FromAddress       string
	ReplyTo           string
}

// ExecuteNotify fans one notification out across its requested channels.
// The in-app path persists an unread record and pushes it to any live
// connections. The email path persists a separate, already-read record for
// the email-audit tab and then dispatches through the provider; the record
// captures the attempt, so a provider failure leaves the audit trail
// intact. Dispatch failures are logged and suppressed so a dropped
// provider never fails the business operation that triggered the
// notification.
// PRE: Recipient is valid; Channel is in_app, email, or both
// POST: An in-app record exists iff the channel included in_app; an email
// record exists iff the channel included email and a sender plus address
// were available
func ExecuteNotify(ctx context.Context, input NotifyInput, deps NotifyDeps) error {
	if err := input.Recipient.Validate(); err != nil {
		return err
	}
	if !notification.IsValidChannel(input.Channel) {
		return notification.ErrInvalidChannel
	}

	inApp := input.Channel == notification.ChannelInApp || input.Channel == notification.ChannelBoth
	viaEmail := input.Channel == notification.ChannelEmail || input.Channel == notification.ChannelBoth

	if inApp {
		rec := notification.Notification{
			ID:            deps.GenerateID(),
			RecipientKind: input.Recipient.Kind,
			RecipientID:   input.Recipient.ID,
			Title:         input.Title,
			Message:       input.Message,
			Kind:          input.Kind,
			Channel:       notification.ChannelInApp,
			CreatedAt:     deps.Now(),
		}
		if err := rec.Validate(); err != nil {
			return err
		}
		if err := deps.NotificationStore.Save(ctx, rec); err != nil {
			return err
		}

		if deps.Presence != nil {
			payload, err := json.Marshal(map[string]string{
				"id":      rec.ID,
				"title":   rec.Title,
				"message": rec.Message,
				"kind":    rec.Kind,
			})
			if err == nil {
				delivered := deps.Presence.Push(rec.RecipientID, presence.Event{Kind: rec.Kind, Data: string(payload)})
				slog.Info("notify_event", "event", "in_app_pushed", "recipient_id", rec.RecipientID, "kind", rec.Kind, "connections", delivered)
			}
		}
	}

	if viaEmail {
		if deps.EmailSender == nil || input.RecipientEmail == "" {
			slog.Warn("notify_event", "event", "email_skipped", "recipient_id", input.Recipient.ID, "kind", input.Kind, "reason", "no sender or address")
			return nil
		}

		audit := notification.Notification{
			ID:            deps.GenerateID(),
			RecipientKind: input.Recipient.Kind,
			RecipientID:   input.Recipient.ID,
			Title:         input.Title,
			Message:       input.Message,
			Kind:          input.Kind,
			Channel:       notification.ChannelEmail,
			IsRead:        true, // audit record, never counts as unread
			CreatedAt:     deps.Now(),
		}
		if err := deps.NotificationStore.Save(ctx, audit); err != nil {
			slog.Warn("notify_event", "event", "email_audit_record_failed", "recipient_id", input.Recipient.ID, "error", err)
		}

		result, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
			To:      []string{input.RecipientEmail},
			From:    deps.FromAddress,
			Subject: input.Title,
			HTML:    renderMarkdown(input.Message),
			ReplyTo: deps.ReplyTo,
		})
		if err != nil {
			// Suppressed: the triggering operation already succeeded.
			slog.Warn("notify_event", "event", "email_dispatch_failed", "recipient_id", input.Recipient.ID, "kind", input.Kind, "error", err)
			return nil
		}
		slog.Info("notify_event", "event", "email_dispatched", "recipient_id", input.Recipient.ID, "kind", input.Kind, "message_id", result.MessageID)
	}

	return nil
}

// renderMarkdown converts notification markdown into an HTML email body.
// On a render failure the raw text is sent instead.
func renderMarkdown(md string) string {
	var buf strings.Builder
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return md
	}
	return buf.String()
}

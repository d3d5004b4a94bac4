// Package sweep runs the scheduled expiration pass: it classifies each
// user's pantry and composes reminder notifications for anything expiring
// soon or already expired.
package sweep

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/shelfsense/internal/expiration"
	"github.com/dukerupert/shelfsense/internal/model"
)

// NotificationPayload is the single message composed per user per sweep run.
type NotificationPayload struct {
	RecipientAddress string
	SubjectLine      string
	BodyText         string
	BodyHTML         string
}

// BuildPayload partitions the pantry snapshot and composes one notification
// covering both partitions. It returns nil when nothing warrants a message.
// Sweeps do not deduplicate across runs: an unchanged expiring item is
// re-reported on every invocation.
func BuildPayload(user model.User, pantry []model.PantryItem, now time.Time) *NotificationPayload {
	soon, expired := expiration.Partition(pantry, now)
	if len(soon) == 0 && len(expired) == 0 {
		return nil
	}

	total := len(soon) + len(expired)
	subject := fmt.Sprintf("%d pantry items need attention", total)
	if total == 1 {
		subject = "1 pantry item needs attention"
	}

	var text strings.Builder
	var html strings.Builder
	html.WriteString("<p>Your pantry needs attention.</p>")

	if len(expired) > 0 {
		text.WriteString("Expired:\n")
		html.WriteString("<p><strong>Expired</strong></p><ul>")
		for _, item := range expired {
			fmt.Fprintf(&text, "  - %s (expired %s)\n", item.FoodItem, item.ExpirationDate)
			fmt.Fprintf(&html, "<li>%s (expired %s)</li>", item.FoodItem, item.ExpirationDate)
		}
		html.WriteString("</ul>")
	}
	if len(soon) > 0 {
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString("Expiring soon:\n")
		html.WriteString("<p><strong>Expiring soon</strong></p><ul>")
		for _, item := range soon {
			fmt.Fprintf(&text, "  - %s (expires %s)\n", item.FoodItem, item.ExpirationDate)
			fmt.Fprintf(&html, "<li>%s (expires %s)</li>", item.FoodItem, item.ExpirationDate)
		}
		html.WriteString("</ul>")
	}

	return &NotificationPayload{
		RecipientAddress: user.Email,
		SubjectLine:      subject,
		BodyText:         text.String(),
		BodyHTML:         html.String(),
	}
}

package engine

import (
	"time"

	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
)

// DefaultFeedbackDelay is how long after completion an order becomes
// eligible for a proactive feedback request.
const DefaultFeedbackDelay = 30 * time.Minute

// FeedbackDue reports whether an order is eligible for a proactive feedback
// request: feedback not yet requested, none stored, order completed, and at
// least delay elapsed since completion. The eligibility flag is only
// consumed by a dispatched save_feedback; a customer who ignores the prompt
// stays eligible.
func FeedbackDue(order *store.Order, now time.Time, delay time.Duration) bool {
	if order == nil {
		return false
	}
	if order.FeedbackRequested || order.Feedback != "" {
		return false
	}
	if order.CompletedAt == nil {
		return false
	}
	return now.Sub(*order.CompletedAt) >= delay
}

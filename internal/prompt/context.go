// Package prompt assembles the textual context and full prompt sent to the
// generative backend.
package prompt

import (
	"encoding/json"
	"strings"

	"github.com/hammaddar1993/restaurant-chatbot/internal/session"
)

// historyWindow bounds how many transcript entries the prompt carries.
const historyWindow = 10

// noContextPlaceholder keeps the attribute block non-empty when no session
// attributes are known.
const noContextPlaceholder = "No additional context"

// BuildContext merges session state and the catalog snapshot into one text
// blob. The menu goes first, visually delimited, because the model is
// instructed to prioritize it for factual questions. Attribute lines follow
// in a fixed order for reproducibility.
func BuildContext(state *session.State, menuText string) string {
	var parts []string

	if menuText != "" {
		divider := strings.Repeat("=", 50)
		parts = append(parts,
			divider,
			"RESTAURANT MENU (USE THIS TO ANSWER QUESTIONS)",
			divider,
			menuText,
			divider,
			"",
		)
	}

	var attrs []string
	if state != nil {
		if state.CustomerName != "" {
			attrs = append(attrs, "Customer Name: "+state.CustomerName)
		}
		if state.CurrentOrder != nil {
			attrs = append(attrs, "Current Order in Progress: "+marshalSnapshot(state.CurrentOrder))
		}
		if state.LastOrder != nil {
			attrs = append(attrs, "Last Order: "+marshalSnapshot(state.LastOrder))
		}
		if state.FeedbackDue {
			attrs = append(attrs, "Feedback Due: Ask the customer how their last order was")
		}
		if state.PendingAddress {
			attrs = append(attrs, "Waiting for: Customer address for delivery order")
		}
		if state.PendingLocation {
			attrs = append(attrs, "Waiting for: Customer location coordinates")
		}
	}
	if len(attrs) == 0 {
		attrs = append(attrs, noContextPlaceholder)
	}
	parts = append(parts, attrs...)

	return strings.Join(parts, "\n")
}

// BuildPrompt builds the full prompt: persona, context block, the most
// recent transcript entries and the new user message.
func BuildPrompt(systemPrompt, contextStr string, transcript []session.Entry, userMessage string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n**CONTEXT INFORMATION**:\n")
	b.WriteString(contextStr)
	b.WriteString("\n\n**CONVERSATION HISTORY**:\n")

	entries := transcript
	if len(entries) > historyWindow {
		entries = entries[len(entries)-historyWindow:]
	}
	for _, entry := range entries {
		role := "Assistant"
		if entry.Role == session.RoleUser {
			role = "Customer"
		}
		b.WriteString(role + ": " + entry.Text + "\n")
	}

	b.WriteString("\nCustomer: " + userMessage + "\nAssistant:")
	return b.String()
}

func marshalSnapshot(snapshot *session.OrderSnapshot) string {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "{}"
	}
	return string(data)
}

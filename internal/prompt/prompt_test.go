package prompt_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hammaddar1993/restaurant-chatbot/internal/prompt"
	"github.com/hammaddar1993/restaurant-chatbot/internal/session"
	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
)

func sampleMenu() []store.MenuItem {
	return []store.MenuItem{
		{ItemName: "Quarter Broast", Category: "Broast", PriceWithTax: 450, Synonyms: "quarter, qtr broast"},
		{ItemName: "Half Broast", Category: "Broast", PriceWithTax: 850},
		{ItemName: "Zinger Burger", Category: "Burgers", PriceWithTax: 550, Description: "Crispy fried chicken fillet"},
	}
}

func TestFormatMenuGroupsByCategory(t *testing.T) {
	text := prompt.FormatMenu(sampleMenu())

	broastIdx := strings.Index(text, "**BROAST**")
	burgerIdx := strings.Index(text, "**BURGERS**")
	if broastIdx == -1 || burgerIdx == -1 {
		t.Fatalf("missing category headers in:\n%s", text)
	}
	if broastIdx > burgerIdx {
		t.Error("expected categories in first-seen order")
	}
	if !strings.Contains(text, "• Quarter Broast: Rs. 450") {
		t.Errorf("missing priced item line in:\n%s", text)
	}
	if !strings.Contains(text, "Also known as: quarter, qtr broast") {
		t.Errorf("missing synonyms line in:\n%s", text)
	}
	if !strings.Contains(text, "Description: Crispy fried chicken fillet") {
		t.Errorf("missing description line in:\n%s", text)
	}
}

func TestFormatMenuEmpty(t *testing.T) {
	if got := prompt.FormatMenu(nil); got != "Menu not available" {
		t.Errorf("got %q", got)
	}
}

func TestBuildContextMenuFirst(t *testing.T) {
	state := &session.State{CustomerName: "Ali"}
	text := prompt.BuildContext(state, "• Quarter Broast: Rs. 450")

	menuIdx := strings.Index(text, "RESTAURANT MENU")
	nameIdx := strings.Index(text, "Customer Name: Ali")
	if menuIdx == -1 || nameIdx == -1 {
		t.Fatalf("missing sections in:\n%s", text)
	}
	if menuIdx > nameIdx {
		t.Error("expected menu block before session attributes")
	}
	if !strings.Contains(text, strings.Repeat("=", 50)) {
		t.Error("expected menu dividers")
	}
}

func TestBuildContextAttributeOrder(t *testing.T) {
	state := &session.State{
		CustomerName:    "Sara",
		CurrentOrder:    &session.OrderSnapshot{ID: 3, Total: 950},
		PendingAddress:  true,
		PendingLocation: true,
	}
	text := prompt.BuildContext(state, "")

	wantOrder := []string{
		"Customer Name: Sara",
		"Current Order in Progress:",
		"Waiting for: Customer address for delivery order",
		"Waiting for: Customer location coordinates",
	}
	last := -1
	for _, want := range wantOrder {
		idx := strings.Index(text, want)
		if idx == -1 {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
		if idx < last {
			t.Errorf("%q out of order", want)
		}
		last = idx
	}
}

func TestBuildContextPlaceholder(t *testing.T) {
	text := prompt.BuildContext(&session.State{}, "")
	if text != "No additional context" {
		t.Errorf("got %q", text)
	}

	text = prompt.BuildContext(nil, "")
	if text != "No additional context" {
		t.Errorf("nil state: got %q", text)
	}
}

func TestBuildPromptHistoryWindow(t *testing.T) {
	var transcript []session.Entry
	for i := 0; i < 14; i++ {
		role := session.RoleUser
		if i%2 == 1 {
			role = session.RoleAssistant
		}
		transcript = append(transcript, session.Entry{Role: role, Text: fmt.Sprintf("turn %d", i)})
	}

	full := prompt.BuildPrompt("You are a waiter.", "No additional context", transcript, "how much is the broast?")

	if strings.Contains(full, "turn 3") {
		t.Error("expected entries beyond the last 10 to be dropped")
	}
	if !strings.Contains(full, "Customer: turn 4") {
		t.Error("expected turn 4 to open the history window")
	}
	if !strings.Contains(full, "Assistant: turn 13") {
		t.Error("expected turn 13 in the history window")
	}
	if !strings.HasPrefix(full, "You are a waiter.") {
		t.Error("expected prompt to open with the persona")
	}
	if !strings.HasSuffix(full, "\nCustomer: how much is the broast?\nAssistant:") {
		t.Errorf("unexpected prompt tail: %q", full[len(full)-60:])
	}
	if !strings.Contains(full, "**CONTEXT INFORMATION**:") || !strings.Contains(full, "**CONVERSATION HISTORY**:") {
		t.Error("missing section headers")
	}
}

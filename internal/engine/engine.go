// Package engine orchestrates one conversational turn: session and history
// reads, context assembly, the generative backend call, action dispatch and
// the outbound reply.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hammaddar1993/restaurant-chatbot/internal/action"
	"github.com/hammaddar1993/restaurant-chatbot/internal/llm"
	"github.com/hammaddar1993/restaurant-chatbot/internal/prompt"
	"github.com/hammaddar1993/restaurant-chatbot/internal/session"
	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
	"github.com/hammaddar1993/restaurant-chatbot/internal/telemetry"
	"github.com/hammaddar1993/restaurant-chatbot/internal/usage"
)

// degradedReply is sent when the generative backend fails mid-turn.
const degradedReply = "Sorry, something went wrong. Please try again."

// Kind is the inbound message kind.
type Kind string

const (
	KindText        Kind = "text"
	KindLocation    Kind = "location"
	KindUnsupported Kind = "unsupported"
)

// Inbound is one message delivered by the transport.
type Inbound struct {
	Identity  string
	Kind      Kind
	Text      string
	Latitude  float64
	Longitude float64
}

// Engine runs the per-turn pipeline. All collaborators are injected; the
// engine holds no process-wide state.
type Engine struct {
	sessions session.Store
	store    store.Store
	backend  llm.Client
	usage    usage.Recorder
	logger   *slog.Logger

	systemPrompt  string
	feedbackDelay time.Duration
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSystemPrompt overrides the built-in persona prompt.
func WithSystemPrompt(p string) Option {
	return func(e *Engine) { e.systemPrompt = p }
}

// WithFeedbackDelay overrides the delay before a completed order becomes
// eligible for a feedback request.
func WithFeedbackDelay(d time.Duration) Option {
	return func(e *Engine) { e.feedbackDelay = d }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(sessions session.Store, st store.Store, backend llm.Client, recorder usage.Recorder, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		sessions:      sessions,
		store:         st,
		backend:       backend,
		usage:         recorder,
		logger:        logger,
		systemPrompt:  prompt.LoadSystemPrompt(""),
		feedbackDelay: DefaultFeedbackDelay,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn handles one inbound message and returns the outbound prose.
// An empty reply with a nil error means the message was silently ignored
// (unsupported kind). Errors are infra failures the transport may retry or
// degrade on; domain and model failures are absorbed here.
func (e *Engine) ProcessTurn(ctx context.Context, in Inbound) (string, error) {
	log := telemetry.TurnLogger(e.logger, ctx, in.Identity)

	if in.Kind != KindText && in.Kind != KindLocation {
		log.Info("ignoring unsupported message kind", "kind", in.Kind)
		return "", nil
	}

	customer, err := e.store.GetOrCreateCustomer(ctx, in.Identity)
	if err != nil {
		return "", fmt.Errorf("get or create customer: %w", err)
	}

	userMessage := in.Text
	if in.Kind == KindLocation {
		userMessage = fmt.Sprintf("[Location shared: %v, %v]", in.Latitude, in.Longitude)
		if _, err := e.store.UpdateCustomer(ctx, customer.ID, store.CustomerPatch{
			Latitude:  &in.Latitude,
			Longitude: &in.Longitude,
		}); err != nil {
			log.Error("failed to update customer location", "error", err)
		}
		if _, err := e.sessions.Update(ctx, in.Identity, session.Patch{
			PendingLocation: session.Bool(false),
			Location:        &session.Coordinates{Latitude: in.Latitude, Longitude: in.Longitude},
		}); err != nil {
			return "", fmt.Errorf("update session location: %w", err)
		}
	}

	// Session state read before the user turn is appended: the prompt adds
	// the new message itself, after the history block.
	state, err := e.sessions.Get(ctx, in.Identity)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if state == nil {
		state = &session.State{}
	}

	if err := e.sessions.AppendTranscript(ctx, in.Identity, session.RoleUser, userMessage); err != nil {
		return "", fmt.Errorf("append user transcript: %w", err)
	}
	if err := e.store.SaveConversation(ctx, &store.ConversationEntry{
		CustomerID: customer.ID,
		Role:       session.RoleUser,
		Message:    userMessage,
	}); err != nil {
		log.Error("failed to persist user turn", "error", err)
	}

	// Feedback eligibility is evaluated on an ephemeral copy of the state
	// for this turn only; the flag is persisted solely through a
	// dispatched save_feedback.
	if lastOrder, err := e.store.LastOrder(ctx, customer.ID); err != nil {
		log.Error("failed to load last order", "error", err)
	} else if FeedbackDue(lastOrder, e.now(), e.feedbackDelay) {
		log.Info("feedback due", "order_id", lastOrder.ID)
		state.FeedbackDue = true
		state.LastOrder = orderSnapshot(lastOrder)
	}
	if customer.Name != "" {
		state.CustomerName = customer.Name
	}

	menuItems, err := e.store.MenuItems(ctx)
	if err != nil {
		log.Error("failed to load menu", "error", err)
	}
	menuText := prompt.FormatMenu(menuItems)

	contextStr := prompt.BuildContext(state, menuText)
	fullPrompt := prompt.BuildPrompt(e.systemPrompt, contextStr, state.Transcript, userMessage)

	reply, err := e.backend.Generate(ctx, fullPrompt)
	if err != nil {
		// Model failure degrades to a canned reply; state stays intact.
		log.Error("backend generation failed", "error", err)
		return e.finishTurn(ctx, log, customer, in.Identity, degradedReply, "", nil, 0), nil
	}

	charge, err := e.usage.Record(ctx, in.Identity, reply.InputTokens, reply.OutputTokens)
	if err != nil {
		log.Error("failed to record usage", "error", err)
	}
	log.Info("backend reply received",
		"input_tokens", reply.InputTokens,
		"output_tokens", reply.OutputTokens,
		"cost_usd", charge.TotalCostUSD,
	)

	cmd, status := action.Decode(reply.Text)
	switch status {
	case action.StatusDecoded:
		log.Info("action decoded", "action", cmd.Type)
		if err := e.dispatch(ctx, cmd, customer, state); err != nil {
			// Best-effort side effect: the reply still goes out.
			log.Error("action dispatch failed", "action", cmd.Type, "error", err)
		}
	case action.StatusNoBlock:
		log.Info("no action block in reply")
	default:
		// Block present but unusable: a model error, distinct from the
		// no-action case.
		log.Error("undecodable action block", "status", status.String())
	}

	prose := action.Prose(reply.Text)
	return e.finishTurn(ctx, log, customer, in.Identity, prose, fullPrompt, reply, charge.TotalCostPKR), nil
}

// finishTurn appends the assistant reply to the session transcript and
// persisted history, then returns the prose for the transport to send.
func (e *Engine) finishTurn(ctx context.Context, log *slog.Logger, customer *store.Customer, identity, prose, fullPrompt string, reply *llm.Reply, costPKR float64) string {
	if err := e.sessions.AppendTranscript(ctx, identity, session.RoleAssistant, prose); err != nil {
		log.Error("failed to append assistant transcript", "error", err)
	}

	entry := &store.ConversationEntry{
		CustomerID: customer.ID,
		Role:       session.RoleAssistant,
		Message:    prose,
	}
	if reply != nil {
		entry.PromptSent = fullPrompt
		entry.TokensInput = reply.InputTokens
		entry.TokensOutput = reply.OutputTokens
		entry.CostPKR = costPKR
	}
	if err := e.store.SaveConversation(ctx, entry); err != nil {
		log.Error("failed to persist assistant turn", "error", err)
	}
	return prose
}

func orderSnapshot(order *store.Order) *session.OrderSnapshot {
	items := make([]session.Item, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, session.Item{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	snap := &session.OrderSnapshot{
		ID:          order.ID,
		Items:       items,
		Total:       order.TotalPrice,
		OrderType:   string(order.OrderType),
		CompletedAt: order.CompletedAt,
	}
	createdAt := order.CreatedAt
	snap.CreatedAt = &createdAt
	return snap
}

package whatsapp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hammaddar1993/restaurant-chatbot/internal/engine"
	"github.com/hammaddar1993/restaurant-chatbot/internal/telemetry"
)

// errorReply is sent when a turn fails on infrastructure; internal
// diagnostics never reach the user.
const errorReply = "I apologize, but I encountered an error processing your request. Please try again."

// Sender is the outbound side of the transport. Satisfied by *Client.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	MarkRead(ctx context.Context, messageID string) error
}

// Handler receives Cloud API webhook calls and feeds them to the engine.
// Turns are serialized per identity: the engine's session cycle is
// read-modify-write and relies on the transport for mutual exclusion.
type Handler struct {
	engine      *engine.Engine
	sender      Sender
	verifyToken string
	logger      *slog.Logger

	locks sync.Map // identity -> *sync.Mutex
}

// NewHandler creates a webhook handler.
func NewHandler(eng *engine.Engine, sender Sender, verifyToken string, logger *slog.Logger) *Handler {
	return &Handler{
		engine:      eng,
		sender:      sender,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.verify(w, r)
	case http.MethodPost:
		h.receive(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// verify answers the Cloud API subscription challenge.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == h.verifyToken {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(q.Get("hub.challenge")))
		return
	}
	http.Error(w, "verification failed", http.StatusForbidden)
}

// Webhook payload shapes, trimmed to the fields the engine consumes.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Location *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location,omitempty"`
}

// receive fans inbound messages out to the engine. The webhook always
// acknowledges with 200 so the Cloud API does not redeliver; failures are
// handled per message.
func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("undecodable webhook payload", "error", err)
		writeJSON(w, map[string]string{"status": "error"})
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.processMessage(r.Context(), msg)
			}
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) processMessage(ctx context.Context, msg inboundMessage) {
	ctx = telemetry.WithCorrelationID(ctx, "")
	log := telemetry.TurnLogger(h.logger, ctx, msg.From)
	log.Info("message received", "message_id", msg.ID, "type", msg.Type)

	if err := h.sender.MarkRead(ctx, msg.ID); err != nil {
		log.Error("failed to mark message read", "error", err)
	}

	in := engine.Inbound{Identity: msg.From, Kind: engine.KindUnsupported}
	switch msg.Type {
	case "text":
		if msg.Text != nil {
			in.Kind = engine.KindText
			in.Text = msg.Text.Body
		}
	case "location":
		if msg.Location != nil {
			in.Kind = engine.KindLocation
			in.Latitude = msg.Location.Latitude
			in.Longitude = msg.Location.Longitude
		}
	}

	mu := h.identityLock(msg.From)
	mu.Lock()
	reply, err := h.engine.ProcessTurn(ctx, in)
	mu.Unlock()
	if err != nil {
		log.Error("turn failed", "error", err)
		reply = errorReply
	}
	if reply == "" {
		return
	}

	if err := h.sender.SendText(ctx, msg.From, reply); err != nil {
		log.Error("failed to send reply", "error", err)
		return
	}
	log.Info("reply sent")
}

func (h *Handler) identityLock(identity string) *sync.Mutex {
	mu, _ := h.locks.LoadOrStore(identity, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

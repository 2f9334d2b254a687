package whatsapp_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hammaddar1993/restaurant-chatbot/internal/engine"
	"github.com/hammaddar1993/restaurant-chatbot/internal/llm"
	"github.com/hammaddar1993/restaurant-chatbot/internal/session"
	memstore "github.com/hammaddar1993/restaurant-chatbot/internal/store/memory"
	"github.com/hammaddar1993/restaurant-chatbot/internal/telemetry"
	"github.com/hammaddar1993/restaurant-chatbot/internal/usage"
	"github.com/hammaddar1993/restaurant-chatbot/internal/whatsapp"
)

// fakeSender records outbound calls in place of the Cloud API client.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	read []string
}

type sentMessage struct {
	to   string
	body string
}

func (f *fakeSender) SendText(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return nil
}

func (f *fakeSender) MarkRead(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, messageID)
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func newTestHandler(t *testing.T, replies ...llm.Reply) (*whatsapp.Handler, *fakeSender) {
	t.Helper()

	sessions, err := session.NewStore(session.StoreTypeMemory)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	recorder, err := usage.NewRecorder(usage.RecorderTypeMemory)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	logger := telemetry.NewLogger(io.Discard, slog.LevelError)

	eng := engine.New(sessions, memstore.NewStore(), llm.NewMockClient(replies...), recorder, logger)
	sender := &fakeSender{}
	return whatsapp.NewHandler(eng, sender, "secret-token", logger), sender
}

func TestVerifyChallenge(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Errorf("expected challenge echoed, got %q", rec.Body.String())
	}
}

func TestVerifyBadToken(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestTextMessageRoundTrip(t *testing.T) {
	handler, sender := newTestHandler(t, llm.Reply{Text: "Hi! What can I get you today?"})

	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "923001234567",
						"id": "wamid.test1",
						"type": "text",
						"text": {"body": "hello"}
					}]
				}
			}]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack, got %d", rec.Code)
	}

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one outbound message, got %d", len(sent))
	}
	if sent[0].to != "923001234567" {
		t.Errorf("unexpected recipient %q", sent[0].to)
	}
	if sent[0].body != "Hi! What can I get you today?" {
		t.Errorf("unexpected body %q", sent[0].body)
	}
	if len(sender.read) != 1 || sender.read[0] != "wamid.test1" {
		t.Errorf("expected message marked read, got %v", sender.read)
	}
}

func TestUnsupportedMessageSilentlyAcked(t *testing.T) {
	handler, sender := newTestHandler(t, llm.Reply{Text: "should not send"})

	payload := `{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{
						"from": "923001234567",
						"id": "wamid.test2",
						"type": "image"
					}]
				}
			}]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 ack, got %d", rec.Code)
	}
	if len(sender.messages()) != 0 {
		t.Error("expected no outbound message for unsupported type")
	}
}

func TestMalformedPayloadStillAcked(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 even for undecodable payload, got %d", rec.Code)
	}
}

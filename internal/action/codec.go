package action

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Status reports how extraction went. NoBlock and BadPayload both yield no
// command, but mean different things operationally: no action intended
// versus model error.
type Status int

const (
	StatusNoBlock Status = iota
	StatusDecoded
	StatusBadPayload
	StatusUnknownType
)

// String returns the status name for logging.
func (s Status) String() string {
	switch s {
	case StatusNoBlock:
		return "no_block"
	case StatusDecoded:
		return "decoded"
	case StatusBadPayload:
		return "bad_payload"
	case StatusUnknownType:
		return "unknown_type"
	default:
		return "invalid"
	}
}

// FallbackReply is sent when stripping action blocks leaves no usable prose.
const FallbackReply = "I'll help you with that. How can I assist?"

// minProseLength is the shortest reply worth sending as-is.
const minProseLength = 5

var (
	// blockRE captures the JSON object of the first fenced action block.
	blockRE = regexp.MustCompile("(?s)```(?:action|json)\\s*(\\{.*?\\})\\s*```")
	// stripRE matches every fenced action block for prose cleanup.
	stripRE = regexp.MustCompile("(?s)```(?:action|json).*?```")
)

// envelope is the wire shape of an action block.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode scans raw model output for a fenced action block and decodes it.
// Only the first block is considered; a present-but-undecodable block
// returns StatusBadPayload with a nil command rather than an error, since
// the turn must still produce a reply.
func Decode(raw string) (*Command, Status) {
	match := blockRE.FindStringSubmatch(raw)
	if match == nil {
		return nil, StatusNoBlock
	}

	var env envelope
	if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &env); err != nil {
		return nil, StatusBadPayload
	}

	// A block without a data object still tags an action; treat the
	// payload as empty and let required-field checks happen at dispatch.
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("{}")
	}

	cmd := &Command{Type: Type(env.Type)}
	var payloadErr error
	switch cmd.Type {
	case TypeCreateOrder:
		payload := &CreateOrderPayload{}
		payloadErr = json.Unmarshal(env.Data, payload)
		cmd.CreateOrder = payload
	case TypeCreateComplaint:
		payload := &CreateComplaintPayload{}
		payloadErr = json.Unmarshal(env.Data, payload)
		cmd.CreateComplaint = payload
	case TypeCreateReservation:
		payload := &CreateReservationPayload{}
		payloadErr = json.Unmarshal(env.Data, payload)
		if payload.NumberOfPeople <= 0 {
			payload.NumberOfPeople = 2
		}
		cmd.CreateReservation = payload
	case TypeUpdateCustomerInfo:
		payload := &UpdateCustomerPayload{}
		payloadErr = json.Unmarshal(env.Data, payload)
		cmd.UpdateCustomer = payload
	case TypeSaveFeedback:
		payload := &SaveFeedbackPayload{}
		payloadErr = json.Unmarshal(env.Data, payload)
		cmd.SaveFeedback = payload
	default:
		return nil, StatusUnknownType
	}

	if payloadErr != nil {
		return nil, StatusBadPayload
	}
	return cmd, StatusDecoded
}

// Prose strips every fenced action block from raw output and trims the
// remainder. Stripping happens regardless of whether any block decoded.
// Empty or too-short results are replaced by FallbackReply so the user
// always receives something readable.
func Prose(raw string) string {
	clean := strings.TrimSpace(stripRE.ReplaceAllString(raw, ""))
	if len(clean) < minProseLength {
		return FallbackReply
	}
	return clean
}

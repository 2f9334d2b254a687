package session

import "time"

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TranscriptCap bounds the number of transcript entries kept in a session.
// Older entries are dropped FIFO on every append.
const TranscriptCap = 20

// Entry is one transcript line held in the session.
type Entry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Coordinates is a latitude/longitude pair shared by the customer.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Item is one line of an order snapshot.
type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// OrderSnapshot is the compact view of an order kept in session state so the
// model can refer back to it in later turns.
type OrderSnapshot struct {
	ID          int64      `json:"id"`
	Items       []Item     `json:"items"`
	Total       float64    `json:"total"`
	OrderType   string     `json:"type,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// State is the ephemeral per-identity session record. Known fields are typed;
// Extra is an open extension map for forward-compatible keys.
type State struct {
	CustomerName    string         `json:"customer_name,omitempty"`
	CurrentOrder    *OrderSnapshot `json:"current_order,omitempty"`
	LastOrder       *OrderSnapshot `json:"last_order,omitempty"`
	PendingAddress  bool           `json:"pending_address,omitempty"`
	PendingLocation bool           `json:"pending_location,omitempty"`
	Location        *Coordinates   `json:"location,omitempty"`
	FeedbackDue     bool           `json:"feedback_due,omitempty"`
	Transcript      []Entry        `json:"transcript,omitempty"`
	LastActivity    time.Time      `json:"last_activity"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// Patch describes a shallow merge over a session. Nil fields leave the
// current value untouched; Extra keys overwrite per key, last writer wins.
type Patch struct {
	CustomerName    *string
	CurrentOrder    *OrderSnapshot
	LastOrder       *OrderSnapshot
	PendingAddress  *bool
	PendingLocation *bool
	Location        *Coordinates
	FeedbackDue     *bool
	Transcript      []Entry // non-nil replaces the whole transcript
	Extra           map[string]any

	// ClearCurrentOrder removes the in-progress order snapshot. Needed
	// because a nil CurrentOrder in a patch means "unchanged".
	ClearCurrentOrder bool
}

// apply merges the patch into the state, key by key.
func (s *State) apply(p Patch) {
	if p.CustomerName != nil {
		s.CustomerName = *p.CustomerName
	}
	if p.CurrentOrder != nil {
		s.CurrentOrder = p.CurrentOrder
	}
	if p.ClearCurrentOrder {
		s.CurrentOrder = nil
	}
	if p.LastOrder != nil {
		s.LastOrder = p.LastOrder
	}
	if p.PendingAddress != nil {
		s.PendingAddress = *p.PendingAddress
	}
	if p.PendingLocation != nil {
		s.PendingLocation = *p.PendingLocation
	}
	if p.Location != nil {
		s.Location = p.Location
	}
	if p.FeedbackDue != nil {
		s.FeedbackDue = *p.FeedbackDue
	}
	if p.Transcript != nil {
		s.Transcript = p.Transcript
	}
	if len(p.Extra) > 0 {
		if s.Extra == nil {
			s.Extra = make(map[string]any, len(p.Extra))
		}
		for k, v := range p.Extra {
			s.Extra[k] = v
		}
	}
}

// appendEntry adds a transcript entry and enforces the cap, dropping the
// oldest entries first.
func (s *State) appendEntry(role, text string, now time.Time) {
	s.Transcript = append(s.Transcript, Entry{Role: role, Text: text, Timestamp: now})
	if len(s.Transcript) > TranscriptCap {
		s.Transcript = s.Transcript[len(s.Transcript)-TranscriptCap:]
	}
}

// Bool and String build pointer fields for a Patch.
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }

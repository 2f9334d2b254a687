// Package store defines the persistent relational store consumed by the
// conversation engine.
package store

import "time"

// OrderType is how the customer receives the order.
type OrderType string

const (
	OrderDineIn   OrderType = "dine_in"
	OrderTakeaway OrderType = "takeaway"
	OrderDelivery OrderType = "delivery"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	switch t {
	case OrderDineIn, OrderTakeaway, OrderDelivery:
		return true
	}
	return false
}

// OrderStatus is the kitchen-side lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// Customer is one end user keyed by phone number.
type Customer struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name,omitempty"`
	Address     string    `json:"address,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// Order is a persisted order. Orders are immutable except for status,
// completion and feedback fields.
type Order struct {
	ID                int64       `json:"id"`
	CustomerID        int64       `json:"customer_id"`
	OrderType         OrderType   `json:"order_type"`
	Status            OrderStatus `json:"status"`
	Items             []OrderItem `json:"items"`
	TotalPrice        float64     `json:"total_price"`
	DeliveryAddress   string      `json:"delivery_address,omitempty"`
	DeliveryLatitude  *float64    `json:"delivery_latitude,omitempty"`
	DeliveryLongitude *float64    `json:"delivery_longitude,omitempty"`
	EstimatedReadyAt  *time.Time  `json:"estimated_completion_time,omitempty"`
	CompletedAt       *time.Time  `json:"completed_at,omitempty"`
	FeedbackRequested bool        `json:"feedback_requested"`
	Feedback          string      `json:"feedback,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Complaint is a persisted customer complaint.
type Complaint struct {
	ID          int64      `json:"id"`
	CustomerID  int64      `json:"customer_id"`
	Description string     `json:"description"`
	Status      string     `json:"status"` // open, in_progress, resolved
	Resolution  string     `json:"resolution,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Reservation is a persisted table reservation.
type Reservation struct {
	ID              int64     `json:"id"`
	CustomerID      int64     `json:"customer_id"`
	ReservationDate time.Time `json:"reservation_date"`
	NumberOfPeople  int       `json:"number_of_people"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	Status          string    `json:"status"` // pending, confirmed, cancelled
	CreatedAt       time.Time `json:"created_at"`
}

// ConversationEntry is one immutable turn of persisted history. Assistant
// entries additionally carry the exact prompt sent and its token cost.
type ConversationEntry struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	Role         string    `json:"role"` // user or assistant
	Message      string    `json:"message"`
	PromptSent   string    `json:"prompt_sent,omitempty"`
	TokensInput  int       `json:"tokens_input,omitempty"`
	TokensOutput int       `json:"tokens_output,omitempty"`
	CostPKR      float64   `json:"cost_pkr,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// MenuItem is one catalog entry.
type MenuItem struct {
	ID           int64   `json:"id"`
	Category     string  `json:"category"`
	ItemName     string  `json:"item_name"`
	Price        float64 `json:"price"`
	PriceWithTax float64 `json:"price_with_tax"`
	Description  string  `json:"description,omitempty"`
	Options      string  `json:"options,omitempty"`
	Synonyms     string  `json:"synonyms,omitempty"`
	Serving      float64 `json:"serving,omitempty"`
}

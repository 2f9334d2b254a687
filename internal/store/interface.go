package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// CustomerPatch updates a subset of customer attributes. Nil fields are left
// untouched.
type CustomerPatch struct {
	Name      *string
	Address   *string
	Latitude  *float64
	Longitude *float64
}

// Store provides access to persisted customers, orders, complaints,
// reservations, conversation history and the menu catalog. The engine never
// issues raw queries, only these operations.
type Store interface {
	// GetOrCreateCustomer looks a customer up by phone number, creating a
	// bare record on first contact.
	GetOrCreateCustomer(ctx context.Context, phoneNumber string) (*Customer, error)

	// UpdateCustomer patches customer attributes and bumps UpdatedAt.
	UpdateCustomer(ctx context.Context, customerID int64, patch CustomerPatch) (*Customer, error)

	// CreateOrder persists a new order and returns it with its ID set.
	CreateOrder(ctx context.Context, order *Order) (*Order, error)

	// GetOrder retrieves an order by ID.
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	// UpdateOrderStatus moves an order through its lifecycle, stamping
	// CompletedAt when it reaches completed.
	UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) (*Order, error)

	// LastOrder returns the customer's most recent order, or nil.
	LastOrder(ctx context.Context, customerID int64) (*Order, error)

	// SaveOrderFeedback attaches feedback text to an order.
	SaveOrderFeedback(ctx context.Context, orderID int64, feedback string) error

	// MarkFeedbackRequested records that feedback was asked for.
	MarkFeedbackRequested(ctx context.Context, orderID int64) error

	// CreateComplaint persists a new complaint with status open.
	CreateComplaint(ctx context.Context, customerID int64, description string) (*Complaint, error)

	// CreateReservation persists a new reservation with status pending.
	CreateReservation(ctx context.Context, reservation *Reservation) (*Reservation, error)

	// SaveConversation appends one immutable history entry.
	SaveConversation(ctx context.Context, entry *ConversationEntry) error

	// RecentConversations returns up to limit entries for a customer,
	// oldest first.
	RecentConversations(ctx context.Context, customerID int64, limit int) ([]ConversationEntry, error)

	// MenuItems returns the full catalog.
	MenuItems(ctx context.Context) ([]MenuItem, error)

	// Close releases any resources held by the store.
	Close() error
}

// Package memory implements store.Store in process memory. Used for tests
// and local development without a Supabase project.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mu            sync.Mutex
	nextID        int64
	customers     map[int64]*store.Customer
	orders        map[int64]*store.Order
	complaints    map[int64]*store.Complaint
	reservations  map[int64]*store.Reservation
	conversations []store.ConversationEntry
	menu          []store.MenuItem
	now           func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		nextID:       1,
		customers:    make(map[int64]*store.Customer),
		orders:       make(map[int64]*store.Order),
		complaints:   make(map[int64]*store.Complaint),
		reservations: make(map[int64]*store.Reservation),
		now:          time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetMenu seeds the catalog.
func (s *Store) SetMenu(items []store.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = items
}

// SeedOrder inserts an order directly, bypassing CreateOrder. Used by tests
// to arrange completed orders.
func (s *Store) SeedOrder(order store.Order) *store.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.nextID
		s.nextID++
	}
	copied := order
	s.orders[copied.ID] = &copied
	return &copied
}

// GetOrCreateCustomer implements store.Store.
func (s *Store) GetOrCreateCustomer(ctx context.Context, phoneNumber string) (*store.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.customers {
		if c.PhoneNumber == phoneNumber {
			copied := *c
			return &copied, nil
		}
	}

	now := s.now()
	c := &store.Customer{
		ID:          s.nextID,
		PhoneNumber: phoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.customers[c.ID] = c
	copied := *c
	return &copied, nil
}

// UpdateCustomer implements store.Store.
func (s *Store) UpdateCustomer(ctx context.Context, customerID int64, patch store.CustomerPatch) (*store.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[customerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Address != nil {
		c.Address = *patch.Address
	}
	if patch.Latitude != nil {
		c.Latitude = patch.Latitude
	}
	if patch.Longitude != nil {
		c.Longitude = patch.Longitude
	}
	c.UpdatedAt = s.now()
	copied := *c
	return &copied, nil
}

// CreateOrder implements store.Store.
func (s *Store) CreateOrder(ctx context.Context, order *store.Order) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	copied := *order
	copied.ID = s.nextID
	s.nextID++
	copied.CreatedAt = now
	copied.UpdatedAt = now
	s.orders[copied.ID] = &copied

	result := copied
	return &result, nil
}

// GetOrder implements store.Store.
func (s *Store) GetOrder(ctx context.Context, orderID int64) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

// UpdateOrderStatus implements store.Store.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status store.OrderStatus) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := s.now()
	o.Status = status
	o.UpdatedAt = now
	if status == store.StatusCompleted {
		o.CompletedAt = &now
	}
	copied := *o
	return &copied, nil
}

// LastOrder implements store.Store.
func (s *Store) LastOrder(ctx context.Context, customerID int64) (*store.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []*store.Order
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	if len(orders) == 0 {
		return nil, nil
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	copied := *orders[0]
	return &copied, nil
}

// SaveOrderFeedback implements store.Store.
func (s *Store) SaveOrderFeedback(ctx context.Context, orderID int64, feedback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.Feedback = feedback
	o.UpdatedAt = s.now()
	return nil
}

// MarkFeedbackRequested implements store.Store.
func (s *Store) MarkFeedbackRequested(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.FeedbackRequested = true
	o.UpdatedAt = s.now()
	return nil
}

// CreateComplaint implements store.Store.
func (s *Store) CreateComplaint(ctx context.Context, customerID int64, description string) (*store.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &store.Complaint{
		ID:          s.nextID,
		CustomerID:  customerID,
		Description: description,
		Status:      "open",
		CreatedAt:   s.now(),
	}
	s.nextID++
	s.complaints[c.ID] = c
	copied := *c
	return &copied, nil
}

// CreateReservation implements store.Store.
func (s *Store) CreateReservation(ctx context.Context, reservation *store.Reservation) (*store.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *reservation
	copied.ID = s.nextID
	s.nextID++
	copied.Status = "pending"
	copied.CreatedAt = s.now()
	s.reservations[copied.ID] = &copied

	result := copied
	return &result, nil
}

// SaveConversation implements store.Store.
func (s *Store) SaveConversation(ctx context.Context, entry *store.ConversationEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	copied.ID = s.nextID
	s.nextID++
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = s.now()
	}
	s.conversations = append(s.conversations, copied)
	return nil
}

// RecentConversations implements store.Store.
func (s *Store) RecentConversations(ctx context.Context, customerID int64, limit int) ([]store.ConversationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []store.ConversationEntry
	for _, e := range s.conversations {
		if e.CustomerID == customerID {
			entries = append(entries, e)
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// MenuItems implements store.Store.
func (s *Store) MenuItems(ctx context.Context) ([]store.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]store.MenuItem(nil), s.menu...), nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}

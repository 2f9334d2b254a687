// Package supabase implements store.Store on a Supabase-hosted Postgres
// using the PostgREST API.
package supabase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
)

// Config holds Supabase connection configuration.
type Config struct {
	URL     string
	APIKey  string
	MenuTTL time.Duration // menu read-through cache lifetime, default 5 minutes
}

// Client implements store.Store using Supabase.
type Client struct {
	client  *supabase.Client
	menuTTL time.Duration

	mu          sync.RWMutex
	menu        []store.MenuItem
	menuExpires time.Time
}

// New creates a new Supabase-backed store.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}
	if cfg.MenuTTL == 0 {
		cfg.MenuTTL = 5 * time.Minute
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		client:  client,
		menuTTL: cfg.MenuTTL,
	}, nil
}

// GetOrCreateCustomer implements store.Store.
func (c *Client) GetOrCreateCustomer(ctx context.Context, phoneNumber string) (*store.Customer, error) {
	var customers []store.Customer
	_, err := c.client.From("customers").
		Select("*", "", false).
		Eq("phone_number", phoneNumber).
		ExecuteTo(&customers)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	if len(customers) > 0 {
		return &customers[0], nil
	}

	row := map[string]any{"phone_number": phoneNumber}
	var created []store.Customer
	_, err = c.client.From("customers").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("customer insert returned no rows")
	}
	return &created[0], nil
}

// UpdateCustomer implements store.Store.
func (c *Client) UpdateCustomer(ctx context.Context, customerID int64, patch store.CustomerPatch) (*store.Customer, error) {
	row := map[string]any{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		row["name"] = *patch.Name
	}
	if patch.Address != nil {
		row["address"] = *patch.Address
	}
	if patch.Latitude != nil {
		row["latitude"] = *patch.Latitude
	}
	if patch.Longitude != nil {
		row["longitude"] = *patch.Longitude
	}

	var updated []store.Customer
	_, err := c.client.From("customers").
		Update(row, "representation", "").
		Eq("id", formatID(customerID)).
		ExecuteTo(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	if len(updated) == 0 {
		return nil, store.ErrNotFound
	}
	return &updated[0], nil
}

// CreateOrder implements store.Store.
func (c *Client) CreateOrder(ctx context.Context, order *store.Order) (*store.Order, error) {
	row := map[string]any{
		"customer_id": order.CustomerID,
		"order_type":  order.OrderType,
		"status":      order.Status,
		"items":       order.Items,
		"total_price": order.TotalPrice,
	}
	if order.DeliveryAddress != "" {
		row["delivery_address"] = order.DeliveryAddress
	}
	if order.DeliveryLatitude != nil {
		row["delivery_latitude"] = *order.DeliveryLatitude
	}
	if order.DeliveryLongitude != nil {
		row["delivery_longitude"] = *order.DeliveryLongitude
	}
	if order.EstimatedReadyAt != nil {
		row["estimated_completion_time"] = order.EstimatedReadyAt.UTC()
	}

	var created []store.Order
	_, err := c.client.From("orders").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("order insert returned no rows")
	}
	return &created[0], nil
}

// GetOrder implements store.Store.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*store.Order, error) {
	var orders []store.Order
	_, err := c.client.From("orders").
		Select("*", "", false).
		Eq("id", formatID(orderID)).
		ExecuteTo(&orders)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if len(orders) == 0 {
		return nil, store.ErrNotFound
	}
	return &orders[0], nil
}

// UpdateOrderStatus implements store.Store.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status store.OrderStatus) (*store.Order, error) {
	row := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status == store.StatusCompleted {
		row["completed_at"] = time.Now().UTC()
	}

	var updated []store.Order
	_, err := c.client.From("orders").
		Update(row, "representation", "").
		Eq("id", formatID(orderID)).
		ExecuteTo(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if len(updated) == 0 {
		return nil, store.ErrNotFound
	}
	return &updated[0], nil
}

// LastOrder implements store.Store.
func (c *Client) LastOrder(ctx context.Context, customerID int64) (*store.Order, error) {
	var orders []store.Order
	_, err := c.client.From("orders").
		Select("*", "", false).
		Eq("customer_id", formatID(customerID)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		ExecuteTo(&orders)
	if err != nil {
		return nil, fmt.Errorf("failed to get last order: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

// SaveOrderFeedback implements store.Store.
func (c *Client) SaveOrderFeedback(ctx context.Context, orderID int64, feedback string) error {
	row := map[string]any{
		"feedback":   feedback,
		"updated_at": time.Now().UTC(),
	}
	var updated []store.Order
	_, err := c.client.From("orders").
		Update(row, "representation", "").
		Eq("id", formatID(orderID)).
		ExecuteTo(&updated)
	if err != nil {
		return fmt.Errorf("failed to save order feedback: %w", err)
	}
	if len(updated) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkFeedbackRequested implements store.Store.
func (c *Client) MarkFeedbackRequested(ctx context.Context, orderID int64) error {
	row := map[string]any{
		"feedback_requested": true,
		"updated_at":         time.Now().UTC(),
	}
	var updated []store.Order
	_, err := c.client.From("orders").
		Update(row, "representation", "").
		Eq("id", formatID(orderID)).
		ExecuteTo(&updated)
	if err != nil {
		return fmt.Errorf("failed to mark feedback requested: %w", err)
	}
	if len(updated) == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CreateComplaint implements store.Store.
func (c *Client) CreateComplaint(ctx context.Context, customerID int64, description string) (*store.Complaint, error) {
	row := map[string]any{
		"customer_id": customerID,
		"description": description,
		"status":      "open",
	}
	var created []store.Complaint
	_, err := c.client.From("complaints").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("complaint insert returned no rows")
	}
	return &created[0], nil
}

// CreateReservation implements store.Store.
func (c *Client) CreateReservation(ctx context.Context, reservation *store.Reservation) (*store.Reservation, error) {
	row := map[string]any{
		"customer_id":      reservation.CustomerID,
		"reservation_date": reservation.ReservationDate.UTC(),
		"number_of_people": reservation.NumberOfPeople,
		"status":           "pending",
	}
	if reservation.SpecialRequests != "" {
		row["special_requests"] = reservation.SpecialRequests
	}

	var created []store.Reservation
	_, err := c.client.From("reservations").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("reservation insert returned no rows")
	}
	return &created[0], nil
}

// SaveConversation implements store.Store.
func (c *Client) SaveConversation(ctx context.Context, entry *store.ConversationEntry) error {
	row := map[string]any{
		"customer_id": entry.CustomerID,
		"role":        entry.Role,
		"message":     entry.Message,
	}
	if entry.PromptSent != "" {
		row["prompt_sent"] = entry.PromptSent
		row["tokens_input"] = entry.TokensInput
		row["tokens_output"] = entry.TokensOutput
		row["cost_pkr"] = entry.CostPKR
	}

	var created []store.ConversationEntry
	_, err := c.client.From("conversation_history").
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return fmt.Errorf("failed to save conversation entry: %w", err)
	}
	return nil
}

// RecentConversations implements store.Store.
func (c *Client) RecentConversations(ctx context.Context, customerID int64, limit int) ([]store.ConversationEntry, error) {
	var entries []store.ConversationEntry
	_, err := c.client.From("conversation_history").
		Select("*", "", false).
		Eq("customer_id", formatID(customerID)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&entries)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}

	// Newest-first from the query; callers want oldest-first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// MenuItems implements store.Store. Results are cached briefly: the menu is
// fetched on every turn but changes rarely.
func (c *Client) MenuItems(ctx context.Context) ([]store.MenuItem, error) {
	c.mu.RLock()
	if c.menu != nil && time.Now().Before(c.menuExpires) {
		items := c.menu
		c.mu.RUnlock()
		return items, nil
	}
	c.mu.RUnlock()

	var items []store.MenuItem
	_, err := c.client.From("menu_items").
		Select("*", "", false).
		ExecuteTo(&items)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}

	c.mu.Lock()
	c.menu = items
	c.menuExpires = time.Now().Add(c.menuTTL)
	c.mu.Unlock()

	return items, nil
}

// Close implements store.Store.
func (c *Client) Close() error {
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammaddar1993/restaurant-chatbot/internal/action"
	"github.com/hammaddar1993/restaurant-chatbot/internal/session"
	"github.com/hammaddar1993/restaurant-chatbot/internal/store"
)

// Per-type preparation durations used to estimate order completion.
var prepTimes = map[store.OrderType]time.Duration{
	store.OrderDineIn:   20 * time.Minute,
	store.OrderTakeaway: 15 * time.Minute,
	store.OrderDelivery: 45 * time.Minute,
}

var errMissingFields = errors.New("action missing required fields")

// dispatch routes one decoded command to its domain operation. At most one
// command runs per turn. Errors are reported to the caller, which logs them
// and continues the turn; a failed side effect never blocks the reply.
func (e *Engine) dispatch(ctx context.Context, cmd *action.Command, customer *store.Customer, state *session.State) error {
	switch cmd.Type {
	case action.TypeCreateOrder:
		return e.dispatchCreateOrder(ctx, cmd.CreateOrder, customer, state)
	case action.TypeCreateComplaint:
		return e.dispatchCreateComplaint(ctx, cmd.CreateComplaint, customer)
	case action.TypeCreateReservation:
		return e.dispatchCreateReservation(ctx, cmd.CreateReservation, customer)
	case action.TypeUpdateCustomerInfo:
		return e.dispatchUpdateCustomer(ctx, cmd.UpdateCustomer, customer)
	case action.TypeSaveFeedback:
		return e.dispatchSaveFeedback(ctx, cmd.SaveFeedback, customer)
	default:
		return fmt.Errorf("unhandled action type %q", cmd.Type)
	}
}

func (e *Engine) dispatchCreateOrder(ctx context.Context, payload *action.CreateOrderPayload, customer *store.Customer, state *session.State) error {
	orderType := store.OrderType(payload.OrderType)
	if !orderType.Valid() {
		orderType = store.OrderDineIn
	}

	items := make([]store.OrderItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, store.OrderItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	now := e.now()
	eta := now.Add(prepTimes[orderType])
	order := &store.Order{
		CustomerID:       customer.ID,
		OrderType:        orderType,
		Status:           store.StatusPending,
		Items:            items,
		TotalPrice:       payload.TotalPrice,
		EstimatedReadyAt: &eta,
	}

	if orderType == store.OrderDelivery {
		// Fallback chain: explicit value in the command, then the
		// session's last known location, then the stored profile.
		order.DeliveryAddress = payload.Address
		if order.DeliveryAddress == "" {
			order.DeliveryAddress = customer.Address
		}
		order.DeliveryLatitude = payload.Latitude
		order.DeliveryLongitude = payload.Longitude
		if order.DeliveryLatitude == nil && state != nil && state.Location != nil {
			order.DeliveryLatitude = &state.Location.Latitude
			order.DeliveryLongitude = &state.Location.Longitude
		}
		if order.DeliveryLatitude == nil {
			order.DeliveryLatitude = customer.Latitude
			order.DeliveryLongitude = customer.Longitude
		}
	}

	created, err := e.store.CreateOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	snapshotItems := make([]session.Item, 0, len(items))
	for _, item := range items {
		snapshotItems = append(snapshotItems, session.Item{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	createdAt := created.CreatedAt
	_, err = e.sessions.Update(ctx, customer.PhoneNumber, session.Patch{
		ClearCurrentOrder: true,
		LastOrder: &session.OrderSnapshot{
			ID:        created.ID,
			Items:     snapshotItems,
			Total:     created.TotalPrice,
			OrderType: string(created.OrderType),
			CreatedAt: &createdAt,
		},
	})
	if err != nil {
		return fmt.Errorf("update session after order: %w", err)
	}
	return nil
}

func (e *Engine) dispatchCreateComplaint(ctx context.Context, payload *action.CreateComplaintPayload, customer *store.Customer) error {
	if payload.Description == "" {
		return fmt.Errorf("create_complaint: %w", errMissingFields)
	}
	if _, err := e.store.CreateComplaint(ctx, customer.ID, payload.Description); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (e *Engine) dispatchCreateReservation(ctx context.Context, payload *action.CreateReservationPayload, customer *store.Customer) error {
	date, err := parseReservationDate(payload.ReservationDate)
	if err != nil {
		return fmt.Errorf("create_reservation: %w", err)
	}
	_, err = e.store.CreateReservation(ctx, &store.Reservation{
		CustomerID:      customer.ID,
		ReservationDate: date,
		NumberOfPeople:  payload.NumberOfPeople,
		SpecialRequests: payload.SpecialRequests,
	})
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (e *Engine) dispatchUpdateCustomer(ctx context.Context, payload *action.UpdateCustomerPayload, customer *store.Customer) error {
	patch := store.CustomerPatch{}
	if payload.Name != "" {
		patch.Name = &payload.Name
	}
	if payload.Address != "" {
		patch.Address = &payload.Address
	}
	if patch.Name == nil && patch.Address == nil {
		return fmt.Errorf("update_customer_info: %w", errMissingFields)
	}
	if _, err := e.store.UpdateCustomer(ctx, customer.ID, patch); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (e *Engine) dispatchSaveFeedback(ctx context.Context, payload *action.SaveFeedbackPayload, customer *store.Customer) error {
	if payload.OrderID == 0 || payload.Feedback == "" {
		return fmt.Errorf("save_feedback: %w", errMissingFields)
	}
	if err := e.store.SaveOrderFeedback(ctx, payload.OrderID, payload.Feedback); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	if _, err := e.sessions.Update(ctx, customer.PhoneNumber, session.Patch{
		FeedbackDue: session.Bool(false),
	}); err != nil {
		return fmt.Errorf("clear feedback flag: %w", err)
	}
	return nil
}

// Reservation timestamps arrive as free-form model output; accept the common
// ISO shapes.
var reservationLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseReservationDate(s string) (time.Time, error) {
	for _, layout := range reservationLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable reservation date %q", s)
}

// Package action decodes structured commands embedded by the generative
// backend in its free-text output, and cleans that output for the user.
package action

// Type tags the command variants the model may emit.
type Type string

const (
	TypeCreateOrder        Type = "create_order"
	TypeCreateComplaint    Type = "create_complaint"
	TypeCreateReservation  Type = "create_reservation"
	TypeUpdateCustomerInfo Type = "update_customer_info"
	TypeSaveFeedback       Type = "save_feedback"
)

// Command is one decoded action. Exactly one payload field matching Type is
// populated. Commands are ephemeral: they live only for the turn that
// produced them.
type Command struct {
	Type Type

	CreateOrder       *CreateOrderPayload
	CreateComplaint   *CreateComplaintPayload
	CreateReservation *CreateReservationPayload
	UpdateCustomer    *UpdateCustomerPayload
	SaveFeedback      *SaveFeedbackPayload
}

// OrderItem is one ordered line as emitted by the model.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// CreateOrderPayload carries a new order. Address and coordinates are only
// meaningful for delivery orders and may be omitted; the dispatcher falls
// back to session and profile values.
type CreateOrderPayload struct {
	OrderType  string      `json:"order_type"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"total_price"`
	Address    string      `json:"address,omitempty"`
	Latitude   *float64    `json:"latitude,omitempty"`
	Longitude  *float64    `json:"longitude,omitempty"`
}

// CreateComplaintPayload carries a new complaint.
type CreateComplaintPayload struct {
	Description string `json:"description"`
}

// CreateReservationPayload carries a new reservation. NumberOfPeople
// defaults to 2 when the model omits it.
type CreateReservationPayload struct {
	ReservationDate string `json:"reservation_date"`
	NumberOfPeople  int    `json:"number_of_people"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// UpdateCustomerPayload patches customer attributes. Either field may be
// empty.
type UpdateCustomerPayload struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// SaveFeedbackPayload attaches feedback to an order.
type SaveFeedbackPayload struct {
	OrderID  int64  `json:"order_id"`
	Feedback string `json:"feedback"`
}

package domain

import "time"

const (
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"

	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// Order is written once the payment gateway confirms a checkout session.
// Line prices are frozen at order time.
type Order struct {
	ID               string          `json:"id"`
	CustomerID       *string         `json:"customerId,omitempty"`
	Status           string          `json:"status"`
	TotalCents       int64           `json:"totalCents"`
	Currency         string          `json:"currency"`
	PaymentSessionID string          `json:"paymentSessionId,omitempty"`
	PaymentStatus    string          `json:"paymentStatus"`
	Contact          CustomerDetails `json:"contact"`
	CreatedAt        time.Time       `json:"createdAt"`
	Items            []OrderItem     `json:"items,omitempty"`
}

type OrderItem struct {
	ID             string `json:"id"`
	OrderID        string `json:"orderId"`
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int64  `json:"quantity"`
}

// Package notify is the engine's outbound messaging edge. Delivery is
// best-effort: a failed publish is logged by the caller and never rolls
// back the state transition that triggered it.
package notify

import "context"

// Channel is a delivery medium for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

// Category groups notifications for routing and client-side filtering.
type Category string

const (
	CategoryReservation Category = "reservation"
	CategorySale        Category = "sale"
	CategoryOffer       Category = "offer"
	CategoryAllocation  Category = "allocation"
	CategoryPaymentPlan Category = "payment_plan"
)

// Notification is the message handed to the dispatcher.
type Notification struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	Category Category  `json:"category"`
	Channels []Channel `json:"channels"`
}

// Dispatcher publishes notifications for asynchronous delivery.
type Dispatcher interface {
	Publish(ctx context.Context, n Notification) error
}

// Nop discards every notification. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Notification) error { return nil }

package model

import (
	"math"
	"time"
)

// OrderStatus describes the fulfillment axis of an order lifecycle.
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// PaymentStatus describes the payment axis, independent of fulfillment.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// fulfillmentTransitions lists the allowed next statuses per current status.
var fulfillmentTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:     {OrderStatusAccepted, OrderStatusRejected},
	OrderStatusAccepted:   {OrderStatusInProgress},
	OrderStatusInProgress: {OrderStatusDelivered},
	OrderStatusRejected:   {},
	OrderStatusDelivered:  {},
}

// ValidOrderStatus reports whether s is a known fulfillment status.
func ValidOrderStatus(s OrderStatus) bool {
	_, ok := fulfillmentTransitions[s]
	return ok
}

// CanTransition reports whether the fulfillment axis may move from one
// status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range fulfillmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a buyer's purchase of a meal. Reference is an opaque code
// shared with the checkout provider; CheckoutSessionID is set once a
// checkout session has been created for the order.
type Order struct {
	ID                int64
	Reference         string
	BuyerID           int64
	BuyerEmail        string
	ChefID            int64
	MealID            int64
	MealName          string
	Quantity          int
	UnitPrice         float64
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	CheckoutSessionID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AmountMinorUnits converts the order total into integer minor currency
// units, flooring to the nearest minor unit so fractional cents never
// reach the provider.
func (o Order) AmountMinorUnits() int64 {
	return int64(math.Floor(o.UnitPrice * float64(o.Quantity) * 100))
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus describes the lifecycle of a placed order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted, OrderStatusCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an operator may move an order from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a customer order header. Total is in whole currency units.
type Order struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerPhone string
	Total         int64
	Status        OrderStatus
	DailyNumber   *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []OrderLine
}

// ShortID is the customer-facing reference: the last eight characters of the ID.
func (o Order) ShortID() string {
	s := o.ID.String()
	return s[len(s)-8:]
}

// NewOrder carries the fields needed to insert an order header.
type NewOrder struct {
	CustomerName  string
	CustomerPhone string
	Total         int64
	DailyNumber   *int
}

// OrderLine is one menu item of an order.
type OrderLine struct {
	OrderID    uuid.UUID
	MenuItemID string
	NameFr     string
	NameAr     string
	Quantity   int
	UnitPrice  int64
}

// Subtotal returns quantity multiplied by unit price.
func (l OrderLine) Subtotal() int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// OrderRequest is a customer submission as received, before validation.
type OrderRequest struct {
	CustomerName  string
	CustomerPhone string
	Lines         []OrderLine
	ClaimedTotal  int64
}

// OrderReceipt acknowledges an accepted order.
type OrderReceipt struct {
	OrderID     uuid.UUID
	DailyNumber *int
}

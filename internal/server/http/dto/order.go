package dto

import "time"

// OrderItemRequest is one cart line as sent by the storefront.
type OrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	ItemNameFr string `json:"item_name_fr"`
	ItemNameAr string `json:"item_name_ar"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

// SubmitOrderRequest is the POST /api/orders payload.
type SubmitOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Items         []OrderItemRequest `json:"items"`
	TotalAmount   int64              `json:"total_amount"`
}

// SubmitOrderResponse reports the outcome of a submission.
type SubmitOrderResponse struct {
	Success          bool   `json:"success"`
	OrderID          string `json:"order_id,omitempty"`
	DailyOrderNumber *int   `json:"daily_order_number,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// OrderItemResponse is one stored order line.
type OrderItemResponse struct {
	MenuItemID string `json:"menu_item_id"`
	ItemNameFr string `json:"item_name_fr"`
	ItemNameAr string `json:"item_name_ar,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	Subtotal   int64  `json:"subtotal"`
}

// OrderResponse is an order with its lines.
type OrderResponse struct {
	ID                   string              `json:"id"`
	CustomerName         string              `json:"customer_name"`
	CustomerPhone        string              `json:"customer_phone"`
	CustomerPhoneDisplay string              `json:"customer_phone_display"`
	TotalAmount          int64               `json:"total_amount"`
	Status               string              `json:"status"`
	DailyOrderNumber     *int                `json:"daily_order_number,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
	Items                []OrderItemResponse `json:"items"`
}

// StatusUpdateRequest is the PATCH /api/staff/orders/:id/status payload.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

package dto

import "time"

// NotificationResponse is one entry of an order's message audit trail.
type NotificationResponse struct {
	ID                int64      `json:"id"`
	RecipientPhone    string     `json:"recipient_phone"`
	Kind              string     `json:"kind"`
	TemplateName      string     `json:"template_name,omitempty"`
	Status            string     `json:"status"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	ErrorCode         string     `json:"error_code,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	Attempt           int        `json:"attempt"`
	RetryOf           *int64     `json:"retry_of,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
}

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status string `json:"status"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageKind selects between free-form and pre-approved template messages.
type MessageKind string

const (
	MessageKindTemplate MessageKind = "template"
	MessageKindSession  MessageKind = "session"
)

// DeliveryStatus tracks a single delivery attempt.
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

// NotificationRecord is the audit entry of one outbound message attempt.
type NotificationRecord struct {
	ID                int64
	OrderID           *uuid.UUID
	RecipientPhone    string
	Kind              MessageKind
	TemplateName      string
	Content           string
	Status            DeliveryStatus
	ProviderMessageID string
	ErrorCode         string
	ErrorMessage      string
	Attempt           int
	RetryOf           *int64
	CreatedAt         time.Time
	SentAt            *time.Time
}

// DeliveryOutcome is written once the provider has answered.
type DeliveryOutcome struct {
	Status            DeliveryStatus
	ProviderMessageID string
	ErrorCode         string
	ErrorMessage      string
	SentAt            *time.Time
}

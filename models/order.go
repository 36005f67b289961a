package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusCreated  = "created"
	OrderStatusPaid     = "paid"
	OrderStatusFailed   = "failed"
	OrderStatusRefunded = "refunded"
)

// CartItem is a course sitting in a user's cart
type CartItem struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	CourseID primitive.ObjectID `bson:"courseId" json:"courseId"`
	AddedAt  time.Time          `bson:"addedAt" json:"addedAt"`
}

// Order records a checkout attempt against the payment gateway
type Order struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID   `bson:"userId" json:"userId"`
	CourseIDs      []primitive.ObjectID `bson:"courseIds" json:"courseIds"`
	Amount         int64                `bson:"amount" json:"amount"` // minor units
	Currency       string               `bson:"currency" json:"currency"`
	Receipt        string               `bson:"receipt" json:"receipt"`
	GatewayOrderID string               `bson:"gatewayOrderId" json:"gatewayOrderId"`
	PaymentID      string               `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Status         string               `bson:"status" json:"status"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	PaidAt         *time.Time           `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
}

// WebhookEvent stores processed gateway webhook deliveries so retries and
// duplicate deliveries stay idempotent (unique index on eventId).
type WebhookEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	EventID     string             `bson:"eventId" json:"eventId"`
	EventType   string             `bson:"eventType" json:"eventType"`
	Payload     string             `bson:"payload" json:"payload"`
	ProcessedAt time.Time          `bson:"processedAt" json:"processedAt"`
}

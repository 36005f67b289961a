package websocket

import "time"

// Live event types fanned out to admin dashboards
const (
	EventPaymentCaptured   = "payment_captured"
	EventEnrollmentCreated = "enrollment_created"
)

// PaymentCapturedEvent is published right after a gateway signature verifies
type PaymentCapturedEvent struct {
	Type      string    `json:"type"`
	PaymentID string    `json:"paymentId"`
	OrderID   string    `json:"orderId,omitempty"`
	Amount    int64     `json:"amount"` // minor units
	Currency  string    `json:"currency"`
	At        time.Time `json:"at"`
}

// EnrollmentCreatedEvent is published once an enrollment row is written
type EnrollmentCreatedEvent struct {
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	CourseID string    `json:"course_id"`
	OrderID  string    `json:"order_id,omitempty"`
	Price    int64     `json:"price,omitempty"`
	Title    string    `json:"title,omitempty"`
	At       time.Time `json:"at"`
}

// NewPaymentCaptured builds a payment event stamped with the current time
func NewPaymentCaptured(paymentID, orderID string, amount int64, currency string) PaymentCapturedEvent {
	return PaymentCapturedEvent{
		Type:      EventPaymentCaptured,
		PaymentID: paymentID,
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		At:        time.Now().UTC(),
	}
}

// NewEnrollmentCreated builds an enrollment event stamped with the current time
func NewEnrollmentCreated(userID, courseID, orderID string, price int64, title string) EnrollmentCreatedEvent {
	return EnrollmentCreatedEvent{
		Type:     EventEnrollmentCreated,
		UserID:   userID,
		CourseID: courseID,
		OrderID:  orderID,
		Price:    price,
		Title:    title,
		At:       time.Now().UTC(),
	}
}

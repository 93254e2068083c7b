package core

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payment represents a payment domain entity
type Payment struct {
	ID            uuid.UUID
	AppointmentID int64
	Total         float64
	PaymentMethod string
	CustomerEmail string
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPending checks if payment is in pending status
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsPaid checks if payment has already been settled
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// Validate checks the fields every stored payment must carry
func (p *Payment) Validate() error {
	if p.AppointmentID <= 0 {
		return invalidPayment("appointment_id must be greater than zero")
	}
	if p.Total <= 0 {
		return invalidPayment("total must be greater than zero")
	}
	if strings.TrimSpace(p.PaymentMethod) == "" {
		return invalidPayment("payment_method is required")
	}
	if !IsEmailAddress(p.CustomerEmail) {
		return invalidPayment("customer_email must be a valid email address")
	}
	switch p.Status {
	case PaymentStatusPending, PaymentStatusPaid:
	default:
		return invalidPayment("status must be pending or paid")
	}
	return nil
}

// IsEmailAddress reports whether s is a bare RFC 5322 address such as a@b.com.
func IsEmailAddress(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

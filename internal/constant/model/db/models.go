package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment status values as stored in the status column
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Payment represents a payment row
type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	AppointmentID int64     `gorm:"not null;index" json:"appointment_id"`
	Total         float64   `gorm:"type:decimal(10,2);not null" json:"total"`
	PaymentMethod string    `gorm:"type:varchar(50);not null" json:"payment_method"`
	CustomerEmail string    `gorm:"type:varchar(255);not null" json:"customer_email"`
	Status        string    `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate fills the ID, status and timestamps left empty by the caller
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate is a GORM hook that runs before updating a record
func (p *Payment) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// IsPending reports whether the payment can still be settled
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

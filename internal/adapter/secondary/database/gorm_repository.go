package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cashflow/notification-relay/internal/constant/model/db"
	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/port/output"
)

// GormPaymentRepository is a secondary adapter that implements PaymentRepository output port
type GormPaymentRepository struct {
	gormDB *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(gormDB *gorm.DB) output.PaymentRepository {
	return &GormPaymentRepository{gormDB: gormDB}
}

// toCore converts db.Payment to core.Payment
func toCore(p *db.Payment) *core.Payment {
	return &core.Payment{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		Total:         p.Total,
		PaymentMethod: p.PaymentMethod,
		CustomerEmail: p.CustomerEmail,
		Status:        core.PaymentStatus(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// fromCore converts core.Payment to db.Payment
func fromCore(p *core.Payment) *db.Payment {
	return &db.Payment{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		Total:         p.Total,
		PaymentMethod: p.PaymentMethod,
		CustomerEmail: p.CustomerEmail,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// notFound maps gorm's missing-row error to the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrPaymentNotFound
	}
	return err
}

// Create creates a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *core.Payment) error {
	dbPayment := fromCore(payment)
	if err := r.gormDB.WithContext(ctx).Create(dbPayment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	// Update core entity with values set by GORM hooks
	payment.ID = dbPayment.ID
	payment.CreatedAt = dbPayment.CreatedAt
	payment.UpdatedAt = dbPayment.UpdatedAt
	return nil
}

// GetByID retrieves a payment by its ID
func (r *GormPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := r.gormDB.WithContext(ctx).Where("id = ?", id).First(&dbPayment).Error; err != nil {
		return nil, notFound(err)
	}
	return toCore(&dbPayment), nil
}

// Update locks the row with SELECT FOR UPDATE, applies the change and saves it
// in one transaction so concurrent pay requests are serialized against it
func (r *GormPaymentRepository) Update(ctx context.Context, id uuid.UUID, apply func(*core.Payment) error) (*core.Payment, error) {
	var dbPayment db.Payment
	err := r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&dbPayment).Error; err != nil {
			return notFound(err)
		}

		payment := toCore(&dbPayment)
		if err := apply(payment); err != nil {
			return err
		}
		payment.ID = dbPayment.ID
		payment.CreatedAt = dbPayment.CreatedAt

		dbPayment = *fromCore(payment)
		if err := tx.Save(&dbPayment).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCore(&dbPayment), nil
}

// MarkPaid atomically settles a payment if it's still pending
// Uses SELECT FOR UPDATE so concurrent requests confirm it at most once
func (r *GormPaymentRepository) MarkPaid(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	var dbPayment db.Payment
	err := r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row and check status using SELECT FOR UPDATE
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&dbPayment).Error; err != nil {
			return notFound(err)
		}

		if !dbPayment.IsPending() {
			return core.ErrPaymentAlreadyPaid
		}

		dbPayment.Status = db.PaymentStatusPaid
		dbPayment.UpdatedAt = time.Now()
		if err := tx.Save(&dbPayment).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCore(&dbPayment), nil
}

// Delete removes a payment and returns the row as it was
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	var dbPayment db.Payment
	err := r.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&dbPayment).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Delete(&db.Payment{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toCore(&dbPayment), nil
}

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/payflow/payment-orchestrator/internal/constant/model/db"
	"github.com/payflow/payment-orchestrator/internal/core"
	"github.com/payflow/payment-orchestrator/internal/port/output"
)

// GormPaymentStore is a secondary adapter that implements the PaymentStore
// output port on Postgres via GORM
type GormPaymentStore struct {
	gormDB *gorm.DB
}

// NewGormPaymentStore creates a new GORM payment store
func NewGormPaymentStore(gormDB *gorm.DB) output.PaymentStore {
	return &GormPaymentStore{gormDB: gormDB}
}

// toCore converts db.Payment to core.Payment
func toCore(p *db.Payment) *core.Payment {
	return &core.Payment{
		ID:                   p.ID,
		Amount:               p.Amount,
		Currency:             core.Currency(p.Currency),
		Status:               core.PaymentStatus(p.Status),
		GatewayTransactionID: p.GatewayTransactionID,
		FailureReason:        p.FailureReason,
		CreatedAt:            p.CreatedAt,
		ProcessedAt:          p.ProcessedAt,
	}
}

// fromCore converts core.Payment to db.Payment
func fromCore(p *core.Payment) *db.Payment {
	return &db.Payment{
		ID:                   p.ID,
		Amount:               p.Amount,
		Currency:             string(p.Currency),
		Status:               string(p.Status),
		GatewayTransactionID: p.GatewayTransactionID,
		FailureReason:        p.FailureReason,
		CreatedAt:            p.CreatedAt,
		ProcessedAt:          p.ProcessedAt,
	}
}

// Save inserts the payment or updates it in place. Updates lock the row with
// SELECT FOR UPDATE and refuse to move a record out of a terminal state, so
// two confirms racing through the service cannot both settle the same payment.
func (s *GormPaymentStore) Save(ctx context.Context, payment *core.Payment) error {
	dbPayment := fromCore(payment)

	return s.gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", payment.ID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(dbPayment).Error; err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to lock payment: %w", err)
		}

		if isTerminal(existing.Status) && existing.Status != dbPayment.Status {
			return fmt.Errorf("payment already settled: status is %s", existing.Status)
		}

		if err := tx.Save(dbPayment).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a payment by its ID
func (s *GormPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := s.gormDB.WithContext(ctx).Where("id = ?", id).First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toCore(&dbPayment), nil
}

func isTerminal(status string) bool {
	switch core.PaymentStatus(status) {
	case core.PaymentStatusCaptured, core.PaymentStatusCancelled, core.PaymentStatusFailed:
		return true
	}
	return false
}

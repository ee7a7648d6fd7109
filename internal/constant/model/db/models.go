package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment represents a payment entity in the database
type Payment struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Amount               float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency             string     `gorm:"type:varchar(3);not null" json:"currency"`
	Status               string     `gorm:"type:varchar(20);not null;index" json:"status"`
	GatewayTransactionID string     `gorm:"type:varchar(255)" json:"gateway_transaction_id"`
	FailureReason        string     `gorm:"type:varchar(512)" json:"failure_reason"`
	CreatedAt            time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	ProcessedAt          *time.Time `json:"processed_at"`
	UpdatedAt            time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate is a GORM hook that runs before creating a record
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
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

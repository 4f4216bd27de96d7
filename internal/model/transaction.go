package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTransaction records a payment made against an approved supply
// request. Rows are immutable once created; the unique index on ApprovalID
// guarantees at most one payment per approval.
type PaymentTransaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApprovalID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"approvalId"`
	Request    *SupplyRequest  `gorm:"foreignKey:ApprovalID" json:"request,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaidAt     time.Time       `gorm:"not null;index" json:"paidAt"`
	RecordedBy *uuid.UUID      `gorm:"type:uuid" json:"recorded_by"`
	Recorder   *User           `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Supply request status constants. PENDING is the only initial state;
// APPROVED and REJECTED are terminal.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// IsTerminalRequestStatus reports whether no further transition is permitted.
func IsTerminalRequestStatus(status string) bool {
	return status == RequestStatusApproved || status == RequestStatusRejected
}

// SupplyRequest is a manager's request to draw stock from the inventory.
// Approving a request deducts the requested quantity from the referenced
// item inside the same database transaction.
type SupplyRequest struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ManagerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"managerId"`
	Manager         *User      `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	ItemID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"itemId"`
	Item            *Item      `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Quantity        int        `gorm:"type:int;not null" json:"quantity"`
	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver        *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item represents a single product in the pharmacy inventory catalog.
// Quantity is only ever reduced through approved supply requests.
type Item struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemName  string          `gorm:"type:varchar(255);not null" json:"itemName"`
	Category  string          `gorm:"type:varchar(100);not null;index" json:"category"`
	Quantity  int             `gorm:"type:int;not null;default:0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unitPrice"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

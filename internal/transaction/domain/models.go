// Package domain contains the persistence model for ingested transactions.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one financial record from an uploaded batch. Records are
// immutable once created; there is no update path.
type Transaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"transaction_id"`
	Timestamp  time.Time       `gorm:"not null;index" json:"timestamp"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency   string          `gorm:"type:varchar(3);not null" json:"currency"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }

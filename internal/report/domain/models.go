// Package domain defines per-entity transaction summaries.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateRange filters a summary to transactions with Start <= timestamp <= End.
// Either both bounds are set or neither is.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// CustomerSummary aggregates every transaction of one customer, with amounts
// converted to the canonical currency and rounded to two decimal places.
type CustomerSummary struct {
	CustomerID              uuid.UUID       `json:"customer_id"`
	TotalAmountPLN          decimal.Decimal `json:"total_amount_pln"`
	TotalUniqueProducts     int             `json:"total_unique_products"`
	EarliestTransactionDate time.Time       `json:"earliest_transaction_date"`
}

// ProductSummary aggregates every transaction of one product.
type ProductSummary struct {
	ProductID            uuid.UUID       `json:"product_id"`
	TotalQuantity        int64           `json:"total_quantity"`
	TotalAmountPLN       decimal.Decimal `json:"total_amount_pln"`
	TotalUniqueCustomers int             `json:"total_unique_customers"`
}

// Service builds summaries on demand from persisted transactions.
type Service interface {
	CustomerSummary(ctx context.Context, customerID string, dr DateRange) (*CustomerSummary, error)
	ProductSummary(ctx context.Context, productID string, dr DateRange) (*ProductSummary, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrNoTransactions      = errors.New("no_transactions")
	ErrIncompleteDateRange = errors.New("incomplete_date_range")
	ErrInvalidDateRange    = errors.New("invalid_date_range")
)

package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	txdomain "github.com/smallbiznis/ledgerline/internal/transaction/domain"
)

const (
	msgInvalidIdentifier   = "invalid identifier"
	msgMalformedTimestamp  = "malformed timestamp"
	msgAmountNotPositive   = "amount must be greater than zero"
	msgInvalidNumber       = "invalid number"
	msgInvalidCurrency     = "currency must be a 3-letter code"
	msgNegativeQuantity    = "quantity cannot be negative"
	msgInvalidInteger      = "invalid integer"
	msgDuplicateIdentifier = "duplicate identifier"
)

// fieldRule validates one raw field and, on success, writes the typed value
// into the transaction under construction. Rules are pure and independent;
// the driver runs every rule and collects every failure.
type fieldRule struct {
	field    string
	validate func(value string, tx *txdomain.Transaction) error
}

var validationRules = []fieldRule{
	{"id", func(value string, tx *txdomain.Transaction) error {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return errors.New(msgInvalidIdentifier)
		}
		tx.ID = id
		return nil
	}},
	{"timestamp", func(value string, tx *txdomain.Transaction) error {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
		if err != nil {
			return errors.New(msgMalformedTimestamp)
		}
		tx.Timestamp = ts
		return nil
	}},
	{"amount", func(value string, tx *txdomain.Transaction) error {
		amount, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return errors.New(msgInvalidNumber)
		}
		if !amount.IsPositive() {
			return errors.New(msgAmountNotPositive)
		}
		tx.Amount = amount
		return nil
	}},
	{"currency", func(value string, tx *txdomain.Transaction) error {
		currency := strings.ToUpper(strings.TrimSpace(value))
		if len(currency) != 3 {
			return errors.New(msgInvalidCurrency)
		}
		tx.Currency = currency
		return nil
	}},
	{"customer_id", func(value string, tx *txdomain.Transaction) error {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return errors.New(msgInvalidIdentifier)
		}
		tx.CustomerID = id
		return nil
	}},
	{"product_id", func(value string, tx *txdomain.Transaction) error {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return errors.New(msgInvalidIdentifier)
		}
		tx.ProductID = id
		return nil
	}},
	{"quantity", func(value string, tx *txdomain.Transaction) error {
		quantity, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return errors.New(msgInvalidInteger)
		}
		if quantity < 0 {
			return errors.New(msgNegativeQuantity)
		}
		tx.Quantity = quantity
		return nil
	}},
}

// ValidateRecord runs every field rule over the raw record. It returns the
// typed transaction when the row is clean, or the accumulated failures keyed
// by field name. Identical input always yields an identical outcome.
func ValidateRecord(record map[string]string) (*txdomain.Transaction, map[string][]string) {
	var tx txdomain.Transaction
	var fieldErrors map[string][]string

	for _, rule := range validationRules {
		if err := rule.validate(record[rule.field], &tx); err != nil {
			if fieldErrors == nil {
				fieldErrors = make(map[string][]string)
			}
			fieldErrors[rule.field] = append(fieldErrors[rule.field], err.Error())
		}
	}

	if fieldErrors != nil {
		return nil, fieldErrors
	}
	return &tx, nil
}

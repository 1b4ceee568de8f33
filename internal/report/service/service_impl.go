package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerline/internal/currency"
	obsmetrics "github.com/smallbiznis/ledgerline/internal/observability/metrics"
	"github.com/smallbiznis/ledgerline/internal/report/domain"
	txdomain "github.com/smallbiznis/ledgerline/internal/transaction/domain"
)

// ServiceParam is the dependencies to create a Service
type ServiceParam struct {
	fx.In
	Log       *zap.Logger
	Repo      txdomain.Repository
	Converter *currency.Converter
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log       *zap.Logger
	repo      txdomain.Repository
	converter *currency.Converter
	metrics   *obsmetrics.Metrics
}

// New creates a new instance Service
func New(p ServiceParam) domain.Service {
	return &Service{
		log:       p.Log.Named("report.service"),
		repo:      p.Repo,
		converter: p.Converter,
		metrics:   p.Metrics,
	}
}

// CustomerSummary aggregates all transactions for a customer. Sums are kept
// at full precision during accumulation and rounded once at the end.
func (s *Service) CustomerSummary(ctx context.Context, customerID string, dr domain.DateRange) (*domain.CustomerSummary, error) {
	id, err := uuid.Parse(customerID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if err := validateDateRange(dr); err != nil {
		return nil, err
	}

	rows, err := s.repo.FindForReport(ctx, txdomain.ReportFilter{
		CustomerID: &id,
		Start:      dr.Start,
		End:        dr.End,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoTransactions
	}

	total := decimal.Zero
	products := make(map[uuid.UUID]struct{})
	for _, tx := range rows {
		total = total.Add(tx.Amount.Mul(s.converter.RateFor(tx.Currency)))
		products[tx.ProductID] = struct{}{}
	}

	if s.metrics != nil {
		s.metrics.RecordReportQuery(ctx, "customer_summary")
	}

	return &domain.CustomerSummary{
		CustomerID:              id,
		TotalAmountPLN:          total.Round(2),
		TotalUniqueProducts:     len(products),
		EarliestTransactionDate: rows[0].Timestamp,
	}, nil
}

// ProductSummary aggregates all transactions for a product.
func (s *Service) ProductSummary(ctx context.Context, productID string, dr domain.DateRange) (*domain.ProductSummary, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if err := validateDateRange(dr); err != nil {
		return nil, err
	}

	rows, err := s.repo.FindForReport(ctx, txdomain.ReportFilter{
		ProductID: &id,
		Start:     dr.Start,
		End:       dr.End,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoTransactions
	}

	total := decimal.Zero
	var quantity int64
	customers := make(map[uuid.UUID]struct{})
	for _, tx := range rows {
		total = total.Add(tx.Amount.Mul(s.converter.RateFor(tx.Currency)))
		quantity += tx.Quantity
		customers[tx.CustomerID] = struct{}{}
	}

	if s.metrics != nil {
		s.metrics.RecordReportQuery(ctx, "product_summary")
	}

	return &domain.ProductSummary{
		ProductID:            id,
		TotalQuantity:        quantity,
		TotalAmountPLN:       total.Round(2),
		TotalUniqueCustomers: len(customers),
	}, nil
}

// validateDateRange rejects half-open or inverted ranges before any query runs.
func validateDateRange(dr domain.DateRange) error {
	if (dr.Start == nil) != (dr.End == nil) {
		return domain.ErrIncompleteDateRange
	}
	if dr.Start != nil && dr.Start.After(*dr.End) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

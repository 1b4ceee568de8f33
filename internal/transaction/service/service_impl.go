package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerline/internal/transaction/domain"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

type ServiceParam struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		log:  p.Log.Named("transaction.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListTransactionRequest) (domain.ListTransactionResponse, error) {
	var filter domain.ListFilter

	customerID, err := parseOptionalUUID(req.CustomerID)
	if err != nil {
		return domain.ListTransactionResponse{}, domain.ErrInvalidID
	}
	filter.CustomerID = customerID

	productID, err := parseOptionalUUID(req.ProductID)
	if err != nil {
		return domain.ListTransactionResponse{}, domain.ErrInvalidID
	}
	filter.ProductID = productID

	page := pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
	}
	if page.PageSize <= 0 {
		page.PageSize = 10
	}

	txs, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return domain.ListTransactionResponse{}, err
	}

	txs, pageInfo := pagination.BuildCursorPageInfo(txs, page.PageSize, func(tx *domain.Transaction) pagination.Cursor {
		return pagination.Cursor{
			ID:        tx.ID.String(),
			CreatedAt: tx.CreatedAt.UTC().Format("2006-01-02 15:04:05.999999999"),
		}
	})

	return domain.ListTransactionResponse{
		PageInfo:     pageInfo,
		Transactions: txs,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTransactionRequest) (*domain.Transaction, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	return tx, nil
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

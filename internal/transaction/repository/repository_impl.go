package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerline/internal/transaction/domain"
	"github.com/smallbiznis/ledgerline/pkg/db"
	"github.com/smallbiznis/ledgerline/pkg/db/option"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

type repo struct {
	db *gorm.DB
}

func Provide(conn *gorm.DB) domain.Repository {
	return &repo{db: conn}
}

func (r *repo) Insert(ctx context.Context, tx *domain.Transaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateID
	}
	return err
}

func (r *repo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tx, nil
}

func (r *repo) List(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	stmt := r.db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *filter.ProductID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *repo) FindForReport(ctx context.Context, filter domain.ReportFilter) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	stmt := r.db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Start != nil {
		stmt = stmt.Where("timestamp >= ?", *filter.Start)
	}
	if filter.End != nil {
		stmt = stmt.Where("timestamp <= ?", *filter.End)
	}
	err := stmt.
		Order("timestamp asc, id asc").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

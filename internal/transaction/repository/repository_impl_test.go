package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerline/internal/transaction/domain"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

func setupRepo(t *testing.T) (domain.Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Transaction{}); err != nil {
		t.Fatal(err)
	}
	return Provide(db), db
}

func newTx(customerID, productID uuid.UUID, ts time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:         uuid.New(),
		Timestamp:  ts,
		Amount:     decimal.RequireFromString("10.00"),
		Currency:   "PLN",
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   1,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	tx := newTx(uuid.New(), uuid.New(), time.Now().UTC())
	assert.NoError(t, repo.Insert(ctx, tx))

	dup := *tx
	err := repo.Insert(ctx, &dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestFindByID(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	tx := newTx(uuid.New(), uuid.New(), time.Now().UTC())
	assert.NoError(t, repo.Insert(ctx, tx))

	got, err := repo.FindByID(ctx, tx.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, tx.ID, got.ID)
		assert.True(t, got.Amount.Equal(tx.Amount))
	}

	missing, err := repo.FindByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestList_FiltersByEntity(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	customerA := uuid.New()
	customerB := uuid.New()
	productX := uuid.New()
	productY := uuid.New()
	now := time.Now().UTC()

	assert.NoError(t, repo.Insert(ctx, newTx(customerA, productX, now)))
	assert.NoError(t, repo.Insert(ctx, newTx(customerA, productY, now)))
	assert.NoError(t, repo.Insert(ctx, newTx(customerB, productX, now)))

	page := pagination.Pagination{PageSize: 10}

	all, err := repo.List(ctx, domain.ListFilter{}, page)
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	byCustomer, err := repo.List(ctx, domain.ListFilter{CustomerID: &customerA}, page)
	assert.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	byProduct, err := repo.List(ctx, domain.ListFilter{ProductID: &productX}, page)
	assert.NoError(t, err)
	assert.Len(t, byProduct, 2)

	both, err := repo.List(ctx, domain.ListFilter{CustomerID: &customerB, ProductID: &productX}, page)
	assert.NoError(t, err)
	assert.Len(t, both, 1)
}

func TestList_Overfetch(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	customerID := uuid.New()
	for i := 0; i < 5; i++ {
		assert.NoError(t, repo.Insert(ctx, newTx(customerID, uuid.New(), time.Now().UTC())))
	}

	// The repository fetches one extra row so the service can detect
	// whether more pages remain.
	txs, err := repo.List(ctx, domain.ListFilter{}, pagination.Pagination{PageSize: 3})
	assert.NoError(t, err)
	assert.Len(t, txs, 4)
}

func TestFindForReport_OrderAndBounds(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	customerID := uuid.New()
	productID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	third := newTx(customerID, productID, base.Add(48*time.Hour))
	first := newTx(customerID, productID, base)
	second := newTx(customerID, productID, base.Add(24*time.Hour))
	for _, tx := range []*domain.Transaction{third, first, second} {
		assert.NoError(t, repo.Insert(ctx, tx))
	}

	rows, err := repo.FindForReport(ctx, domain.ReportFilter{CustomerID: &customerID})
	assert.NoError(t, err)
	if assert.Len(t, rows, 3) {
		assert.Equal(t, first.ID, rows[0].ID)
		assert.Equal(t, second.ID, rows[1].ID)
		assert.Equal(t, third.ID, rows[2].ID)
	}

	start := base.Add(12 * time.Hour)
	end := base.Add(36 * time.Hour)
	bounded, err := repo.FindForReport(ctx, domain.ReportFilter{
		CustomerID: &customerID,
		Start:      &start,
		End:        &end,
	})
	assert.NoError(t, err)
	if assert.Len(t, bounded, 1) {
		assert.Equal(t, second.ID, bounded[0].ID)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerline/internal/transaction/domain"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

// -- Mocks --

type repoMock struct {
	mock.Mock
}

func (m *repoMock) Insert(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *repoMock) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*domain.Transaction), args.Error(1)
}

func (m *repoMock) List(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Transaction, error) {
	args := m.Called(ctx, filter, page)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.([]*domain.Transaction), args.Error(1)
}

func (m *repoMock) FindForReport(ctx context.Context, filter domain.ReportFilter) ([]*domain.Transaction, error) {
	args := m.Called(ctx, filter)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.([]*domain.Transaction), args.Error(1)
}

func newTestService(repo domain.Repository) domain.Service {
	return New(ServiceParam{
		Log:  zap.NewNop(),
		Repo: repo,
	})
}

func makeTxs(n int) []*domain.Transaction {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	txs := make([]*domain.Transaction, n)
	for i := range txs {
		txs[i] = &domain.Transaction{
			ID:        uuid.New(),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return txs
}

// -- Tests --

func TestList_TrimsOverfetchAndSetsToken(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)

	// Over-fetched page: 11 rows for page size 10 means more pages remain.
	txs := makeTxs(11)
	repo.On("List", mock.Anything, domain.ListFilter{}, pagination.Pagination{PageSize: 10}).
		Return(txs, nil)

	resp, err := svc.List(context.Background(), domain.ListTransactionRequest{})
	assert.NoError(t, err)
	assert.Len(t, resp.Transactions, 10)
	assert.True(t, resp.HasMore)
	assert.NotEmpty(t, resp.NextPageToken)

	cursor, err := pagination.DecodeCursor(resp.NextPageToken)
	assert.NoError(t, err)
	assert.Equal(t, txs[9].ID.String(), cursor.ID)
}

func TestList_LastPage(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)

	repo.On("List", mock.Anything, domain.ListFilter{}, pagination.Pagination{PageSize: 10}).
		Return(makeTxs(3), nil)

	resp, err := svc.List(context.Background(), domain.ListTransactionRequest{})
	assert.NoError(t, err)
	assert.Len(t, resp.Transactions, 3)
	assert.False(t, resp.HasMore)
	assert.Empty(t, resp.NextPageToken)
}

func TestList_Filters(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)

	customerID := uuid.New()
	repo.On("List", mock.Anything, mock.MatchedBy(func(f domain.ListFilter) bool {
		return f.CustomerID != nil && *f.CustomerID == customerID && f.ProductID == nil
	}), mock.Anything).Return([]*domain.Transaction{}, nil)

	resp, err := svc.List(context.Background(), domain.ListTransactionRequest{
		CustomerID: customerID.String(),
	})
	assert.NoError(t, err)
	assert.Empty(t, resp.Transactions)
	repo.AssertExpectations(t)
}

func TestList_InvalidFilterID(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), domain.ListTransactionRequest{CustomerID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.List(context.Background(), domain.ListTransactionRequest{ProductID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestGetByID(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)

	id := uuid.New()
	want := &domain.Transaction{ID: id}
	repo.On("FindByID", mock.Anything, id).Return(want, nil)

	got, err := svc.GetByID(context.Background(), domain.GetTransactionRequest{ID: id.String()})
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetByID_Errors(t *testing.T) {
	repo := &repoMock{}
	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), domain.GetTransactionRequest{ID: "nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	missing := uuid.New()
	repo.On("FindByID", mock.Anything, missing).Return(nil, nil)
	_, err = svc.GetByID(context.Background(), domain.GetTransactionRequest{ID: missing.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

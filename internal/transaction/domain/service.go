package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

type ListTransactionRequest struct {
	CustomerID string `form:"customer_id"`
	ProductID  string `form:"product_id"`
	PageToken  string `form:"page_token"`
	PageSize   int    `form:"page_size"`
}

type ListTransactionResponse struct {
	pagination.PageInfo
	Transactions []*Transaction `json:"transactions"`
}

type GetTransactionRequest struct {
	ID string
}

type Service interface {
	List(context.Context, ListTransactionRequest) (ListTransactionResponse, error)
	GetByID(context.Context, GetTransactionRequest) (*Transaction, error)
}

var (
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
	ErrDuplicateID = errors.New("duplicate_id")
)

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

// ListFilter narrows the paginated read path.
type ListFilter struct {
	CustomerID *uuid.UUID
	ProductID  *uuid.UUID
}

// ReportFilter selects the record set a summary is computed over. Start and
// End bound Timestamp inclusively when present.
type ReportFilter struct {
	CustomerID *uuid.UUID
	ProductID  *uuid.UUID
	Start      *time.Time
	End        *time.Time
}

type Repository interface {
	// Insert persists a transaction if its id is absent. A colliding id
	// returns ErrDuplicateID; under concurrent colliding inserts exactly one
	// caller succeeds.
	Insert(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, filter ListFilter, page pagination.Pagination) ([]*Transaction, error)
	// FindForReport returns the filtered set ordered by (timestamp, id) so
	// earliest-timestamp ties resolve deterministically.
	FindForReport(ctx context.Context, filter ReportFilter) ([]*Transaction, error)
}

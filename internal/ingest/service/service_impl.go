package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerline/internal/clock"
	"github.com/smallbiznis/ledgerline/internal/config"
	"github.com/smallbiznis/ledgerline/internal/ingest/domain"
	obsmetrics "github.com/smallbiznis/ledgerline/internal/observability/metrics"
	txdomain "github.com/smallbiznis/ledgerline/internal/transaction/domain"
)

type ServiceParam struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Repo    txdomain.Repository
	Clock   clock.Clock
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	repo    txdomain.Repository
	clock   clock.Clock
	metrics *obsmetrics.Metrics
	workers int
}

func New(p ServiceParam) domain.Service {
	workers := p.Cfg.IngestWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		log:     p.Log.Named("ingest.service"),
		repo:    p.Repo,
		clock:   p.Clock,
		metrics: p.Metrics,
		workers: workers,
	}
}

// rowOutcome is written by exactly one worker per index, so the slice needs
// no locking.
type rowOutcome struct {
	persisted bool
	rowErr    *domain.RowError
	internal  error
}

func (s *Service) Ingest(ctx context.Context, payload []byte) (domain.Result, error) {
	if !utf8.Valid(payload) {
		return domain.Result{}, domain.ErrInvalidEncoding
	}

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		s.log.Warn("unparseable csv payload", zap.Error(err))
		return domain.Result{}, domain.ErrMalformedCSV
	}
	if len(rows) == 0 {
		return domain.Result{Errors: []domain.RowError{}}, nil
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			}
		}
		records = append(records, record)
	}

	outcomes := make([]rowOutcome, len(records))
	jobs := make(chan int)

	workers := s.workers
	if workers > len(records) {
		workers = len(records)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = s.processRow(ctx, idx+1, records[idx])
			}
		}()
	}
	for idx := range records {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	result := domain.Result{Errors: []domain.RowError{}}
	for _, outcome := range outcomes {
		if outcome.internal != nil {
			return domain.Result{}, outcome.internal
		}
		if outcome.persisted {
			result.PersistedCount++
			continue
		}
		if outcome.rowErr != nil {
			result.Errors = append(result.Errors, *outcome.rowErr)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordBatch(ctx, result.PersistedCount, len(result.Errors))
	}
	s.log.Info("batch ingested",
		zap.Int("rows", len(records)),
		zap.Int("persisted", result.PersistedCount),
		zap.Int("rejected", len(result.Errors)),
	)

	return result, nil
}

func (s *Service) processRow(ctx context.Context, rowNum int, record map[string]string) rowOutcome {
	tx, fieldErrors := ValidateRecord(record)
	if fieldErrors != nil {
		return rowOutcome{rowErr: &domain.RowError{
			Row:    rowNum,
			Record: record,
			Errors: fieldErrors,
		}}
	}

	tx.CreatedAt = s.clock.Now()
	if err := s.repo.Insert(ctx, tx); err != nil {
		if err == txdomain.ErrDuplicateID {
			return rowOutcome{rowErr: &domain.RowError{
				Row:    rowNum,
				Record: record,
				Errors: map[string][]string{"id": {msgDuplicateIdentifier}},
			}}
		}
		s.log.Error("row insert failed",
			zap.Int("row", rowNum),
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err),
		)
		return rowOutcome{internal: fmt.Errorf("insert row %d: %w", rowNum, err)}
	}

	return rowOutcome{persisted: true}
}

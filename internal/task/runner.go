package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerline/internal/clock"
	"github.com/smallbiznis/ledgerline/internal/config"
	ingestdomain "github.com/smallbiznis/ledgerline/internal/ingest/domain"
	"github.com/smallbiznis/ledgerline/internal/task/domain"
	"github.com/smallbiznis/ledgerline/pkg/repository"
)

const failureMessage = "ingestion failed"

type job struct {
	taskID  string
	payload []byte
}

// RunnerParam is the dependencies to create a Runner
type RunnerParam struct {
	fx.In
	Cfg    config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	GenID  *snowflake.Node
	Ingest ingestdomain.Service
	Clock  clock.Clock
}

// Runner processes submitted batches on a bounded worker pool backed by an
// in-memory queue. Task state is persisted so Poll survives across requests.
type Runner struct {
	log    *zap.Logger
	store  repository.Repository[domain.Task]
	genID  *snowflake.Node
	ingest ingestdomain.Service
	clock  clock.Clock

	workers int
	jobs    chan job
	wg      sync.WaitGroup

	// mu serializes enqueue against close so Submit never races a
	// closing jobs channel.
	mu     sync.RWMutex
	closed bool
}

// NewRunner creates a new instance Runner
func NewRunner(p RunnerParam) *Runner {
	workers := p.Cfg.TaskWorkers
	if workers < 1 {
		workers = 1
	}
	queueSize := p.Cfg.TaskQueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	return &Runner{
		log:     p.Log.Named("task.runner"),
		store:   repository.ProvideStore[domain.Task](p.DB),
		genID:   p.GenID,
		ingest:  p.Ingest,
		clock:   p.Clock,
		workers: workers,
		jobs:    make(chan job, queueSize),
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
}

// Stop refuses new submissions and drains queued tasks before returning.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("task runner drain: %w", ctx.Err())
	}
}

// Submit persists a PENDING task and enqueues its payload. The returned ID
// can be polled immediately, even before a worker picks the task up.
func (r *Runner) Submit(ctx context.Context, payload []byte) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return "", domain.ErrClosed
	}

	t := &domain.Task{
		ID:        r.genID.Generate().String(),
		Status:    domain.StatusPending,
		CreatedAt: r.clock.Now(),
	}
	if err := r.store.Create(ctx, t); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}

	select {
	case r.jobs <- job{taskID: t.ID, payload: payload}:
		return t.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Poll returns the current persisted state of a task.
func (r *Runner) Poll(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := r.store.FindOne(ctx, &domain.Task{ID: taskID})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for j := range r.jobs {
		r.run(j)
	}
}

func (r *Runner) run(j job) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("task panicked", zap.String("task_id", j.taskID), zap.Any("panic", rec))
			r.finish(j.taskID, domain.StatusFailure, nil, failureMessage)
		}
	}()

	ctx := context.Background()
	started := r.clock.Now()
	if err := r.store.Update(ctx, j.taskID, map[string]any{
		"status":     domain.StatusStarted,
		"started_at": started,
	}); err != nil {
		r.log.Error("failed to mark task started", zap.String("task_id", j.taskID), zap.Error(err))
	}

	res, err := r.ingest.Ingest(ctx, j.payload)
	if err != nil {
		r.log.Warn("batch failed", zap.String("task_id", j.taskID), zap.Error(err))
		r.finish(j.taskID, domain.StatusFailure, nil, userMessage(err))
		return
	}

	result, err := toJSONMap(res)
	if err != nil {
		r.log.Error("failed to encode task result", zap.String("task_id", j.taskID), zap.Error(err))
		r.finish(j.taskID, domain.StatusFailure, nil, failureMessage)
		return
	}
	r.finish(j.taskID, domain.StatusSuccess, result, "")
}

func (r *Runner) finish(taskID string, status domain.Status, result datatypes.JSONMap, errMsg string) {
	values := map[string]any{
		"status":       status,
		"completed_at": r.clock.Now(),
	}
	if result != nil {
		values["result"] = result
	}
	if errMsg != "" {
		values["error"] = errMsg
	}
	if err := r.store.Update(context.Background(), taskID, values); err != nil {
		r.log.Error("failed to finalize task", zap.String("task_id", taskID), zap.Error(err))
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ingestdomain.ErrInvalidEncoding):
		return "File must be UTF-8 encoded."
	case errors.Is(err, ingestdomain.ErrMalformedCSV):
		return "Invalid file format. Please upload a valid CSV file."
	default:
		return failureMessage
	}
}

func toJSONMap(v any) (datatypes.JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m datatypes.JSONMap
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

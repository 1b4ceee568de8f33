package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerline/internal/clock"
	"github.com/smallbiznis/ledgerline/internal/config"
	ingestdomain "github.com/smallbiznis/ledgerline/internal/ingest/domain"
	"github.com/smallbiznis/ledgerline/internal/task/domain"
)

// -- Stubs --

type ingestStub struct {
	result ingestdomain.Result
	err    error
	block  chan struct{}
}

func (s *ingestStub) Ingest(ctx context.Context, payload []byte) (ingestdomain.Result, error) {
	if s.block != nil {
		<-s.block
	}
	return s.result, s.err
}

func setupRunner(t *testing.T, stub *ingestStub) *Runner {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(RunnerParam{
		Cfg:    config.Config{TaskWorkers: 2, TaskQueueSize: 8},
		Log:    zap.NewNop(),
		DB:     db,
		GenID:  node,
		Ingest: stub,
		Clock:  clock.NewSystemClock(),
	})
	r.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.Stop(ctx)
	})
	return r
}

func pollUntilTerminal(t *testing.T, r *Runner, taskID string) *domain.Task {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := r.Poll(context.Background(), taskID)
		if err != nil {
			t.Fatal(err)
		}
		if task.Status.Terminal() {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal state", taskID)
	return nil
}

// -- Tests --

func TestSubmitAndPoll_Success(t *testing.T) {
	stub := &ingestStub{result: ingestdomain.Result{
		PersistedCount: 2,
		Errors: []ingestdomain.RowError{
			{Row: 3, Errors: map[string][]string{"amount": {"invalid number"}}},
		},
	}}
	r := setupRunner(t, stub)

	taskID, err := r.Submit(context.Background(), []byte("payload"))
	assert.NoError(t, err)
	assert.NotEmpty(t, taskID)

	task := pollUntilTerminal(t, r, taskID)
	assert.Equal(t, domain.StatusSuccess, task.Status)
	assert.Empty(t, task.Error)
	assert.NotNil(t, task.StartedAt)
	assert.NotNil(t, task.CompletedAt)

	// JSON round trip turns counts into float64.
	assert.Equal(t, float64(2), task.Result["persisted_count"])
	assert.Len(t, task.Result["errors"], 1)
}

func TestSubmitAndPoll_BatchFailure(t *testing.T) {
	stub := &ingestStub{err: ingestdomain.ErrMalformedCSV}
	r := setupRunner(t, stub)

	taskID, err := r.Submit(context.Background(), []byte("not a csv"))
	assert.NoError(t, err)

	task := pollUntilTerminal(t, r, taskID)
	assert.Equal(t, domain.StatusFailure, task.Status)
	assert.Equal(t, "Invalid file format. Please upload a valid CSV file.", task.Error)
	assert.Empty(t, task.Result)
}

func TestSubmitAndPoll_UnexpectedFailure(t *testing.T) {
	stub := &ingestStub{err: errors.New("db exploded")}
	r := setupRunner(t, stub)

	taskID, err := r.Submit(context.Background(), []byte("payload"))
	assert.NoError(t, err)

	task := pollUntilTerminal(t, r, taskID)
	assert.Equal(t, domain.StatusFailure, task.Status)
	assert.Equal(t, "ingestion failed", task.Error)
}

func TestPoll_PendingBeforePickup(t *testing.T) {
	stub := &ingestStub{block: make(chan struct{})}
	r := setupRunner(t, stub)

	taskID, err := r.Submit(context.Background(), []byte("payload"))
	assert.NoError(t, err)

	task, err := r.Poll(context.Background(), taskID)
	assert.NoError(t, err)
	assert.False(t, task.Status.Terminal())

	close(stub.block)
	final := pollUntilTerminal(t, r, taskID)
	assert.Equal(t, domain.StatusSuccess, final.Status)
}

func TestPoll_NotFound(t *testing.T) {
	r := setupRunner(t, &ingestStub{})

	_, err := r.Poll(context.Background(), "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitAfterStop(t *testing.T) {
	r := setupRunner(t, &ingestStub{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))

	_, err := r.Submit(context.Background(), []byte("payload"))
	assert.ErrorIs(t, err, domain.ErrClosed)
}

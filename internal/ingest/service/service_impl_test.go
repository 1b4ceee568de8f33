package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/ledgerline/internal/clock"
	"github.com/smallbiznis/ledgerline/internal/config"
	ingestdomain "github.com/smallbiznis/ledgerline/internal/ingest/domain"
	txdomain "github.com/smallbiznis/ledgerline/internal/transaction/domain"
	txrepository "github.com/smallbiznis/ledgerline/internal/transaction/repository"
)

const csvHeader = "id,timestamp,amount,currency,customer_id,product_id,quantity"

func setupIngest(t *testing.T, workers int) (ingestdomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&txdomain.Transaction{}); err != nil {
		t.Fatal(err)
	}
	// Serialize access so concurrent workers never trip SQLITE_BUSY.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := New(ServiceParam{
		Cfg:   config.Config{IngestWorkers: workers},
		Log:   zap.NewNop(),
		Repo:  txrepository.Provide(db),
		Clock: fake,
	})
	return svc, db, fake
}

func validLine() string {
	return fmt.Sprintf("%s,2026-02-10T09:30:00Z,19.99,EUR,%s,%s,2",
		uuid.NewString(), uuid.NewString(), uuid.NewString())
}

func TestIngest_MixedBatch(t *testing.T) {
	svc, db, _ := setupIngest(t, 4)

	lines := []string{csvHeader}
	for i := 0; i < 25; i++ {
		lines = append(lines, validLine())
	}
	// row 26: broken id, row 27: negative amount
	lines = append(lines, fmt.Sprintf("nope,2026-02-10T09:30:00Z,10.00,PLN,%s,%s,1", uuid.NewString(), uuid.NewString()))
	lines = append(lines, fmt.Sprintf("%s,2026-02-10T09:30:00Z,-3.00,PLN,%s,%s,1", uuid.NewString(), uuid.NewString(), uuid.NewString()))

	res, err := svc.Ingest(context.Background(), []byte(strings.Join(lines, "\n")))
	assert.NoError(t, err)
	assert.Equal(t, 25, res.PersistedCount)
	assert.Len(t, res.Errors, 2)

	byRow := map[int]ingestdomain.RowError{}
	for _, rowErr := range res.Errors {
		byRow[rowErr.Row] = rowErr
	}
	assert.Equal(t, []string{"invalid identifier"}, byRow[26].Errors["id"])
	assert.Equal(t, []string{"amount must be greater than zero"}, byRow[27].Errors["amount"])

	var count int64
	assert.NoError(t, db.Model(&txdomain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(25), count)
}

func TestIngest_DuplicateIDWithinBatch(t *testing.T) {
	svc, db, _ := setupIngest(t, 4)

	id := uuid.NewString()
	customer := uuid.NewString()
	product := uuid.NewString()
	payload := strings.Join([]string{
		csvHeader,
		fmt.Sprintf("%s,2026-02-10T09:30:00Z,10.00,PLN,%s,%s,1", id, customer, product),
		fmt.Sprintf("%s,2026-02-11T09:30:00Z,20.00,PLN,%s,%s,2", id, customer, product),
	}, "\n")

	res, err := svc.Ingest(context.Background(), []byte(payload))
	assert.NoError(t, err)
	assert.Equal(t, 1, res.PersistedCount)
	if assert.Len(t, res.Errors, 1) {
		assert.Equal(t, []string{"duplicate identifier"}, res.Errors[0].Errors["id"])
	}

	var count int64
	assert.NoError(t, db.Model(&txdomain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIngest_DuplicateIDAcrossBatches(t *testing.T) {
	svc, _, _ := setupIngest(t, 1)

	line := validLine()
	payload := []byte(csvHeader + "\n" + line)

	first, err := svc.Ingest(context.Background(), payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, first.PersistedCount)

	second, err := svc.Ingest(context.Background(), payload)
	assert.NoError(t, err)
	assert.Equal(t, 0, second.PersistedCount)
	if assert.Len(t, second.Errors, 1) {
		assert.Equal(t, []string{"duplicate identifier"}, second.Errors[0].Errors["id"])
	}
}

func TestIngest_InvalidEncoding(t *testing.T) {
	svc, _, _ := setupIngest(t, 1)

	payload := append([]byte(csvHeader+"\n"), 0xff, 0xfe, 0xfd)
	_, err := svc.Ingest(context.Background(), payload)
	assert.ErrorIs(t, err, ingestdomain.ErrInvalidEncoding)
}

func TestIngest_MalformedCSV(t *testing.T) {
	svc, _, _ := setupIngest(t, 1)

	payload := []byte(csvHeader + "\n\"unclosed,2026-02-10T09:30:00Z,10.00")
	_, err := svc.Ingest(context.Background(), payload)
	assert.ErrorIs(t, err, ingestdomain.ErrMalformedCSV)
}

func TestIngest_ShortRowReportsMissingFields(t *testing.T) {
	svc, _, _ := setupIngest(t, 1)

	payload := []byte(csvHeader + "\n" + uuid.NewString() + ",2026-02-10T09:30:00Z,10.00")
	res, err := svc.Ingest(context.Background(), payload)
	assert.NoError(t, err)
	assert.Equal(t, 0, res.PersistedCount)
	if assert.Len(t, res.Errors, 1) {
		assert.Equal(t, []string{"currency must be a 3-letter code"}, res.Errors[0].Errors["currency"])
		assert.Equal(t, []string{"invalid identifier"}, res.Errors[0].Errors["customer_id"])
		assert.Equal(t, []string{"invalid integer"}, res.Errors[0].Errors["quantity"])
	}
}

func TestIngest_StampsCreatedAtFromClock(t *testing.T) {
	svc, db, fake := setupIngest(t, 1)

	res, err := svc.Ingest(context.Background(), []byte(csvHeader+"\n"+validLine()))
	assert.NoError(t, err)
	assert.Equal(t, 1, res.PersistedCount)

	var tx txdomain.Transaction
	assert.NoError(t, db.First(&tx).Error)
	assert.Equal(t, fake.Now(), tx.CreatedAt.UTC())
}

func TestIngest_EmptyPayload(t *testing.T) {
	svc, _, _ := setupIngest(t, 1)

	res, err := svc.Ingest(context.Background(), []byte(""))
	assert.NoError(t, err)
	assert.Equal(t, 0, res.PersistedCount)
	assert.Empty(t, res.Errors)
}

// Package generator produces synthetic transaction batches for local
// development and load testing.
package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Header is the column order of generated files, matching what the
// ingestion pipeline expects.
var Header = []string{"id", "timestamp", "amount", "currency", "customer_id", "product_id", "quantity"}

var currencies = []string{"PLN", "EUR", "USD"}

// Generator emits transaction rows from fixed customer and product pools so
// generated datasets produce meaningful per-entity summaries. The same seed
// always yields the same rows.
type Generator struct {
	rng       *rand.Rand
	now       time.Time
	customers []uuid.UUID
	products  []uuid.UUID
}

// New creates a deterministic generator. Entity pools are derived from the
// seed as well, so two generators with equal seeds emit identical files.
func New(seed int64, now time.Time) *Generator {
	rng := rand.New(rand.NewSource(seed))
	return &Generator{
		rng:       rng,
		now:       now.UTC(),
		customers: pool(rng, 10),
		products:  pool(rng, 10),
	}
}

// Customers returns the customer pool, useful for querying summaries of a
// generated dataset.
func (g *Generator) Customers() []uuid.UUID { return g.customers }

// Products returns the product pool.
func (g *Generator) Products() []uuid.UUID { return g.products }

// Row returns one CSV record. Timestamps fall within the year before now,
// amounts are positive with two decimal places.
func (g *Generator) Row() []string {
	amount := decimal.NewFromInt(int64(g.rng.Intn(9900) + 100)).Div(decimal.NewFromInt(100))
	ts := g.now.Add(-time.Duration(g.rng.Int63n(int64(365 * 24 * time.Hour))))
	return []string{
		uuidFrom(g.rng).String(),
		ts.Format(time.RFC3339),
		amount.StringFixed(2),
		currencies[g.rng.Intn(len(currencies))],
		g.customers[g.rng.Intn(len(g.customers))].String(),
		g.products[g.rng.Intn(len(g.products))].String(),
		fmt.Sprintf("%d", g.rng.Intn(10)+1),
	}
}

// WriteCSV writes a header plus count rows to w.
func (g *Generator) WriteCSV(w io.Writer, count int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < count; i++ {
		if err := cw.Write(g.Row()); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func pool(rng *rand.Rand, size int) []uuid.UUID {
	ids := make([]uuid.UUID, size)
	for i := range ids {
		ids[i] = uuidFrom(rng)
	}
	return ids
}

// uuidFrom builds a version 4 UUID from the seeded source instead of
// crypto/rand so output stays reproducible.
func uuidFrom(rng *rand.Rand) uuid.UUID {
	var b [16]byte
	rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	id, _ := uuid.FromBytes(b[:])
	return id
}

// Package repository persists parsed quotes.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// DBTX is the subset of pgxpool.Pool used by the repository. pgxmock pools
// satisfy it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuoteImport records one parsed source document.
type QuoteImport struct {
	ID             uuid.UUID
	SourceName     string
	QuoteNumber    *string
	QuoteDate      *string
	ExpirationDate *string
	CustomerName   *string
	CustomerNumber *string
	Success        bool
	TotalLines     int
	ProductRows    int
	DiscountRows   int
	SkippedRows    int
	Warnings       int
	CreatedAt      time.Time
}

// LineItem is a priced product row keyed by (PartNumber, QuoteNumber).
type LineItem struct {
	ID              uuid.UUID
	ImportID        uuid.UUID
	QuoteNumber     string
	PartNumber      string
	Series          string
	Description     string
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.NullDecimal
	NetUnitPrice    decimal.Decimal
	MOQ             string
	LineNumber      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SeriesDiscount is the percent applied to a series within one quote.
type SeriesDiscount struct {
	ImportID    uuid.UUID
	QuoteNumber string
	Series      string
	Percent     decimal.Decimal
	Description string
}

// QuoteRepository defines quote persistence operations.
type QuoteRepository interface {
	CreateImport(ctx context.Context, imp *QuoteImport) error
	GetImport(ctx context.Context, id uuid.UUID) (*QuoteImport, error)
	UpsertLineItem(ctx context.Context, item *LineItem) error
	UpsertSeriesDiscount(ctx context.Context, d *SeriesDiscount) error
	ListLineItems(ctx context.Context, quoteNumber string) ([]LineItem, error)
}

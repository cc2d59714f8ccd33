package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresQuoteRepository implements QuoteRepository using PostgreSQL.
type PostgresQuoteRepository struct {
	db DBTX
}

// NewPostgresQuoteRepository creates a repository over a pool or a mock.
func NewPostgresQuoteRepository(db DBTX) *PostgresQuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// CreateImport inserts the import header.
func (r *PostgresQuoteRepository) CreateImport(ctx context.Context, imp *QuoteImport) error {
	query := `
		INSERT INTO quote_imports (id, source_name, quote_number, quote_date, expiration_date,
			customer_name, customer_number, success, total_lines, product_rows, discount_rows,
			skipped_rows, warnings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at`

	if imp.ID == uuid.Nil {
		imp.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		imp.ID,
		imp.SourceName,
		imp.QuoteNumber,
		imp.QuoteDate,
		imp.ExpirationDate,
		imp.CustomerName,
		imp.CustomerNumber,
		imp.Success,
		imp.TotalLines,
		imp.ProductRows,
		imp.DiscountRows,
		imp.SkippedRows,
		imp.Warnings,
	).Scan(&imp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create quote import: %w", err)
	}
	return nil
}

// GetImport loads an import header by ID.
func (r *PostgresQuoteRepository) GetImport(ctx context.Context, id uuid.UUID) (*QuoteImport, error) {
	query := `
		SELECT id, source_name, quote_number, quote_date, expiration_date, customer_name,
			customer_number, success, total_lines, product_rows, discount_rows, skipped_rows,
			warnings, created_at
		FROM quote_imports
		WHERE id = $1`

	imp := &QuoteImport{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&imp.ID,
		&imp.SourceName,
		&imp.QuoteNumber,
		&imp.QuoteDate,
		&imp.ExpirationDate,
		&imp.CustomerName,
		&imp.CustomerNumber,
		&imp.Success,
		&imp.TotalLines,
		&imp.ProductRows,
		&imp.DiscountRows,
		&imp.SkippedRows,
		&imp.Warnings,
		&imp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote import: %w", err)
	}
	return imp, nil
}

// UpsertLineItem inserts a line item or refreshes the existing row for the
// same part and quote.
func (r *PostgresQuoteRepository) UpsertLineItem(ctx context.Context, item *LineItem) error {
	query := `
		INSERT INTO quote_line_items (id, import_id, quote_number, part_number, series, description,
			unit_price, discount_percent, net_unit_price, moq, line_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (part_number, quote_number) DO UPDATE SET
			import_id = EXCLUDED.import_id,
			series = EXCLUDED.series,
			description = EXCLUDED.description,
			unit_price = EXCLUDED.unit_price,
			discount_percent = EXCLUDED.discount_percent,
			net_unit_price = EXCLUDED.net_unit_price,
			moq = EXCLUDED.moq,
			line_number = EXCLUDED.line_number,
			updated_at = NOW()`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		item.ID,
		item.ImportID,
		item.QuoteNumber,
		item.PartNumber,
		item.Series,
		item.Description,
		item.UnitPrice,
		item.DiscountPercent,
		item.NetUnitPrice,
		item.MOQ,
		item.LineNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert line item %s: %w", item.PartNumber, err)
	}
	return nil
}

// UpsertSeriesDiscount stores the percent for a series within a quote.
func (r *PostgresQuoteRepository) UpsertSeriesDiscount(ctx context.Context, d *SeriesDiscount) error {
	query := `
		INSERT INTO quote_series_discounts (quote_number, series, percent, description, import_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (quote_number, series) DO UPDATE SET
			percent = EXCLUDED.percent,
			description = EXCLUDED.description,
			import_id = EXCLUDED.import_id,
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, d.QuoteNumber, d.Series, d.Percent, d.Description, d.ImportID)
	if err != nil {
		return fmt.Errorf("failed to upsert series discount %s: %w", d.Series, err)
	}
	return nil
}

// ListLineItems returns a quote's line items in document order.
func (r *PostgresQuoteRepository) ListLineItems(ctx context.Context, quoteNumber string) ([]LineItem, error) {
	query := `
		SELECT id, import_id, quote_number, part_number, series, description, unit_price,
			discount_percent, net_unit_price, moq, line_number, created_at, updated_at
		FROM quote_line_items
		WHERE quote_number = $1
		ORDER BY line_number`

	rows, err := r.db.Query(ctx, query, quoteNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(
			&it.ID,
			&it.ImportID,
			&it.QuoteNumber,
			&it.PartNumber,
			&it.Series,
			&it.Description,
			&it.UnitPrice,
			&it.DiscountPercent,
			&it.NetUnitPrice,
			&it.MOQ,
			&it.LineNumber,
			&it.CreatedAt,
			&it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}
	return items, nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	upsertStoreSQL = `INSERT INTO stores (key, name)
    VALUES ($1, $2)
    ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name
    RETURNING id, key, name, created_at;`

	// Upserts the product and its price for the sheet date in one round trip.
	upsertPriceSQL = `WITH product AS (
        INSERT INTO products (store_id, product_key, name, brand, category, package_quantity, package_unit)
        VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7)
        ON CONFLICT (store_id, product_key) DO UPDATE SET
            name = EXCLUDED.name,
            brand = EXCLUDED.brand,
            category = EXCLUDED.category,
            package_quantity = EXCLUDED.package_quantity,
            package_unit = EXCLUDED.package_unit,
            updated_at = NOW()
        RETURNING id
    )
    INSERT INTO prices (product_id, price_date, price, currency)
    SELECT id, $8, $9::text::numeric, $10 FROM product
    ON CONFLICT (product_id, price_date) DO UPDATE SET
        price = EXCLUDED.price,
        currency = EXCLUDED.currency;`

	// Discount sheets only fill product details the price sheets have not set.
	upsertDiscountSQL = `WITH product AS (
        INSERT INTO products (store_id, product_key, name, brand, category, package_quantity, package_unit)
        VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7)
        ON CONFLICT (store_id, product_key) DO UPDATE SET
            updated_at = NOW()
        RETURNING id
    )
    INSERT INTO discounts (product_id, from_date, to_date, percent_off)
    SELECT id, $8, $9, $10::text::numeric FROM product
    ON CONFLICT (product_id, from_date, to_date, percent_off) DO NOTHING;`

	importRunExistsSQL = `SELECT EXISTS (SELECT 1 FROM import_runs WHERE signature = $1);`

	insertImportRunSQL = `INSERT INTO import_runs (id, file_name, store_id, kind, sheet_date, signature, row_count)
    SELECT $1::text::uuid, $2, s.id, $4, $5, $6, $7 FROM stores s WHERE s.key = $3
    ON CONFLICT (signature) DO NOTHING
    RETURNING imported_at;`

	listImportRunsSQL = `SELECT r.id::text, r.file_name, s.key, r.kind, r.sheet_date, r.signature, r.row_count, r.imported_at
    FROM import_runs r
    JOIN stores s ON s.id = r.store_id
    ORDER BY r.imported_at DESC
    LIMIT $1;`
)

// UpsertStore creates or renames a store.
func (r *Repository) UpsertStore(ctx context.Context, key, name string) (Store, error) {
	pool, err := r.getPool()
	if err != nil {
		return Store{}, err
	}
	var s Store
	if err := pool.QueryRow(ctx, upsertStoreSQL, key, name).Scan(&s.ID, &s.Key, &s.Name, &s.CreatedAt); err != nil {
		return Store{}, fmt.Errorf("upsert store %s: %w", key, err)
	}
	return s, nil
}

// SavePrices writes a price sheet for one store and date in a single transaction.
func (r *Repository) SavePrices(ctx context.Context, store Store, sheetDate time.Time, records []PriceRecord) error {
	return r.saveBatch(ctx, len(records), func(batch *pgx.Batch) {
		for _, rec := range records {
			p := rec.Product
			batch.Queue(upsertPriceSQL,
				store.ID, p.Key, p.Name, p.Brand, p.Category, p.PackageQuantity.String(), p.PackageUnit,
				sheetDate, rec.Price.String(), rec.Currency,
			)
		}
	})
}

// SaveDiscounts writes a discount sheet for one store in a single transaction.
// Intervals already stored are left untouched.
func (r *Repository) SaveDiscounts(ctx context.Context, store Store, records []DiscountRecord) error {
	return r.saveBatch(ctx, len(records), func(batch *pgx.Batch) {
		for _, rec := range records {
			p := rec.Product
			batch.Queue(upsertDiscountSQL,
				store.ID, p.Key, p.Name, p.Brand, p.Category, p.PackageQuantity.String(), p.PackageUnit,
				rec.FromDate, rec.ToDate, rec.PercentOff.String(),
			)
		}
	})
}

func (r *Repository) saveBatch(ctx context.Context, n int, queue func(*pgx.Batch)) error {
	if n == 0 {
		return nil
	}
	pool, err := r.getPool()
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	queue(batch)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ImportRunExists reports whether a sheet with the given signature was already imported.
func (r *Repository) ImportRunExists(ctx context.Context, signature string) (bool, error) {
	pool, err := r.getPool()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := pool.QueryRow(ctx, importRunExistsSQL, signature).Scan(&exists); err != nil {
		return false, fmt.Errorf("check import run: %w", err)
	}
	return exists, nil
}

// RecordImportRun stores a completed import. It returns false when a run
// with the same signature already exists.
func (r *Repository) RecordImportRun(ctx context.Context, run *ImportRun) (bool, error) {
	pool, err := r.getPool()
	if err != nil {
		return false, err
	}
	err = pool.QueryRow(ctx, insertImportRunSQL,
		run.ID, run.FileName, run.StoreKey, string(run.Kind), run.SheetDate, run.Signature, run.RowCount,
	).Scan(&run.ImportedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("record import run: %w", err)
	}
	return true, nil
}

// ListImportRuns returns the most recent import runs, newest first.
func (r *Repository) ListImportRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	pool, err := r.getPool()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, listImportRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	defer rows.Close()

	runs := make([]ImportRun, 0)
	for rows.Next() {
		var (
			run  ImportRun
			kind string
		)
		if err := rows.Scan(&run.ID, &run.FileName, &run.StoreKey, &kind, &run.SheetDate, &run.Signature, &run.RowCount, &run.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		run.Kind = ImportKind(kind)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

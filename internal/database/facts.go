package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/pricing"
	"github.com/shopspring/decimal"
)

const (
	// Latest price on or before the current date for every product.
	listListingsSQL = `SELECT
        p.product_key,
        p.name,
        p.brand,
        p.category,
        p.package_quantity::text,
        p.package_unit,
        s.key,
        s.name,
        lp.price::text,
        lp.price_date
    FROM products p
    JOIN stores s ON s.id = p.store_id
    LEFT JOIN LATERAL (
        SELECT pr.price, pr.price_date
        FROM prices pr
        WHERE pr.product_id = p.id
          AND pr.price_date <= CURRENT_DATE
        ORDER BY pr.price_date DESC
        LIMIT 1
    ) lp ON TRUE
    ORDER BY s.key, p.product_key;`

	listDiscountsSQL = `SELECT
        p.product_key,
        s.key,
        d.from_date,
        d.to_date,
        d.percent_off::text
    FROM discounts d
    JOIN products p ON p.id = d.product_id
    JOIN stores s ON s.id = p.store_id
    ORDER BY s.key, p.product_key, d.from_date;`
)

// LoadSnapshot reads every listing, its latest base price and all discount
// intervals in one read-only transaction, so prices and discounts come from
// the same point in time.
//
// The base price is the one in effect on the database's current date when
// the snapshot loads, and it prices every requested date until the next
// reload. Price rows dated after that day are ignored until a reload on or
// after their date.
func (r *Repository) LoadSnapshot(ctx context.Context) (*optimizer.Snapshot, error) {
	pool, err := r.getPool()
	if err != nil {
		return nil, err
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	snap := optimizer.NewSnapshot()
	if err := loadListings(ctx, tx, snap); err != nil {
		return nil, err
	}
	if err := loadDiscounts(ctx, tx, snap); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot transaction: %w", err)
	}
	return snap.Seal(), nil
}

func loadListings(ctx context.Context, tx pgx.Tx, snap *optimizer.Snapshot) error {
	rows, err := tx.Query(ctx, listListingsSQL)
	if err != nil {
		return fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l         optimizer.Listing
			qtyStr    string
			priceStr  *string
			priceDate *time.Time
		)
		if err := rows.Scan(
			&l.Product.Key,
			&l.Product.Name,
			&l.Product.Brand,
			&l.Product.Category,
			&qtyStr,
			&l.Product.PackageUnit,
			&l.StoreKey,
			&l.StoreName,
			&priceStr,
			&priceDate,
		); err != nil {
			return fmt.Errorf("scan listing: %w", err)
		}

		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return fmt.Errorf("parse package quantity of %s: %w", l.Product.Key, err)
		}
		l.Product.PackageQuantity = qty
		snap.AddListing(l)

		if priceStr == nil || priceDate == nil {
			continue
		}
		price, err := decimal.NewFromString(*priceStr)
		if err != nil {
			return fmt.Errorf("parse price of %s: %w", l.Product.Key, err)
		}
		snap.AddPrice(pricing.PriceFact{
			ProductKey: l.Product.Key,
			StoreKey:   l.StoreKey,
			BasePrice:  price,
			AsOf:       pricing.Day(*priceDate),
		})
	}
	return rows.Err()
}

func loadDiscounts(ctx context.Context, tx pgx.Tx, snap *optimizer.Snapshot) error {
	rows, err := tx.Query(ctx, listDiscountsSQL)
	if err != nil {
		return fmt.Errorf("query discounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d      pricing.DiscountInterval
			pctStr string
		)
		if err := rows.Scan(&d.ProductKey, &d.StoreKey, &d.FromDate, &d.ToDate, &pctStr); err != nil {
			return fmt.Errorf("scan discount: %w", err)
		}
		pct, err := decimal.NewFromString(pctStr)
		if err != nil {
			return fmt.Errorf("parse discount of %s: %w", d.ProductKey, err)
		}
		d.PercentOff = pct
		d.FromDate = pricing.Day(d.FromDate)
		d.ToDate = pricing.Day(d.ToDate)
		snap.AddDiscount(d)
	}
	return rows.Err()
}

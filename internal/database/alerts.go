package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	insertAlertSQL = `INSERT INTO alerts (product_name, target_price)
    VALUES ($1, $2::text::numeric)
    RETURNING id, product_name, target_price::text, status, created_at, processed_at, store_key, match_price::text;`

	getAlertSQL = `SELECT id, product_name, target_price::text, status, created_at, processed_at, store_key, match_price::text
    FROM alerts
    WHERE id = $1;`

	listActiveAlertsSQL = `SELECT id, product_name, target_price::text, status, created_at, processed_at, store_key, match_price::text
    FROM alerts
    WHERE status = 'ACTIVE'
    ORDER BY id;`

	listAlertsSQL = `SELECT id, product_name, target_price::text, status, created_at, processed_at, store_key, match_price::text
    FROM alerts
    ORDER BY id DESC
    LIMIT $1;`

	// Only an active alert can be processed, so concurrent sweeps mark it once.
	markAlertProcessedSQL = `UPDATE alerts
    SET status = 'PROCESSED', processed_at = $2, store_key = $3, match_price = $4::text::numeric
    WHERE id = $1 AND status = 'ACTIVE';`
)

// CreateAlert stores a new active alert.
func (r *Repository) CreateAlert(ctx context.Context, productName string, target decimal.Decimal) (Alert, error) {
	pool, err := r.getPool()
	if err != nil {
		return Alert{}, err
	}
	alert, err := scanAlert(pool.QueryRow(ctx, insertAlertSQL, productName, target.String()))
	if err != nil {
		return Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	return alert, nil
}

// GetAlert returns the alert with the given id or ErrNotFound.
func (r *Repository) GetAlert(ctx context.Context, id int64) (Alert, error) {
	pool, err := r.getPool()
	if err != nil {
		return Alert{}, err
	}
	alert, err := scanAlert(pool.QueryRow(ctx, getAlertSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Alert{}, ErrNotFound
	}
	if err != nil {
		return Alert{}, fmt.Errorf("get alert %d: %w", id, err)
	}
	return alert, nil
}

// ListActiveAlerts returns every alert still waiting for its target price.
func (r *Repository) ListActiveAlerts(ctx context.Context) ([]Alert, error) {
	pool, err := r.getPool()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, listActiveAlertsSQL)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	return collectAlerts(rows)
}

// ListAlerts returns the most recent alerts, newest first.
func (r *Repository) ListAlerts(ctx context.Context, limit int) ([]Alert, error) {
	pool, err := r.getPool()
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, listAlertsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return collectAlerts(rows)
}

// MarkAlertProcessed moves an active alert to PROCESSED and records the store
// and price that satisfied it. It returns false when the alert was not active.
func (r *Repository) MarkAlertProcessed(ctx context.Context, id int64, processedAt time.Time, storeKey string, price decimal.Decimal) (bool, error) {
	pool, err := r.getPool()
	if err != nil {
		return false, err
	}
	tag, err := pool.Exec(ctx, markAlertProcessedSQL, id, processedAt, storeKey, price.String())
	if err != nil {
		return false, fmt.Errorf("mark alert %d processed: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func collectAlerts(rows pgx.Rows) ([]Alert, error) {
	defer rows.Close()
	alerts := make([]Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func scanAlert(row pgx.Row) (Alert, error) {
	var (
		a         Alert
		targetStr string
		status    string
	)
	if err := row.Scan(
		&a.ID,
		&a.ProductName,
		&targetStr,
		&status,
		&a.CreatedAt,
		&a.ProcessedAt,
		&a.Store,
		&a.MatchPrice,
	); err != nil {
		return Alert{}, err
	}
	target, err := decimal.NewFromString(targetStr)
	if err != nil {
		return Alert{}, fmt.Errorf("parse target price: %w", err)
	}
	a.TargetPrice = target
	a.Status = AlertStatus(status)
	return a, nil
}

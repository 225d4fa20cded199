package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shipmatic/dashboard/internal/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Insert(o *domain.Order) error {
	items, err := json.Marshal(o.LineItems)
	if err != nil {
		return fmt.Errorf("marshal line items: %w", err)
	}
	_, err = r.db.Exec(
		`INSERT OR IGNORE INTO orders
		(id, shop, name, customer_email, currency, total, fulfillment,
		 created_at, line_items)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		o.ID, o.Shop, o.Name, o.CustomerEmail, o.Currency,
		o.Total.Amount.String(), string(o.Fulfillment),
		o.CreatedAt.Format(time.RFC3339), string(items),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) BulkInsert(orders []domain.Order) (int, error) {
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO orders
		(id, shop, name, customer_email, currency, total, fulfillment,
		 created_at, line_items)
		VALUES (?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range orders {
		o := &orders[i]
		items, err := json.Marshal(o.LineItems)
		if err != nil {
			return inserted, fmt.Errorf("marshal row %d: %w", i, err)
		}
		res, err := stmt.Exec(
			o.ID, o.Shop, o.Name, o.CustomerEmail, o.Currency,
			o.Total.Amount.String(), string(o.Fulfillment),
			o.CreatedAt.Format(time.RFC3339), string(items),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *OrderRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

func (r *OrderRepo) GetByID(id string) (*domain.Order, error) {
	row := r.db.QueryRow("SELECT * FROM orders WHERE id = ?", id)
	return scanOrderRow(row.Scan)
}

// ListByShop returns a shop's orders, optionally narrowed to a created-at
// window, oldest first. Search, sort and pagination happen downstream in the
// aggregation layer; the snapshot handed over there is immutable.
func (r *OrderRepo) ListByShop(shop string, from, to *time.Time) ([]domain.Order, error) {
	clauses := []string{"shop = ?"}
	args := []any{shop}
	if from != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, from.Format(time.RFC3339))
	}
	if to != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, to.Format(time.RFC3339))
	}

	query := "SELECT * FROM orders WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at"
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// GetByIDs loads the given orders into a map keyed by ID. Missing IDs are
// simply absent from the result.
func (r *OrderRepo) GetByIDs(ids []string) (map[string]domain.Order, error) {
	result := make(map[string]domain.Order, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query("SELECT * FROM orders WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOrderRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		result[o.ID] = *o
	}
	return result, rows.Err()
}

// --- helpers ---

func scanOrderRow(scan func(...any) error) (*domain.Order, error) {
	var o domain.Order
	var total, fulfillment, createdAt, items string

	err := scan(
		&o.ID, &o.Shop, &o.Name, &o.CustomerEmail, &o.Currency,
		&total, &fulfillment, &createdAt, &items,
	)
	if err != nil {
		return nil, err
	}

	m, err := domain.MoneyFromString(total, o.Currency)
	if err != nil {
		return nil, fmt.Errorf("total: %w", err)
	}
	o.Total = m
	o.Fulfillment = domain.FulfillmentStatus(fulfillment)
	o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if err := json.Unmarshal([]byte(items), &o.LineItems); err != nil {
		return nil, fmt.Errorf("line items: %w", err)
	}

	return &o, nil
}

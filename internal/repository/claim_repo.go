package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shipmatic/dashboard/internal/domain"
)

type ClaimRepo struct {
	db *sql.DB
}

func NewClaimRepo(db *sql.DB) *ClaimRepo {
	return &ClaimRepo{db: db}
}

func (r *ClaimRepo) Insert(c *domain.Claim) error {
	items, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = r.db.Exec(
		`INSERT OR IGNORE INTO claims
		(id, shop, order_id, status, method, currency, created_at, items)
		VALUES (?,?,?,?,?,?,?,?)`,
		c.ID, c.Shop, c.OrderID, string(c.Status), string(c.Method),
		c.Currency, c.CreatedAt.Format(time.RFC3339), string(items),
	)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (r *ClaimRepo) BulkInsert(claims []domain.Claim) (int, error) {
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT OR IGNORE INTO claims
		(id, shop, order_id, status, method, currency, created_at, items)
		VALUES (?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range claims {
		c := &claims[i]
		items, err := json.Marshal(c.Items)
		if err != nil {
			return inserted, fmt.Errorf("marshal row %d: %w", i, err)
		}
		res, err := stmt.Exec(
			c.ID, c.Shop, c.OrderID, string(c.Status), string(c.Method),
			c.Currency, c.CreatedAt.Format(time.RFC3339), string(items),
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

func (r *ClaimRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM claims").Scan(&count)
	return count, err
}

func (r *ClaimRepo) GetByID(id string) (*domain.Claim, error) {
	row := r.db.QueryRow("SELECT * FROM claims WHERE id = ?", id)
	return scanClaimRow(row.Scan)
}

// ListByShop returns a shop's claims, optionally narrowed to a created-at
// window, oldest first.
func (r *ClaimRepo) ListByShop(shop string, from, to *time.Time) ([]domain.Claim, error) {
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

	query := "SELECT * FROM claims WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at"
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		c, err := scanClaimRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// UpdateStatus transitions a single claim.
func (r *ClaimRepo) UpdateStatus(id string, status domain.ClaimStatus) error {
	res, err := r.db.Exec("UPDATE claims SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExpireMany marks the given claims expired in one statement.
func (r *ClaimRepo) ExpireMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(domain.ClaimExpired))
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := r.db.Exec("UPDATE claims SET status = ? WHERE id IN ("+placeholders+")", args...)
	return err
}

// --- helpers ---

func scanClaimRow(scan func(...any) error) (*domain.Claim, error) {
	var c domain.Claim
	var status, method, createdAt, items string

	err := scan(
		&c.ID, &c.Shop, &c.OrderID, &status, &method,
		&c.Currency, &createdAt, &items,
	)
	if err != nil {
		return nil, err
	}

	c.Status = domain.ClaimStatus(status)
	c.Method = domain.ResolutionMethod(method)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if err := json.Unmarshal([]byte(items), &c.Items); err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}

	return &c, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"warehousesvc/internal/core/domain"
	"warehousesvc/internal/port"
)

const productColumns = "id, name, category, price, stock, created_at, updated_at"

// MySQLStore is the authoritative product store. Stock mutations go through
// transactions whose SELECT ... FOR UPDATE serializes concurrent purchases of
// the same product; purchases of different products do not block each other.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// EnsureSchema creates the products table when it does not exist.
func (m *MySQLStore) EnsureSchema(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(128) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			stock INT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			KEY idx_products_category (category)
		)`)
	if err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// CreateProduct inserts a product and fills in its generated id.
func (m *MySQLStore) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	res, err := m.db.ExecContext(ctx, `
		INSERT INTO products (name, category, price, stock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Category, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	p.ID = id
	return nil
}

// CountProducts reports the number of product rows; used by the seed path.
func (m *MySQLStore) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (m *MySQLStore) BeginTx(ctx context.Context) (port.ProductTx, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &mysqlTx{tx: tx}, nil
}

func (m *MySQLStore) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE LOWER(category) = ? ORDER BY id`,
		strings.ToLower(category),
	)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

type mysqlTx struct {
	tx *sql.Tx
}

// GetForUpdate locks the row until Commit or Rollback. A concurrent
// transaction reading the same row blocks here until this one ends.
func (t *mysqlTx) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := t.tx.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = ? FOR UPDATE`, id,
	).Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select for update: %w", err)
	}
	return &p, nil
}

func (t *mysqlTx) Save(ctx context.Context, p domain.Product) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE products SET stock = ?, updated_at = ? WHERE id = ?`,
		p.Stock, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (t *mysqlTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *mysqlTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

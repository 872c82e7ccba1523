package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cesta-app/cesta/pkg/basket"
)

// SearchLimit caps the number of rows returned by DB.Search.
const SearchLimit = 50

// DB is the local product catalog.
type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS products (
  id          INTEGER PRIMARY KEY,
  name        TEXT NOT NULL UNIQUE,
  price       TEXT NOT NULL,
  category    TEXT NOT NULL DEFAULT '',
  kcal        REAL NOT NULL DEFAULT 0,
  protein     REAL NOT NULL DEFAULT 0,
  carbs       REAL NOT NULL DEFAULT 0,
  fat         REAL NOT NULL DEFAULT 0,
  image_url   TEXT,
  emoji       TEXT,
  updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Import upserts products by name and reports how many rows were added and
// how many changed.
func (d *DB) Import(ctx context.Context, products []basket.Product) (added, updated int, err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT name, price, category, kcal, protein, carbs, fat, image_url, emoji FROM products")
	if err != nil {
		return 0, 0, err
	}
	existing := make(map[string]basket.Product)
	for rows.Next() {
		var p basket.Product
		if p, err = scanProduct(rows); err != nil {
			rows.Close()
			return 0, 0, err
		}
		existing[p.Name] = p
	}
	if err = rows.Close(); err != nil {
		return 0, 0, err
	}

	for _, p := range products {
		if p.Name == "" {
			continue
		}
		price := basket.FormatPrice(p.Price)
		ex, found := existing[p.Name]
		switch {
		case !found:
			_, err = tx.ExecContext(ctx, `INSERT INTO products(name, price, category, kcal, protein, carbs, fat, image_url, emoji) VALUES(?,?,?,?,?,?,?,?,?)`,
				p.Name, price, p.Category, p.Kcal, p.Protein, p.Carbs, p.Fat, nullIfEmpty(p.ImageURL), nullIfEmpty(p.Emoji))
			if err != nil {
				return 0, 0, err
			}
			added++
		case !sameProduct(ex, p):
			_, err = tx.ExecContext(ctx, `UPDATE products SET price = ?, category = ?, kcal = ?, protein = ?, carbs = ?, fat = ?, image_url = ?, emoji = ?, updated_at = CURRENT_TIMESTAMP WHERE name = ?`,
				price, p.Category, p.Kcal, p.Protein, p.Carbs, p.Fat, nullIfEmpty(p.ImageURL), nullIfEmpty(p.Emoji), p.Name)
			if err != nil {
				return 0, 0, err
			}
			updated++
		default:
			continue
		}
		existing[p.Name] = p
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, err
	}
	return added, updated, nil
}

// Search matches query anywhere in the product name. Results are ordered by
// name then price. An empty query matches nothing.
func (d *DB) Search(ctx context.Context, query string) ([]basket.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	rows, err := d.sql.QueryContext(ctx, `
SELECT name, price, category, kcal, protein, carbs, fat, image_url, emoji
FROM products
WHERE name LIKE ? ESCAPE '\'
ORDER BY name COLLATE NOCASE, CAST(price AS REAL)
LIMIT ?`, "%"+escapeLike(query)+"%", SearchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []basket.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of products in the catalog.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(s scanner) (basket.Product, error) {
	var (
		p            basket.Product
		price        string
		image, emoji sql.NullString
	)
	if err := s.Scan(&p.Name, &price, &p.Category, &p.Kcal, &p.Protein, &p.Carbs, &p.Fat, &image, &emoji); err != nil {
		return basket.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return basket.Product{}, err
	}
	p.Price = d
	p.ImageURL = image.String
	p.Emoji = emoji.String
	return p, nil
}

func sameProduct(a, b basket.Product) bool {
	return a.Price.Equal(b.Price) && a.Category == b.Category &&
		a.Kcal == b.Kcal && a.Protein == b.Protein && a.Carbs == b.Carbs && a.Fat == b.Fat &&
		a.ImageURL == b.ImageURL && a.Emoji == b.Emoji
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/shelfwatch/backend/internal/domain"
)

// schema is bootstrapped on open. The partial unique index enforces
// the catalog invariant that (brand, name, weight) is unique among
// active products; the assets unique index is the idempotency key for
// SaveAsset.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	brand        TEXT    NOT NULL,
	name         TEXT    NOT NULL,
	weight_grams INTEGER NOT NULL DEFAULT 0,
	gtin         TEXT    NOT NULL DEFAULT '',
	active       INTEGER NOT NULL DEFAULT 1
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_identity
	ON products(brand, name, weight_grams) WHERE active = 1;

CREATE TABLE IF NOT EXISTS assets (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id   INTEGER NOT NULL REFERENCES products(id),
	source       TEXT    NOT NULL,
	checksum     TEXT    NOT NULL,
	path         TEXT    NOT NULL,
	content_type TEXT    NOT NULL DEFAULT '',
	created_at   TEXT    NOT NULL DEFAULT (datetime('now'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_dedup
	ON assets(product_id, source, checksum);
CREATE INDEX IF NOT EXISTS idx_assets_lookup
	ON assets(source, checksum);
`

// Store is the SQLite-backed Product Catalog and Asset Store. The
// resolution core reads products and writes assets; product rows are
// owned by the wider price-tracking service.
type Store struct {
	db        *sql.DB
	path      string
	assetsDir string
}

// NewStore opens (creating if needed) the database at dbPath and
// prepares assetsDir for stored binaries.
func NewStore(dbPath, assetsDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if assetsDir != "" {
		if err := os.MkdirAll(assetsDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating assets directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}

	return &Store{db: db, path: dbPath, assetsDir: assetsDir}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ActiveProducts returns the current active catalog snapshot, ordered
// by id for reproducible index builds.
func (s *Store) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, brand, name, weight_grams, gtin, active
		 FROM products WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindByGTIN looks up an active product by its canonical 14-digit
// identifier.
func (s *Store) FindByGTIN(ctx context.Context, gtin14 string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, brand, name, weight_grams, gtin, active
		 FROM products WHERE gtin = ? AND active = 1`, gtin14)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertProduct adds a catalog row and returns its id. Used by seed
// tooling and tests; the resolution core itself never writes products.
func (s *Store) InsertProduct(ctx context.Context, p domain.Product) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (brand, name, weight_grams, gtin, active) VALUES (?, ?, ?, ?, ?)`,
		p.Brand, p.Name, p.WeightGrams, p.GTIN, p.Active)
	if err != nil {
		return 0, fmt.Errorf("inserting product: %w", err)
	}
	return res.LastInsertId()
}

// HasAsset reports whether a binary with this checksum was already
// committed from this source, regardless of which product it matched.
func (s *Store) HasAsset(ctx context.Context, source, checksum string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM assets WHERE source = ? AND checksum = ?`,
		source, checksum).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking asset: %w", err)
	}
	return n > 0, nil
}

// SaveAsset persists the binary and its provenance row. Idempotent
// over (product, source, checksum): a duplicate save writes nothing
// and reports created=false.
func (s *Store) SaveAsset(ctx context.Context, asset domain.Asset, data []byte) (bool, error) {
	storedPath := asset.Path
	if s.assetsDir != "" {
		storedPath = filepath.Join(s.assetsDir, asset.Checksum+filepath.Ext(asset.Path))
		if _, err := os.Stat(storedPath); os.IsNotExist(err) {
			if err := os.WriteFile(storedPath, data, 0o600); err != nil {
				return false, fmt.Errorf("writing asset binary: %w", err)
			}
		}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO assets (product_id, source, checksum, path, content_type)
		 VALUES (?, ?, ?, ?, ?)`,
		asset.ProductID, asset.Source, asset.Checksum, storedPath, asset.ContentType)
	if err != nil {
		return false, fmt.Errorf("inserting asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var active int
	if err := row.Scan(&p.ID, &p.Brand, &p.Name, &p.WeightGrams, &p.GTIN, &active); err != nil {
		return domain.Product{}, err
	}
	p.Active = active == 1
	return p, nil
}

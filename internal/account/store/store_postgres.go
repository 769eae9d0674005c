package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/account/models"
	"storefront/internal/catalog"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

// Schema creates the cart and wishlist tables. variant_key is '' for
// variant-less lines so it can take part in the primary key.
const Schema = `
CREATE TABLE IF NOT EXISTS cart_lines (
	user_id     UUID NOT NULL,
	product_id  TEXT NOT NULL,
	variant_key TEXT NOT NULL DEFAULT '',
	quantity    INTEGER NOT NULL CHECK (quantity > 0),
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL,
	image       TEXT NOT NULL,
	unit_price  BIGINT NOT NULL,
	attributes  JSONB,
	updated_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, product_id, variant_key)
);
CREATE TABLE IF NOT EXISTS wishlist_entries (
	user_id     UUID NOT NULL,
	product_id  TEXT NOT NULL,
	variant_key TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL,
	image       TEXT NOT NULL,
	price       BIGINT NOT NULL,
	stock       INTEGER NOT NULL,
	added_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (user_id, product_id, variant_key)
)`

// Postgres stores accounts in PostgreSQL through lib/pq.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func variantColumn(v id.VariantKey) string {
	k, _ := v.Key()
	return k
}

func (s *Postgres) ListCart(ctx context.Context, userID id.UserID) ([]models.CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, variant_key, quantity, name, slug, image, unit_price, attributes, updated_at
		FROM cart_lines WHERE user_id = $1`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	out := []models.CartLine{}
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	sortCart(out)
	return out, nil
}

func (s *Postgres) AddToCart(ctx context.Context, userID id.UserID, line models.CartLine) (models.CartLine, error) {
	if line.Quantity <= 0 {
		return models.CartLine{}, fmt.Errorf("quantity %d: %w", line.Quantity, sentinel.ErrInvalidState)
	}
	var attrs []byte
	if len(line.Attributes) > 0 {
		var err error
		if attrs, err = json.Marshal(line.Attributes); err != nil {
			return models.CartLine{}, fmt.Errorf("encode attributes: %w", err)
		}
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO cart_lines (user_id, product_id, variant_key, quantity, name, slug, image, unit_price, attributes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, product_id, variant_key) DO UPDATE SET
			quantity   = cart_lines.quantity + EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
		RETURNING product_id, variant_key, quantity, name, slug, image, unit_price, attributes, updated_at`,
		uuid.UUID(userID), line.ProductID.String(), variantColumn(line.VariantKey), line.Quantity,
		line.Name, line.Slug, line.Image, int64(line.UnitPrice), attrs, line.UpdatedAt)
	return scanCartLine(row)
}

func (s *Postgres) ClearCart(ctx context.Context, userID id.UserID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, uuid.UUID(userID)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Postgres) ListWishlist(ctx context.Context, userID id.UserID) ([]models.WishlistEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, variant_key, name, slug, image, price, stock, added_at
		FROM wishlist_entries WHERE user_id = $1`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	out := []models.WishlistEntry{}
	for rows.Next() {
		var (
			e       models.WishlistEntry
			pid     string
			variant string
			price   int64
		)
		if err := rows.Scan(&pid, &variant, &e.Name, &e.Slug, &e.Image, &price, &e.Stock, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		e.ProductID = id.ProductID(pid)
		e.VariantKey = id.Variant(variant)
		e.Price = catalog.Money(price)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	sortWishlist(out)
	return out, nil
}

func (s *Postgres) AddToWishlist(ctx context.Context, userID id.UserID, entry models.WishlistEntry) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO wishlist_entries (user_id, product_id, variant_key, name, slug, image, price, stock, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, product_id, variant_key) DO NOTHING`,
		uuid.UUID(userID), entry.ProductID.String(), variantColumn(entry.VariantKey),
		entry.Name, entry.Slug, entry.Image, int64(entry.Price), entry.Stock, entry.AddedAt)
	if err != nil {
		return fmt.Errorf("add wishlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add wishlist entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wishlist entry %s: %w", entry.Key(), sentinel.ErrConflict)
	}
	return nil
}

func (s *Postgres) RemoveFromWishlist(ctx context.Context, userID id.UserID, key id.LineKey) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM wishlist_entries WHERE user_id = $1 AND product_id = $2 AND variant_key = $3`,
		uuid.UUID(userID), key.ProductID.String(), variantColumn(key.Variant))
	if err != nil {
		return fmt.Errorf("remove wishlist entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove wishlist entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("wishlist entry %s: %w", key, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartLine(row rowScanner) (models.CartLine, error) {
	var (
		l       models.CartLine
		pid     string
		variant string
		price   int64
		attrs   []byte
	)
	if err := row.Scan(&pid, &variant, &l.Quantity, &l.Name, &l.Slug, &l.Image, &price, &attrs, &l.UpdatedAt); err != nil {
		return models.CartLine{}, fmt.Errorf("scan cart line: %w", err)
	}
	l.ProductID = id.ProductID(pid)
	l.VariantKey = id.Variant(variant)
	l.UnitPrice = catalog.Money(price)
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &l.Attributes); err != nil {
			return models.CartLine{}, fmt.Errorf("cart line attributes: %w", sentinel.ErrCorrupt)
		}
	}
	return l, nil
}

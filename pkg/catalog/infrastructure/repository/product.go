package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"marketplace/pkg/catalog/domain/model"
	chatmodel "marketplace/pkg/chat/domain/model"
)

type productRow struct {
	ID          string         `db:"id"`
	SellerID    string         `db:"seller_id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	Category    sql.NullString `db:"category"`
	Country     sql.NullString `db:"country"`
	ImageURL    sql.NullString `db:"image_url"`
	PriceCents  int64          `db:"price_cents"`
	Stock       int            `db:"stock"`
	Active      bool           `db:"active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type listingRow struct {
	productRow
	StoreName   string         `db:"store_name"`
	SellerName  sql.NullString `db:"seller_name"`
	SellerPhone string         `db:"seller_phone"`
}

// ProductRepository is the sqlx-backed catalog store. It doubles as the
// chat pipeline's read-only CatalogReader.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	const query = `
		INSERT INTO products
			(id, seller_id, title, description, category, country, image_url,
			 price_cents, stock, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		product.ID.String(), product.SellerID.String(), product.Title,
		nullable(product.Description), nullable(product.Category),
		nullable(product.Country), nullable(product.ImageURL),
		product.PriceCents, product.Stock, product.Active,
		product.CreatedAt, product.UpdatedAt,
	)
	return errors.Wrap(err, "failed to insert product")
}

func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	const query = `
		UPDATE products
		SET title = ?, description = ?, category = ?, country = ?,
			image_url = ?, price_cents = ?, stock = ?, active = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		product.Title, nullable(product.Description), nullable(product.Category),
		nullable(product.Country), nullable(product.ImageURL),
		product.PriceCents, product.Stock, product.Active, product.UpdatedAt,
		product.ID.String(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update product")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	const query = `SELECT * FROM products WHERE id = ?`

	var row productRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "failed to find product")
	}
	return rowToProduct(row)
}

func (r *ProductRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Product, error) {
	query := `SELECT * FROM products WHERE 1 = 1`
	var args []interface{}

	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		query += ` AND (LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)`
		args = append(args, pattern, pattern)
	}
	if filter.Category != "" {
		query += ` AND LOWER(COALESCE(category, '')) LIKE ?`
		args = append(args, "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.ActiveOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		product, err := rowToProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// SearchActive implements the chat CatalogReader contract: every keyword
// must match somewhere in title, description or category, and the store
// pre-orders by stock and recency before the engine ranks.
func (r *ProductRepository) SearchActive(ctx context.Context, keywords []string, q chatmodel.CatalogQuery) ([]chatmodel.Listing, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	query := `
		SELECT p.*, s.store_name AS store_name, u.name AS seller_name, u.phone AS seller_phone
		FROM products p
		JOIN sellers s ON s.id = p.seller_id
		JOIN users u ON u.id = s.user_id
		WHERE p.active = 1`
	var args []interface{}

	for _, keyword := range keywords {
		pattern := "%" + strings.ToLower(keyword) + "%"
		query += `
		AND (LOWER(p.title) LIKE ? OR LOWER(COALESCE(p.description, '')) LIKE ? OR LOWER(COALESCE(p.category, '')) LIKE ?)`
		args = append(args, pattern, pattern, pattern)
	}

	if !q.IncludeOutOfStock {
		query += ` AND p.stock > 0`
	}
	if q.CategoryFilter != "" {
		query += ` AND LOWER(COALESCE(p.category, '')) LIKE ?`
		args = append(args, "%"+strings.ToLower(q.CategoryFilter)+"%")
	}
	if q.MinPriceCents != nil {
		query += ` AND p.price_cents >= ?`
		args = append(args, *q.MinPriceCents)
	}
	if q.MaxPriceCents != nil {
		query += ` AND p.price_cents <= ?`
		args = append(args, *q.MaxPriceCents)
	}

	query += ` ORDER BY p.stock DESC, p.created_at DESC`
	if q.FetchLimit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.FetchLimit)
	}

	var rows []listingRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to search products")
	}
	return rowsToListings(rows)
}

func (r *ProductRepository) ProductsByCategory(ctx context.Context, category string, limit int) ([]chatmodel.Listing, error) {
	const query = `
		SELECT p.*, s.store_name AS store_name, u.name AS seller_name, u.phone AS seller_phone
		FROM products p
		JOIN sellers s ON s.id = p.seller_id
		JOIN users u ON u.id = s.user_id
		WHERE p.active = 1 AND p.stock > 0 AND LOWER(COALESCE(p.category, '')) LIKE ?
		ORDER BY p.stock DESC, p.created_at DESC
		LIMIT ?`

	var rows []listingRow
	err := r.db.SelectContext(ctx, &rows, query, "%"+strings.ToLower(category)+"%", limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load category products")
	}
	return rowsToListings(rows)
}

func (r *ProductRepository) AvailableCategories(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT category
		FROM products
		WHERE active = 1 AND stock > 0 AND category IS NOT NULL AND category <> ''
		ORDER BY category ASC`

	var categories []string
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, errors.Wrap(err, "failed to load categories")
	}
	return categories, nil
}

// SellerDirectory answers seller-existence checks against the sellers table.
type SellerDirectory struct {
	db *sqlx.DB
}

func NewSellerDirectory(db *sqlx.DB) *SellerDirectory {
	return &SellerDirectory{db: db}
}

func (d *SellerDirectory) SellerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int
	err := d.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sellers WHERE id = ?`, id.String())
	if err != nil {
		return false, errors.Wrap(err, "failed to check seller existence")
	}
	return count > 0, nil
}

func rowToProduct(row productRow) (*model.Product, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", row.ID, err)
	}
	sellerID, err := uuid.Parse(row.SellerID)
	if err != nil {
		return nil, fmt.Errorf("invalid seller id %q: %w", row.SellerID, err)
	}
	return &model.Product{
		ID:          id,
		SellerID:    sellerID,
		Title:       row.Title,
		Description: row.Description.String,
		Category:    row.Category.String,
		Country:     row.Country.String,
		ImageURL:    row.ImageURL.String,
		PriceCents:  row.PriceCents,
		Stock:       row.Stock,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func rowsToListings(rows []listingRow) ([]chatmodel.Listing, error) {
	listings := make([]chatmodel.Listing, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", row.ID, err)
		}
		listings = append(listings, chatmodel.Listing{
			ID:          id,
			Title:       row.Title,
			Description: row.Description.String,
			Category:    row.Category.String,
			ImageURL:    row.ImageURL.String,
			PriceCents:  row.PriceCents,
			Stock:       row.Stock,
			StoreName:   row.StoreName,
			SellerName:  row.SellerName.String,
			SellerPhone: row.SellerPhone,
			CreatedAt:   row.CreatedAt,
		})
	}
	return listings, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

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

	catalogmodel "marketplace/pkg/catalog/domain/model"
	"marketplace/pkg/common/infrastructure/mysql"
	"marketplace/pkg/ordering/domain/model"
)

type orderRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	Status       string         `db:"status"`
	Payment      string         `db:"payment"`
	TotalCents   int64          `db:"total_cents"`
	CoinsGranted int            `db:"coins_granted"`
	Address      sql.NullString `db:"address"`
	Note         sql.NullString `db:"note"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type itemRow struct {
	ID         string `db:"id"`
	OrderID    string `db:"order_id"`
	ProductID  string `db:"product_id"`
	Title      string `db:"title"`
	Qty        int    `db:"qty"`
	PriceCents int64  `db:"price_cents"`
}

type ledgerRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	Coins     int            `db:"coins"`
	Reason    string         `db:"reason"`
	OrderID   sql.NullString `db:"order_id"`
	CreatedAt time.Time      `db:"created_at"`
}

// OrderRepository is the sqlx-backed order store. It also implements the
// CheckoutStore, CoinLedger, UserDirectory and ProductReader contracts
// the checkout engine depends on, so one transaction can cover them all.
type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *OrderRepository) Find(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM orders WHERE id = ?`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	var itemRows []itemRow
	err = r.db.SelectContext(ctx, &itemRows,
		`SELECT * FROM order_items WHERE order_id = ?`, id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order items")
	}
	return rowToOrder(row, itemRows)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		var itemRows []itemRow
		err = r.db.SelectContext(ctx, &itemRows,
			`SELECT * FROM order_items WHERE order_id = ?`, row.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load order items")
		}
		order, err := rowToOrder(row, itemRows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *OrderRepository) CountByUserInStatuses(ctx context.Context, userID uuid.UUID, statuses []model.OrderStatus) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := []interface{}{userID.String()}
	for _, status := range statuses {
		args = append(args, string(status))
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM orders WHERE user_id = ? AND status IN (%s)`, placeholders)
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}
	return count, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id.String())
	if err != nil {
		return errors.Wrap(err, "failed to update order status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// Commit writes the order, its items, the stock decrements and the coin
// grants in one transaction. Stock is re-validated by the conditional
// UPDATE: a decrement that would go negative affects zero rows and
// aborts the whole unit, which is what makes two concurrent checkouts
// for the last unit safe.
func (r *OrderRepository) Commit(ctx context.Context, order *model.Order, grants []model.CoinLedgerEntry) error {
	return mysql.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders
				(id, user_id, status, payment, total_cents, coins_granted,
				 address, note, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID.String(), order.UserID.String(), string(order.Status),
			string(order.Payment), order.TotalCents, order.CoinsGranted,
			nullable(order.Address), nullable(order.Note),
			order.CreatedAt, order.UpdatedAt)
		if err != nil {
			return errors.Wrap(err, "failed to insert order")
		}

		for _, item := range order.Items {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, title, qty, price_cents)
				VALUES (?, ?, ?, ?, ?, ?)`,
				item.ID.String(), order.ID.String(), item.ProductID.String(),
				item.Title, item.Qty, item.PriceCents)
			if err != nil {
				return errors.Wrap(err, "failed to insert order item")
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - ?, updated_at = ?
				WHERE id = ? AND active = 1 AND stock >= ?`,
				item.Qty, order.CreatedAt, item.ProductID.String(), item.Qty)
			if err != nil {
				return errors.Wrap(err, "failed to decrement stock")
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return errors.Wrap(err, "failed to read affected rows")
			}
			if affected == 0 {
				return fmt.Errorf("product %q: %w", item.Title, catalogmodel.ErrInsufficientStock)
			}
		}

		for _, grant := range grants {
			var orderID interface{}
			if grant.OrderID != nil {
				orderID = grant.OrderID.String()
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO coin_ledger (id, user_id, coins, reason, order_id, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				grant.ID.String(), grant.UserID.String(), grant.Coins,
				grant.Reason, orderID, grant.CreatedAt)
			if err != nil {
				return errors.Wrap(err, "failed to insert ledger entry")
			}
		}
		return nil
	})
}

func (r *OrderRepository) EntriesByUser(ctx context.Context, userID uuid.UUID) ([]model.CoinLedgerEntry, error) {
	var rows []ledgerRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM coin_ledger WHERE user_id = ? ORDER BY created_at DESC`, userID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ledger entries")
	}

	entries := make([]model.CoinLedgerEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := rowToLedgerEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *OrderRepository) HasEntrySince(ctx context.Context, userID uuid.UUID, reason string, since time.Time) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM coin_ledger WHERE user_id = ? AND reason = ? AND created_at >= ?`,
		userID.String(), reason, since)
	if err != nil {
		return false, errors.Wrap(err, "failed to check ledger entry")
	}
	return count > 0, nil
}

func (r *OrderRepository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE id = ?`, id.String())
	if err != nil {
		return false, errors.Wrap(err, "failed to check user existence")
	}
	return count > 0, nil
}

// FindProduct gives checkout a fresh read of the catalog row; the
// authoritative re-check still happens inside Commit.
func (r *OrderRepository) FindProduct(ctx context.Context, id uuid.UUID) (*model.CatalogProduct, error) {
	var row struct {
		ID         string `db:"id"`
		Title      string `db:"title"`
		PriceCents int64  `db:"price_cents"`
		Stock      int    `db:"stock"`
		Active     bool   `db:"active"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, title, price_cents, stock, active FROM products WHERE id = ?`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogmodel.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "failed to find product")
	}

	productID, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", row.ID, err)
	}
	return &model.CatalogProduct{
		ID:         productID,
		Title:      row.Title,
		PriceCents: row.PriceCents,
		Stock:      row.Stock,
		Active:     row.Active,
	}, nil
}

func rowToOrder(row orderRow, itemRows []itemRow) (*model.Order, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q: %w", row.ID, err)
	}
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", row.UserID, err)
	}
	status, err := model.ParseOrderStatus(row.Status)
	if err != nil {
		return nil, err
	}
	payment, err := model.ParsePaymentMethod(row.Payment)
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(itemRows))
	for _, ir := range itemRows {
		itemID, err := uuid.Parse(ir.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q: %w", ir.ID, err)
		}
		productID, err := uuid.Parse(ir.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", ir.ProductID, err)
		}
		items = append(items, model.Item{
			ID:         itemID,
			ProductID:  productID,
			Title:      ir.Title,
			Qty:        ir.Qty,
			PriceCents: ir.PriceCents,
		})
	}

	return &model.Order{
		ID:           id,
		UserID:       userID,
		Status:       status,
		Payment:      payment,
		TotalCents:   row.TotalCents,
		CoinsGranted: row.CoinsGranted,
		Address:      row.Address.String,
		Note:         row.Note.String,
		Items:        items,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func rowToLedgerEntry(row ledgerRow) (model.CoinLedgerEntry, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return model.CoinLedgerEntry{}, fmt.Errorf("invalid ledger id %q: %w", row.ID, err)
	}
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return model.CoinLedgerEntry{}, fmt.Errorf("invalid user id %q: %w", row.UserID, err)
	}

	entry := model.CoinLedgerEntry{
		ID:        id,
		UserID:    userID,
		Coins:     row.Coins,
		Reason:    row.Reason,
		CreatedAt: row.CreatedAt,
	}
	if row.OrderID.Valid {
		orderID, err := uuid.Parse(row.OrderID.String)
		if err != nil {
			return model.CoinLedgerEntry{}, fmt.Errorf("invalid order id %q: %w", row.OrderID.String, err)
		}
		entry.OrderID = &orderID
	}
	return entry, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

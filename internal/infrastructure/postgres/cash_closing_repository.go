package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
)

var _ repository.CashClosingRepository = (*CashClosingRepo)(nil)

// CashClosingRepo implementación de CashClosingRepository (usable con pool o tx).
type CashClosingRepo struct {
	q Querier
}

// NewCashClosingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashClosingRepository(q Querier) *CashClosingRepo {
	return &CashClosingRepo{q: q}
}

const closingColumns = `id, date, user_id,
	initial_fund, expense_1, expense_2,
	arqueo_cash, arqueo_card, arqueo_transfer,
	total_pending, total_sales, total_calculated, total_difference,
	status, created_at, updated_at`

// Create persiste un cierre de caja.
func (r *CashClosingRepo) Create(ctx context.Context, c *entity.CashClosing) error {
	query := `
		INSERT INTO cash_closings (` + closingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Date, c.UserID,
		c.Movements.InitialFund, c.Movements.Expense1, c.Movements.Expense2,
		c.Arqueo.Cash, c.Arqueo.Card, c.Arqueo.Transfer,
		c.Totals.Pending, c.Totals.SalesTotal, c.Totals.Calculated, c.Totals.Difference,
		c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash closing: %w", err)
	}
	return nil
}

// GetByID obtiene un cierre por ID; nil, nil si no existe.
func (r *CashClosingRepo) GetByID(ctx context.Context, id string) (*entity.CashClosing, error) {
	row := r.q.QueryRow(ctx, `SELECT `+closingColumns+` FROM cash_closings WHERE id = $1`, id)
	return r.scanOne(row)
}

// GetOpenByUserAndDay devuelve el cierre abierto del usuario para el día
// calendario (YYYY-MM-DD); nil, nil si no existe.
func (r *CashClosingRepo) GetOpenByUserAndDay(ctx context.Context, userID, day string) (*entity.CashClosing, error) {
	query := `
		SELECT ` + closingColumns + ` FROM cash_closings
		WHERE user_id = $1 AND date::date = $2::date AND status = 'open'
		LIMIT 1`
	return r.scanOne(r.q.QueryRow(ctx, query, userID, day))
}

// Update actualiza movimientos, arqueo, totales y estado del cierre.
func (r *CashClosingRepo) Update(ctx context.Context, c *entity.CashClosing) error {
	query := `
		UPDATE cash_closings
		SET initial_fund = $2, expense_1 = $3, expense_2 = $4,
		    arqueo_cash = $5, arqueo_card = $6, arqueo_transfer = $7,
		    total_pending = $8, total_sales = $9, total_calculated = $10, total_difference = $11,
		    status = $12, updated_at = $13
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		c.ID,
		c.Movements.InitialFund, c.Movements.Expense1, c.Movements.Expense2,
		c.Arqueo.Cash, c.Arqueo.Card, c.Arqueo.Transfer,
		c.Totals.Pending, c.Totals.SalesTotal, c.Totals.Calculated, c.Totals.Difference,
		c.Status, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cash closing: %w", err)
	}
	return nil
}

// List lista cierres, los más recientes primero.
func (r *CashClosingRepo) List(ctx context.Context, limit, offset int) ([]*entity.CashClosing, error) {
	query := `SELECT ` + closingColumns + ` FROM cash_closings
		ORDER BY date DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cash closings: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashClosing
	for rows.Next() {
		c, err := scanClosing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash closing: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CashClosingRepo) scanOne(row pgx.Row) (*entity.CashClosing, error) {
	c, err := scanClosing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash closing: %w", err)
	}
	return c, nil
}

func scanClosing(row pgx.Row) (*entity.CashClosing, error) {
	var c entity.CashClosing
	err := row.Scan(
		&c.ID, &c.Date, &c.UserID,
		&c.Movements.InitialFund, &c.Movements.Expense1, &c.Movements.Expense2,
		&c.Arqueo.Cash, &c.Arqueo.Card, &c.Arqueo.Transfer,
		&c.Totals.Pending, &c.Totals.SalesTotal, &c.Totals.Calculated, &c.Totals.Difference,
		&c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

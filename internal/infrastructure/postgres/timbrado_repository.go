package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
)

var _ repository.TimbradoRepository = (*TimbradoRepo)(nil)

// TimbradoRepo implementación de TimbradoRepository (usable con pool o tx).
type TimbradoRepo struct {
	q Querier
}

// NewTimbradoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTimbradoRepository(q Querier) *TimbradoRepo {
	return &TimbradoRepo{q: q}
}

const timbradoColumns = `id, code, issued_at, expires_at, establishment, branch,
	last_invoice_number, max_invoices, created_at, updated_at`

// Create persiste un timbrado nuevo. El código es único.
func (r *TimbradoRepo) Create(ctx context.Context, t *entity.Timbrado) error {
	query := `
		INSERT INTO timbrados (` + timbradoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Code, t.IssuedAt, t.ExpiresAt, t.Establishment, t.Branch,
		t.LastInvoiceNumber, t.MaxInvoices, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert timbrado: %w", err)
	}
	return nil
}

// GetByID obtiene un timbrado por ID; nil, nil si no existe.
func (r *TimbradoRepo) GetByID(ctx context.Context, id string) (*entity.Timbrado, error) {
	return r.getOne(ctx, `SELECT `+timbradoColumns+` FROM timbrados WHERE id = $1`, id)
}

// GetByCode obtiene un timbrado por código; nil, nil si no existe.
func (r *TimbradoRepo) GetByCode(ctx context.Context, code string) (*entity.Timbrado, error) {
	return r.getOne(ctx, `SELECT `+timbradoColumns+` FROM timbrados WHERE code = $1`, code)
}

// List lista timbrados, los emitidos más recientemente primero.
func (r *TimbradoRepo) List(ctx context.Context) ([]*entity.Timbrado, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+timbradoColumns+` FROM timbrados ORDER BY issued_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list timbrados: %w", err)
	}
	defer rows.Close()
	var list []*entity.Timbrado
	for rows.Next() {
		t, err := scanTimbrado(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timbrado: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// FindActive devuelve el timbrado vigente en now; si la ventana de más de uno
// contiene el instante, gana el de issued_at más antiguo. nil, nil si no hay.
func (r *TimbradoRepo) FindActive(ctx context.Context, now time.Time) (*entity.Timbrado, error) {
	query := `
		SELECT ` + timbradoColumns + `
		FROM timbrados
		WHERE issued_at <= $1 AND expires_at >= $1
		ORDER BY issued_at ASC
		LIMIT 1`
	return r.getOne(ctx, query, now)
}

// IssueNumber incrementa el correlativo respetando el cupo, en una sola
// sentencia condicional: con peticiones concurrentes cada una recibe un valor
// distinto y nadie pasa de max_invoices.
func (r *TimbradoRepo) IssueNumber(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE timbrados
		SET last_invoice_number = last_invoice_number + 1, updated_at = now()
		WHERE id = $1 AND last_invoice_number < max_invoices
		RETURNING last_invoice_number`
	var n int64
	err := r.q.QueryRow(ctx, query, id).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// La fila existe pero no cumplió la condición, o no existe.
			t, gerr := r.GetByID(ctx, id)
			if gerr != nil {
				return 0, gerr
			}
			if t == nil {
				return 0, domain.ErrNotFound
			}
			return 0, domain.ErrInvoiceQuotaExceeded
		}
		return 0, fmt.Errorf("issue invoice number: %w", err)
	}
	return n, nil
}

func (r *TimbradoRepo) getOne(ctx context.Context, query string, arg any) (*entity.Timbrado, error) {
	t, err := scanTimbrado(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get timbrado: %w", err)
	}
	return t, nil
}

func scanTimbrado(row pgx.Row) (*entity.Timbrado, error) {
	var t entity.Timbrado
	err := row.Scan(
		&t.ID, &t.Code, &t.IssuedAt, &t.ExpiresAt, &t.Establishment, &t.Branch,
		&t.LastInvoiceNumber, &t.MaxInvoices, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

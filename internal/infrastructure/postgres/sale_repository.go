package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository (usable con pool o tx).
// Líneas y pagos se guardan como JSONB dentro de la fila de la venta:
// forman parte del agregado y nunca se consultan por separado.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

type saleLineJSON struct {
	ProductID  string          `json:"product_id"`
	VariantID  string          `json:"variant_id,omitempty"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit,omitempty"`
	Quantity   int64           `json:"quantity"`
	IVARate    int64           `json:"iva_rate"`
	IVAAmount  decimal.Decimal `json:"iva_amount"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type salePaymentJSON struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

func marshalLines(items []entity.LineItem) ([]byte, error) {
	out := make([]saleLineJSON, 0, len(items))
	for _, it := range items {
		out = append(out, saleLineJSON(it))
	}
	return json.Marshal(out)
}

func marshalPayments(payments []entity.PaymentEntry) ([]byte, error) {
	out := make([]salePaymentJSON, 0, len(payments))
	for _, p := range payments {
		out = append(out, salePaymentJSON(p))
	}
	return json.Marshal(out)
}

const saleColumns = `id, daily_id, products, payments, total_amount,
	gravada_10, gravada_5, exenta, iva_10, iva_5,
	ruc, customer_name, status, stage, mode, user_id,
	invoiced, invoice_number, timbrado_number, timbrado_init, timbrado_id,
	date, created_at, updated_at`

// Create persiste la venta completa con sus líneas y pagos.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	products, err := marshalLines(sale.Products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}
	payments, err := marshalPayments(sale.Payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err = r.q.Exec(ctx, query,
		sale.ID, sale.DailyID, products, payments, sale.TotalAmount,
		sale.Totals.Gravada10, sale.Totals.Gravada5, sale.Totals.Exenta,
		sale.Totals.IVA10, sale.Totals.IVA5,
		nullIfEmpty(sale.RUC), nullIfEmpty(sale.CustomerName),
		sale.Status, sale.Stage, sale.Mode, nullIfEmpty(sale.UserID),
		sale.Invoiced, nullIfEmpty(sale.InvoiceNumber), nullIfEmpty(sale.TimbradoNumber),
		sale.TimbradoInit, nullIfEmpty(sale.TimbradoID),
		sale.Date, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// GetByID obtiene una venta por ID; nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	row := r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

// List lista ventas según filtro, las más recientes primero.
func (r *SaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	args := []any{}
	i := 1
	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", i)
		args = append(args, *filter.From)
		i++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND date < $%d", i)
		args = append(args, *filter.To)
		i++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, filter.Status)
		i++
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	return collectSales(rows)
}

// ListByDay ventas cuyo date cae en el día calendario dado (YYYY-MM-DD).
func (r *SaleRepo) ListByDay(ctx context.Context, day string) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE date::date = $1::date ORDER BY daily_id`
	rows, err := r.q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list sales by day: %w", err)
	}
	defer rows.Close()
	return collectSales(rows)
}

// Update reemplaza líneas, pagos, totales y metadatos. Los campos de
// facturación no se tocan: solo MarkInvoiced escribe sobre ellos.
func (r *SaleRepo) Update(ctx context.Context, sale *entity.Sale) error {
	products, err := marshalLines(sale.Products)
	if err != nil {
		return fmt.Errorf("marshal products: %w", err)
	}
	payments, err := marshalPayments(sale.Payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}
	query := `
		UPDATE sales
		SET products = $2, payments = $3, total_amount = $4,
		    gravada_10 = $5, gravada_5 = $6, exenta = $7, iva_10 = $8, iva_5 = $9,
		    ruc = $10, customer_name = $11, status = $12, stage = $13, mode = $14,
		    updated_at = $15
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		sale.ID, products, payments, sale.TotalAmount,
		sale.Totals.Gravada10, sale.Totals.Gravada5, sale.Totals.Exenta,
		sale.Totals.IVA10, sale.Totals.IVA5,
		nullIfEmpty(sale.RUC), nullIfEmpty(sale.CustomerName),
		sale.Status, sale.Stage, sale.Mode, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia estado y etapa; el RUC solo se escribe si viene no vacío.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id, status, stage, ruc string) error {
	query := `
		UPDATE sales
		SET status = $2, stage = $3, ruc = COALESCE($4, ruc), updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status, stage, nullIfEmpty(ruc))
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	return nil
}

// UpdateStage cambia solo la etapa de preparación.
func (r *SaleRepo) UpdateStage(ctx context.Context, id, stage string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sales SET stage = $2, updated_at = now() WHERE id = $1`, id, stage)
	if err != nil {
		return fmt.Errorf("update sale stage: %w", err)
	}
	return nil
}

// AddPayment agrega un pago al arreglo JSONB de la venta.
func (r *SaleRepo) AddPayment(ctx context.Context, id string, payment entity.PaymentEntry) error {
	entry, err := json.Marshal(salePaymentJSON(payment))
	if err != nil {
		return fmt.Errorf("marshal payment: %w", err)
	}
	query := `
		UPDATE sales
		SET payments = payments || $2::jsonb, updated_at = now()
		WHERE id = $1`
	_, err = r.q.Exec(ctx, query, id, entry)
	if err != nil {
		return fmt.Errorf("add payment: %w", err)
	}
	return nil
}

// MarkInvoiced fija los datos fiscales con compare-and-set sobre
// invoiced = false. La condición en el WHERE hace que dos peticiones
// concurrentes nunca facturen la misma venta dos veces: solo una fila
// coincide y la otra llamada recibe ok = false.
func (r *SaleRepo) MarkInvoiced(ctx context.Context, id string, inv repository.InvoiceAssignment) (bool, error) {
	query := `
		UPDATE sales
		SET invoiced = true,
		    invoice_number = $2,
		    timbrado_number = $3,
		    timbrado_init = $4,
		    timbrado_id = $5,
		    updated_at = now()
		WHERE id = $1 AND invoiced = false`
	tag, err := r.q.Exec(ctx, query,
		id, inv.InvoiceNumber, inv.TimbradoNumber, inv.TimbradoInit, inv.TimbradoID)
	if err != nil {
		return false, fmt.Errorf("mark invoiced: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var products, payments []byte
	var ruc, customerName, userID, invoiceNumber, timbradoNumber, timbradoID *string
	err := row.Scan(
		&s.ID, &s.DailyID, &products, &payments, &s.TotalAmount,
		&s.Totals.Gravada10, &s.Totals.Gravada5, &s.Totals.Exenta,
		&s.Totals.IVA10, &s.Totals.IVA5,
		&ruc, &customerName, &s.Status, &s.Stage, &s.Mode, &userID,
		&s.Invoiced, &invoiceNumber, &timbradoNumber, &s.TimbradoInit, &timbradoID,
		&s.Date, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.RUC = derefStr(ruc)
	s.CustomerName = derefStr(customerName)
	s.UserID = derefStr(userID)
	s.InvoiceNumber = derefStr(invoiceNumber)
	s.TimbradoNumber = derefStr(timbradoNumber)
	s.TimbradoID = derefStr(timbradoID)

	var lines []saleLineJSON
	if err := json.Unmarshal(products, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	for _, l := range lines {
		s.Products = append(s.Products, entity.LineItem(l))
	}
	var pays []salePaymentJSON
	if err := json.Unmarshal(payments, &pays); err != nil {
		return nil, fmt.Errorf("unmarshal payments: %w", err)
	}
	for _, p := range pays {
		s.Payments = append(s.Payments, entity.PaymentEntry(p))
	}
	return &s, nil
}

func collectSales(rows pgx.Rows) ([]*entity.Sale, error) {
	var list []*entity.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, sale)
	}
	return list, rows.Err()
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type variantJSON struct {
	ID    string          `json:"id"`
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

const productColumns = `id, name, price, iva_rate, category_id, unit, image_url,
	stock, variants, active, created_at, updated_at`

// Create persiste un producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	variants, err := marshalVariants(p.Variants)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.q.Exec(ctx, query,
		p.ID, p.Name, p.Price, p.IVARate, nullIfEmpty(p.CategoryID),
		nullIfEmpty(p.Unit), nullIfEmpty(p.ImageURL), p.Stock, variants,
		p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID; nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List lista productos activos, opcionalmente filtrados por categoría.
func (r *ProductRepo) List(ctx context.Context, categoryID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE active = true`
	args := []any{}
	i := 1
	if categoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", i)
		args = append(args, categoryID)
		i++
	}
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	variants, err := marshalVariants(p.Variants)
	if err != nil {
		return err
	}
	query := `
		UPDATE products
		SET name = $2, price = $3, iva_rate = $4, category_id = $5, unit = $6,
		    image_url = $7, stock = $8, variants = $9, updated_at = $10
		WHERE id = $1`
	_, err = r.q.Exec(ctx, query,
		p.ID, p.Name, p.Price, p.IVARate, nullIfEmpty(p.CategoryID),
		nullIfEmpty(p.Unit), nullIfEmpty(p.ImageURL), p.Stock, variants, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete baja lógica: el producto deja de listarse pero las ventas viejas
// conservan su copia de nombre y precio.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE products SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func marshalVariants(variants []entity.ProductVariant) ([]byte, error) {
	out := make([]variantJSON, 0, len(variants))
	for _, v := range variants {
		out = append(out, variantJSON(v))
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal variants: %w", err)
	}
	return b, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var categoryID, unit, imageURL *string
	var variants []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.IVARate, &categoryID, &unit, &imageURL,
		&p.Stock, &variants, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CategoryID = derefStr(categoryID)
	p.Unit = derefStr(unit)
	p.ImageURL = derefStr(imageURL)
	var vs []variantJSON
	if err := json.Unmarshal(variants, &vs); err != nil {
		return nil, fmt.Errorf("unmarshal variants: %w", err)
	}
	for _, v := range vs {
		p.Variants = append(p.Variants, entity.ProductVariant(v))
	}
	return &p, nil
}

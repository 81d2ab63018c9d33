// Package catalog cubre el mantenimiento del menú del punto de venta:
// productos, categorías y clientes.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mbenitez/factupos-api/internal/application/dto"
	"github.com/mbenitez/factupos-api/internal/domain"
	"github.com/mbenitez/factupos-api/internal/domain/entity"
	"github.com/mbenitez/factupos-api/internal/domain/repository"
)

// ProductUseCase casos de uso de productos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.SaveProductRequest) (*dto.ProductResponse, error) {
	now := time.Now()
	p := &entity.Product{
		ID:         uuid.New().String(),
		Name:       in.Name,
		Price:      in.Price,
		IVARate:    in.IVARate,
		CategoryID: in.CategoryID,
		Unit:       in.Unit,
		ImageURL:   in.ImageURL,
		Stock:      in.Stock,
		Variants:   toVariants(in.Variants),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Get devuelve un producto por id.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// List lista productos, opcionalmente por categoría.
func (uc *ProductUseCase) List(ctx context.Context, categoryID string, page dto.PageRequest) ([]*dto.ProductResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, categoryID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	return out, nil
}

// Update actualiza un producto existente.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.SaveProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	p.Name = in.Name
	p.Price = in.Price
	p.IVARate = in.IVARate
	p.CategoryID = in.CategoryID
	p.Unit = in.Unit
	p.ImageURL = in.ImageURL
	p.Stock = in.Stock
	p.Variants = toVariants(in.Variants)
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Delete elimina un producto.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

// CategoryUseCase casos de uso de categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.SaveCategoryRequest) (*dto.CategoryResponse, error) {
	now := time.Now()
	c := &entity.Category{ID: uuid.New().String(), Name: in.Name, CreatedAt: now, UpdatedAt: now}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name}, nil
}

// List lista todas las categorías.
func (uc *CategoryUseCase) List(ctx context.Context) ([]*dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, &dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// Update renombra una categoría.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.SaveCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Name = in.Name
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name}, nil
}

// Delete elimina una categoría.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

// CustomerUseCase casos de uso de clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un cliente; el RUC es único.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.SaveCustomerRequest) (*dto.CustomerResponse, error) {
	existing, err := uc.repo.GetByRUC(ctx, in.RUC)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	c := &entity.Customer{
		ID:    uuid.New().String(),
		RUC:   in.RUC,
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Address: entity.CustomerAddress{
			Street:       in.Address.Street,
			City:         in.Address.City,
			Neighborhood: in.Address.Neighborhood,
			Reference:    in.Address.Reference,
		},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Get devuelve un cliente por id.
func (uc *CustomerUseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(c), nil
}

// List lista clientes.
func (uc *CustomerUseCase) List(ctx context.Context, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// Deactivate baja lógica del cliente.
func (uc *CustomerUseCase) Deactivate(ctx context.Context, id string) error {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Deactivate(ctx, id)
}

func toVariants(in []dto.ProductVariantDTO) []entity.ProductVariant {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.ProductVariant, 0, len(in))
	for _, v := range in {
		id := v.ID
		if id == "" {
			id = uuid.New().String()
		}
		out = append(out, entity.ProductVariant{ID: id, Size: v.Size, Price: v.Price})
	}
	return out
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		IVARate:    p.IVARate,
		CategoryID: p.CategoryID,
		Unit:       p.Unit,
		ImageURL:   p.ImageURL,
		Stock:      p.Stock,
		Active:     p.Active,
	}
	for _, v := range p.Variants {
		resp.Variants = append(resp.Variants, dto.ProductVariantDTO{ID: v.ID, Size: v.Size, Price: v.Price})
	}
	return resp
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:     c.ID,
		RUC:    c.RUC,
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Active: c.Active,
	}
}

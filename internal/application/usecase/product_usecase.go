package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

// Motivos de los movimientos generados desde el catálogo.
const (
	ReasonInitialStock = "Stock inicial"
	ReasonManualAdjust = "Ajuste manual"
)

// ProductUseCase casos de uso CRUD para productos. Stock se maneja solo vía movimientos.
type ProductUseCase struct {
	tx         repository.TxRunner
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	ledger     *inventory.StockLedger
	log        zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	tx repository.TxRunner,
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	ledger *inventory.StockLedger,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{tx: tx, repo: repo, categories: categories, ledger: ledger, log: log}
}

// Create crea un producto. InitialStock > 0 se registra como entrada "Stock inicial"
// en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest, actorID string) (*dto.ProductResponse, error) {
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	threshold := entity.DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		threshold = *in.LowStockThreshold
	}
	now := time.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		Reference:         strings.TrimSpace(in.Reference),
		Barcode:           in.Barcode,
		Name:              in.Name,
		Description:       in.Description,
		CategoryID:        in.CategoryID,
		Brand:             in.Brand,
		PurchasePrice:     in.PurchasePrice,
		SalePrice:         in.SalePrice,
		LowStockThreshold: threshold,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if product.PurchasePrice.IsNegative() || product.SalePrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}

	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		existing, err := r.Products.GetByReference(ctx, product.Reference)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialStock <= 0 {
			return nil
		}
		_, err = uc.ledger.RecordMovementInTx(ctx, r, product, inventory.MovementInput{
			ProductID: product.ID,
			Kind:      entity.MovementIn,
			Quantity:  in.InitialStock,
			Reason:    ReasonInitialStock,
			ActorID:   actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("reference", product.Reference).Int("stock", product.Stock).Msg("producto creado")
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualiza datos de catálogo. Un Stock distinto del actual se registra como
// ajuste "Ajuste manual" en el libro; nunca se escribe directo.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest, actorID string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Brand != nil {
		product.Brand = *in.Brand
	}
	if in.PurchasePrice != nil {
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if product.PurchasePrice.IsNegative() || product.SalePrice.IsNegative() {
		return nil, domain.ErrInvalidPrice
	}
	if in.LowStockThreshold != nil {
		product.LowStockThreshold = *in.LowStockThreshold
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	if in.Stock != nil {
		mov, err := uc.ledger.SetStock(ctx, id, *in.Stock, ReasonManualAdjust, actorID)
		if err != nil {
			return nil, err
		}
		if mov != nil {
			product.Stock = mov.QuantityAfter
		}
	}
	return ToProductResponse(product), nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Delete elimina un producto sin historial. Con movimientos o líneas devuelve ErrConflict;
// en ese caso se desactiva con Update.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// CreateCategory alta de categoría.
func (uc *ProductUseCase) CreateCategory(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}, nil
}

// ListCategories categorías por nombre.
func (uc *ProductUseCase) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out, nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// ToProductResponse producto con valores derivados (margen, valor de stock, alerta).
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                p.ID,
		Reference:         p.Reference,
		Barcode:           p.Barcode,
		Name:              p.Name,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		Brand:             p.Brand,
		PurchasePrice:     p.PurchasePrice,
		SalePrice:         p.SalePrice,
		MarginPercent:     p.MarginPercent(),
		Stock:             p.Stock,
		StockValue:        p.StockValue(),
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// Package inventory casos de uso del libro de stock: todo cambio de stock pasa
// por aquí, con bloqueo de la fila del producto y su movimiento de auditoría.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

// StockLedger registra movimientos de stock de forma transaccional.
type StockLedger struct {
	tx        repository.TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewStockLedger construye el libro de stock.
func NewStockLedger(
	tx repository.TxRunner,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	log zerolog.Logger,
) *StockLedger {
	return &StockLedger{
		tx:        tx,
		products:  products,
		movements: movements,
		log:       log,
		now:       time.Now,
	}
}

// MovementInput datos de un movimiento. Decrease solo aplica a ADJUST.
// UnitCost (opcional, entradas) recalcula el precio de compra por promedio ponderado.
type MovementInput struct {
	ProductID string
	Kind      entity.MovementKind
	Quantity  int
	Decrease  bool
	Reason    string
	LotNumber string
	Reference string
	ActorID   string
	UnitCost  decimal.Decimal
}

func (in MovementInput) validate() error {
	if strings.TrimSpace(in.ProductID) == "" {
		return fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Kind)
	}
	if in.Quantity <= 0 || in.Quantity > entity.MaxQuantity {
		return domain.ErrInvalidQuantity
	}
	if in.UnitCost.IsNegative() {
		return domain.ErrInvalidPrice
	}
	return nil
}

// RecordMovement bloquea el producto, aplica el movimiento y lo registra en una sola transacción.
// Con stock insuficiente devuelve ErrInsufficientStock y el stock queda igual.
func (l *StockLedger) RecordMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := l.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		mov, err = l.RecordMovementInTx(ctx, r, p, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordMovementInTx aplica el movimiento con los repos de la transacción del llamador.
// product debe haberse leído con GetForUpdate en esa misma transacción; su Stock se
// actualiza en memoria para que líneas siguientes del mismo documento lo vean.
func (l *StockLedger) RecordMovementInTx(
	ctx context.Context,
	r repository.Repos,
	product *entity.Product,
	in MovementInput,
) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	before := product.Stock
	after, err := inventory.Apply(before, in.Kind, in.Quantity, in.Decrease)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: %s tiene %d, se piden %d", err, product.Label(), before, in.Quantity)
		}
		return nil, err
	}

	if in.Kind == entity.MovementIn && in.UnitCost.IsPositive() {
		cost := inventory.WeightedCost(before, product.PurchasePrice, in.Quantity, in.UnitCost)
		if err := r.Products.UpdatePurchasePrice(ctx, product.ID, cost); err != nil {
			return nil, err
		}
		product.PurchasePrice = cost
	}
	if err := r.Products.UpdateStock(ctx, product.ID, after); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      product.ID,
		Kind:           in.Kind,
		Quantity:       in.Quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         in.Reason,
		LotNumber:      in.LotNumber,
		Reference:      in.Reference,
		ActorID:        in.ActorID,
		UnitCost:       in.UnitCost,
		CreatedAt:      l.now(),
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	product.Stock = after

	l.log.Debug().
		Str("product_id", product.ID).
		Str("kind", string(in.Kind)).
		Int("quantity", in.Quantity).
		Int("before", before).
		Int("after", after).
		Str("actor", in.ActorID).
		Msg("movimiento de stock registrado")
	return mov, nil
}

// SetStock lleva el stock a target mediante un ADJUST. Devuelve nil si no hay cambio.
func (l *StockLedger) SetStock(ctx context.Context, productID string, target int, reason, actorID string) (*entity.StockMovement, error) {
	if target < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var mov *entity.StockMovement
	err := l.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		qty, decrease, ok := inventory.AdjustmentFor(p.Stock, target)
		if !ok {
			return nil
		}
		mov, err = l.RecordMovementInTx(ctx, r, p, MovementInput{
			ProductID: productID,
			Kind:      entity.MovementAdjust,
			Quantity:  qty,
			Decrease:  decrease,
			Reason:    reason,
			ActorID:   actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// IsLowStock stock en o por debajo del umbral del producto.
func (l *StockLedger) IsLowStock(p *entity.Product) bool {
	return p.IsLowStock()
}

// ListMovements historial del producto, más reciente primero.
func (l *StockLedger) ListMovements(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return l.movements.ListByProduct(ctx, productID, normLimit(limit), max(offset, 0))
}

// ListAll últimos movimientos de todos los productos.
func (l *StockLedger) ListAll(ctx context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	return l.movements.List(ctx, normLimit(limit), max(offset, 0))
}

// Verify reconstruye el stock del producto desde su historial y lo compara con el guardado.
// Bloquea la fila para leer producto e historial en el mismo estado.
func (l *StockLedger) Verify(ctx context.Context, productID string) (inventory.Report, error) {
	var report inventory.Report
	err := l.tx.Run(ctx, func(r repository.Repos) error {
		p, err := r.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		history, err := r.Movements.History(ctx, productID)
		if err != nil {
			return err
		}
		report = inventory.Replay(p, history)
		return nil
	})
	if err != nil {
		return report, err
	}
	if !report.Consistent {
		l.log.Warn().Str("product_id", productID).Strs("divergences", report.Divergences).Msg("libro de stock inconsistente")
	}
	return report, nil
}

func normLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 50
	}
	return limit
}

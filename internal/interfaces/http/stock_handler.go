package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

// StockHandler registro manual de movimientos (entradas, ajustes, devoluciones).
type StockHandler struct {
	ledger *inventory.StockLedger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.StockLedger) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, kind, quantity, direction (ADJUST), unit_cost (IN)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	cost := decimal.Zero
	if in.UnitCost != nil {
		cost = *in.UnitCost
	}
	mov, err := h.ledger.RecordMovement(c.UserContext(), inventory.MovementInput{
		ProductID: in.ProductID,
		Kind:      entity.MovementKind(in.Kind),
		Quantity:  in.Quantity,
		Decrease:  in.Direction == "decrease",
		Reason:    in.Reason,
		LotNumber: in.LotNumber,
		ActorID:   GetUserID(c),
		UnitCost:  cost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(mov))
}

// List godoc
// @Summary      Últimos movimientos de todos los productos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(50)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.MovementResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	list, err := h.ledger.ListAll(c.UserContext(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToMovementResponses(list))
}

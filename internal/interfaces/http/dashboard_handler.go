package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/biomed-stock/internal/application/analytics"
)

// DashboardHandler maneja el tablero de inicio.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen del perfil del usuario.
// GET /api/dashboard
//
// Gerente: todo. Técnico: stock bajo y últimos movimientos. Comercial de
// sala: ventas del mes, pedidos pendientes y stock bajo. Comercial de
// terreno: pedidos y cotizaciones abiertas.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetRole(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Package analytics contiene el tablero de inicio por perfil de usuario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

const (
	dashboardTopProducts = 5  // productos en el widget de más vendidos
	dashboardMovements   = 10 // últimos movimientos mostrados
	countLimit           = 1000
)

// DashboardUseCase arma el resumen de inicio según el perfil.
//
// Fuentes: AnalyticsRepository (agregados read-only), el libro de stock y el listado de documentos.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	documents     repository.DocumentRepository
	replenishment *inventory.ReplenishmentUseCase
	ledger        *inventory.StockLedger
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	analyticsRepo repository.AnalyticsRepository,
	documents repository.DocumentRepository,
	replenishment *inventory.ReplenishmentUseCase,
	ledger *inventory.StockLedger,
) *DashboardUseCase {
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		documents:     documents,
		replenishment: replenishment,
		ledger:        ledger,
		now:           time.Now,
	}
}

type widgets struct {
	stock    bool
	sales    bool
	orders   bool
	quotes   bool
	activity bool
}

func widgetsFor(role string) widgets {
	switch role {
	case entity.RoleManager:
		return widgets{stock: true, sales: true, orders: true, quotes: true, activity: true}
	case entity.RoleTechnician:
		return widgets{stock: true, activity: true}
	case entity.RoleCommercialShowroom:
		return widgets{sales: true, orders: true, stock: true}
	case entity.RoleCommercialTerrain:
		return widgets{orders: true, quotes: true}
	}
	return widgets{}
}

// GetSummary construye el DashboardSummaryDTO del perfil. Las consultas de cada
// widget corren en paralelo.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, role string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	w := widgetsFor(role)
	out := &dto.DashboardSummaryDTO{Role: role, DateLabel: monthLabel(now)}

	type result struct {
		name  string
		apply func()
		err   error
	}
	ch := make(chan result, 6)
	pending := 0
	spawn := func(name string, fn func() (func(), error)) {
		pending++
		go func() {
			apply, err := fn()
			ch <- result{name: name, apply: apply, err: err}
		}()
	}

	if w.stock {
		spawn("stock bajo", func() (func(), error) {
			low, err := uc.replenishment.LowStock(ctx)
			if err != nil {
				return nil, err
			}
			return func() {
				out.LowStockCount = len(low)
				out.LowStock = low
			}, nil
		})
		if role == entity.RoleManager {
			spawn("valor de stock", func() (func(), error) {
				v, err := uc.analyticsRepo.StockValue(ctx)
				if err != nil {
					return nil, err
				}
				return func() { v := v.Round(2); out.StockValue = &v }, nil
			})
		}
	}
	if w.sales {
		spawn("ventas del mes", func() (func(), error) {
			modes, err := uc.analyticsRepo.SalesByPaymentMode(ctx, monthStart, now)
			if err != nil {
				return nil, err
			}
			total := decimal.Zero
			list := make([]dto.SalesByModeDTO, 0, len(modes))
			for _, m := range modes {
				total = total.Add(m.Total)
				list = append(list, dto.SalesByModeDTO{PaymentMode: m.PaymentMode, Count: m.Count, Total: m.Total})
			}
			return func() {
				total := total.Round(2)
				out.MonthlySales = &total
				out.SalesByMode = list
			}, nil
		})
		spawn("más vendidos", func() (func(), error) {
			top, err := uc.analyticsRepo.TopProducts(ctx, monthStart, now, dashboardTopProducts)
			if err != nil {
				return nil, err
			}
			list := make([]dto.TopProductDTO, 0, len(top))
			for _, t := range top {
				list = append(list, dto.TopProductDTO{ProductID: t.ProductID, Reference: t.Reference, Name: t.Name, Units: t.Units, Revenue: t.Revenue})
			}
			return func() { out.TopProducts = list }, nil
		})
	}
	if w.orders {
		spawn("pedidos pendientes", func() (func(), error) {
			n, err := uc.count(ctx, entity.DocumentOrder, entity.OrderPending)
			return func() { out.PendingOrders = n }, err
		})
	}
	if w.quotes {
		spawn("cotizaciones abiertas", func() (func(), error) {
			drafts, err := uc.count(ctx, entity.DocumentQuote, entity.QuoteDraft)
			if err != nil {
				return nil, err
			}
			sent, err := uc.count(ctx, entity.DocumentQuote, entity.QuoteSent)
			return func() { out.OpenQuotes = drafts + sent }, err
		})
	}
	if w.activity {
		spawn("últimos movimientos", func() (func(), error) {
			ms, err := uc.ledger.ListAll(ctx, dashboardMovements, 0)
			if err != nil {
				return nil, err
			}
			list := inventory.ToMovementResponses(ms)
			return func() { out.RecentMovements = list }, nil
		})
	}

	var firstErr error
	for i := 0; i < pending; i++ {
		r := <-ch
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("dashboard: %s: %w", r.name, r.err)
			}
			continue
		}
		r.apply()
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (uc *DashboardUseCase) count(ctx context.Context, kind entity.DocumentKind, status string) (int, error) {
	docs, err := uc.documents.List(ctx, repository.DocumentFilter{Kind: kind, Status: status, Limit: countLimit})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

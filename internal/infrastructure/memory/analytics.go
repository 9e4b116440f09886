package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo agregados calculados recorriendo el estado.
type AnalyticsRepo struct {
	h handle
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *AnalyticsRepo) SalesByPaymentMode(_ context.Context, from, to time.Time) ([]repository.SalesByModeResult, error) {
	byMode := map[string]*repository.SalesByModeResult{}
	err := r.h.do(func(st *state) error {
		for _, d := range st.documents {
			if d.Kind != entity.DocumentSale || !inRange(d.CreatedAt, from, to) {
				continue
			}
			res, ok := byMode[d.PaymentMode]
			if !ok {
				res = &repository.SalesByModeResult{PaymentMode: d.PaymentMode, Total: decimal.Zero}
				byMode[d.PaymentMode] = res
			}
			res.Count++
			res.Total = res.Total.Add(d.Total)
		}
		return nil
	})
	out := make([]repository.SalesByModeResult, 0, len(byMode))
	for _, v := range byMode {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, err
}

func (r *AnalyticsRepo) TopProducts(_ context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	byProduct := map[string]*repository.TopProductResult{}
	err := r.h.do(func(st *state) error {
		for id, d := range st.documents {
			if d.Kind != entity.DocumentSale || !inRange(d.CreatedAt, from, to) {
				continue
			}
			for _, l := range st.lines[id] {
				res, ok := byProduct[l.ProductID]
				if !ok {
					p := st.products[l.ProductID]
					res = &repository.TopProductResult{ProductID: l.ProductID, Reference: p.Reference, Name: p.Name, Revenue: decimal.Zero}
					byProduct[l.ProductID] = res
				}
				res.Units += l.Quantity
				res.Revenue = res.Revenue.Add(l.Subtotal())
			}
		}
		return nil
	})
	out := make([]repository.TopProductResult, 0, len(byProduct))
	for _, v := range byProduct {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].ProductID < out[j].ProductID
	})
	return page(out, limit, 0), err
}

func (r *AnalyticsRepo) StockValue(_ context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.h.do(func(st *state) error {
		for _, p := range st.products {
			if p.Active {
				total = total.Add(p.StockValue())
			}
		}
		return nil
	})
	return total, err
}

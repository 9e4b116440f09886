package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria.
type ProductRepo struct {
	h handle
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if strings.EqualFold(other.Reference, p.Reference) {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByReference(_ context.Context, reference string) (*entity.Product, error) {
	var out *entity.Product
	err := r.h.do(func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.Reference, reference) {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.h.do(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for id, other := range st.products {
			if id != p.ID && strings.EqualFold(other.Reference, p.Reference) {
				return domain.ErrDuplicate
			}
		}
		stock := cur.Stock
		cur = *p
		cur.Stock = stock
		st.products[p.ID] = cur
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, productID string, stock int) error {
	return r.h.do(func(st *state) error {
		cur, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Stock = stock
		cur.UpdatedAt = time.Now()
		st.products[productID] = cur
		return nil
	})
}

func (r *ProductRepo) UpdatePurchasePrice(_ context.Context, productID string, price decimal.Decimal) error {
	return r.h.do(func(st *state) error {
		cur, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.PurchasePrice = price
		st.products[productID] = cur
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.h.do(func(st *state) error {
		q := strings.ToLower(strings.TrimSpace(f.Query))
		for _, p := range st.products {
			if f.OnlyActive && !p.Active {
				continue
			}
			if f.OnlyLowStock && !p.IsLowStock() {
				continue
			}
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				continue
			}
			if q != "" && !strings.Contains(strings.ToLower(p.Reference), q) &&
				!strings.Contains(strings.ToLower(p.Name), q) &&
				!strings.Contains(strings.ToLower(p.Barcode), q) {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return nil
		}
		for _, m := range st.movements {
			if m.ProductID == id {
				return domain.ErrConflict
			}
		}
		for _, lines := range st.lines {
			for _, l := range lines {
				if l.ProductID == id {
					return domain.ErrConflict
				}
			}
		}
		delete(st.products, id)
		return nil
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo historial de movimientos en memoria (solo inserción).
type MovementRepo struct {
	h handle
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.h.do(func(st *state) error {
		st.seq++
		m.Seq = st.seq
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	out, err := r.filter(func(m *entity.StockMovement) bool { return m.ProductID == productID })
	newestFirst(out)
	return page(out, limit, offset), err
}

func (r *MovementRepo) History(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.ProductID == productID })
}

func (r *MovementRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.Reference == reference })
}

func (r *MovementRepo) List(_ context.Context, limit, offset int) ([]*entity.StockMovement, error) {
	out, err := r.filter(func(*entity.StockMovement) bool { return true })
	newestFirst(out)
	return page(out, limit, offset), err
}

// filter devuelve copias en orden de inserción.
func (r *MovementRepo) filter(keep func(*entity.StockMovement) bool) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.h.do(func(st *state) error {
		for i := range st.movements {
			m := st.movements[i]
			if keep(&m) {
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func newestFirst(ms []*entity.StockMovement) {
	sort.SliceStable(ms, func(i, j int) bool {
		if !ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].CreatedAt.After(ms[j].CreatedAt)
		}
		return ms[i].Seq > ms[j].Seq
	})
}

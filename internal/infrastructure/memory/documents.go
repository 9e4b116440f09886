package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos y líneas en memoria.
type DocumentRepo struct {
	h handle
}

func (r *DocumentRepo) Create(_ context.Context, d *entity.Document) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.documents[d.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.documents {
			if other.Number == d.Number {
				return domain.ErrDuplicate
			}
		}
		st.documents[d.ID] = *d
		return nil
	})
}

func (r *DocumentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	var out *entity.Document
	err := r.h.do(func(st *state) error {
		if d, ok := st.documents[id]; ok {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r *DocumentRepo) Update(_ context.Context, d *entity.Document) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.documents[d.ID]; !ok {
			return domain.ErrNotFound
		}
		st.documents[d.ID] = *d
		return nil
	})
}

func (r *DocumentRepo) List(_ context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	var out []*entity.Document
	err := r.h.do(func(st *state) error {
		for _, d := range st.documents {
			if f.Kind != "" && d.Kind != f.Kind {
				continue
			}
			if f.CustomerID != "" && d.CustomerID != f.CustomerID {
				continue
			}
			if f.Status != "" && d.Status != f.Status {
				continue
			}
			if f.CreatedBy != "" && d.CreatedBy != f.CreatedBy {
				continue
			}
			d := d
			out = append(out, &d)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Number > out[j].Number
	})
	return page(out, f.Limit, f.Offset), err
}

func (r *DocumentRepo) Delete(_ context.Context, id string) error {
	return r.h.do(func(st *state) error {
		delete(st.documents, id)
		delete(st.lines, id)
		return nil
	})
}

func (r *DocumentRepo) LastNumberWithPrefix(_ context.Context, prefix string) (string, error) {
	last := ""
	err := r.h.do(func(st *state) error {
		for _, d := range st.documents {
			if !strings.HasPrefix(d.Number, prefix) {
				continue
			}
			if len(d.Number) > len(last) || (len(d.Number) == len(last) && d.Number > last) {
				last = d.Number
			}
		}
		return nil
	})
	return last, err
}

func (r *DocumentRepo) ListLines(_ context.Context, documentID string) ([]*entity.LineItem, error) {
	var out []*entity.LineItem
	err := r.h.do(func(st *state) error {
		for _, l := range st.lines[documentID] {
			l := l
			out = append(out, &l)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, err
}

func (r *DocumentRepo) CreateLine(_ context.Context, l *entity.LineItem) error {
	return r.h.do(func(st *state) error {
		if _, ok := st.documents[l.DocumentID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.products[l.ProductID]; !ok {
			return domain.ErrProductNotFound
		}
		st.lines[l.DocumentID] = append(st.lines[l.DocumentID], *l)
		return nil
	})
}

func (r *DocumentRepo) DeleteLines(_ context.Context, documentID string) error {
	return r.h.do(func(st *state) error {
		delete(st.lines, documentID)
		return nil
	})
}

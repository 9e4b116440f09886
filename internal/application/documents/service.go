package documents

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

// Service casos de uso de pedidos, ventas y cotizaciones. Toda escritura de
// líneas pasa por el Reconciler.
type Service struct {
	tx         repository.TxRunner
	reconciler *Reconciler
	documents  repository.DocumentRepository
	products   repository.ProductRepository
	customers  repository.CustomerRepository
	log        zerolog.Logger
}

// NewService construye el servicio de documentos.
func NewService(
	tx repository.TxRunner,
	reconciler *Reconciler,
	documents repository.DocumentRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		tx:         tx,
		reconciler: reconciler,
		documents:  documents,
		products:   products,
		customers:  customers,
		log:        log,
	}
}

// Create alta de documento con sus líneas.
func (s *Service) Create(ctx context.Context, kind entity.DocumentKind, header Header, fields map[string]string, actorID string) (*dto.DocumentResponse, error) {
	res, err := s.reconciler.Reconcile(ctx, Submission{Kind: kind, Header: &header, Fields: fields, ActorID: actorID})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("kind", string(kind)).Str("number", res.Document.Number).Str("total", res.Document.Total.String()).Msg("documento creado")
	return s.toResponse(ctx, res.Document, res.Lines, res.Warnings)
}

// Update reemplaza cabecera y todas las líneas.
func (s *Service) Update(ctx context.Context, kind entity.DocumentKind, id string, header Header, fields map[string]string, actorID string) (*dto.DocumentResponse, error) {
	res, err := s.reconciler.Reconcile(ctx, Submission{Kind: kind, DocumentID: id, Header: &header, Fields: fields, ActorID: actorID})
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, res.Document, res.Lines, res.Warnings)
}

// DeleteLine quita una línea y recalcula el total. Quitar la última se rechaza con ErrNoLines.
func (s *Service) DeleteLine(ctx context.Context, kind entity.DocumentKind, id, lineID, actorID string) (*dto.DocumentResponse, error) {
	res, err := s.reconciler.Reconcile(ctx, Submission{Kind: kind, DocumentID: id, DropLineID: lineID, ActorID: actorID})
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, res.Document, res.Lines, res.Warnings)
}

// Get documento con líneas.
func (s *Service) Get(ctx context.Context, kind entity.DocumentKind, id string) (*dto.DocumentResponse, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Kind != kind {
		return nil, domain.ErrNotFound
	}
	lines, err := s.documents.ListLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, doc, lines, nil)
}

// List documentos del tipo, sin líneas.
func (s *Service) List(ctx context.Context, filter repository.DocumentFilter) (*dto.DocumentListResponse, error) {
	docs, err := s.documents.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, headerResponse(d))
	}
	return &dto.DocumentListResponse{Items: items, Page: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset}}, nil
}

// Delete elimina el documento. Una venta devuelve sus cantidades al stock.
func (s *Service) Delete(ctx context.Context, kind entity.DocumentKind, id, actorID string) error {
	policy := PolicyFor(kind)
	return s.tx.Run(ctx, func(r repository.Repos) error {
		doc, err := r.Documents.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != kind {
			return domain.ErrNotFound
		}
		if policy.MovesStock {
			lines, err := r.Documents.ListLines(ctx, id)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(lines))
			for _, l := range lines {
				ids = append(ids, l.ProductID)
			}
			sort.Strings(ids)
			products := map[string]*entity.Product{}
			for _, pid := range ids {
				if _, ok := products[pid]; ok {
					continue
				}
				p, err := r.Products.GetForUpdate(ctx, pid)
				if err != nil {
					return err
				}
				if p != nil {
					products[pid] = p
				}
			}
			if err := s.reconciler.moveLines(ctx, r, products, lines, entity.MovementReturn, "Anulación venta "+doc.Number, doc.ID, actorID); err != nil {
				return err
			}
		}
		if err := r.Documents.Delete(ctx, id); err != nil {
			return err
		}
		s.log.Info().Str("kind", string(kind)).Str("number", doc.Number).Msg("documento eliminado")
		return nil
	})
}

func (s *Service) toResponse(ctx context.Context, doc *entity.Document, lines []*entity.LineItem, warnings []string) (*dto.DocumentResponse, error) {
	resp := headerResponse(doc)
	if doc.CustomerID != "" {
		c, err := s.customers.GetByID(ctx, doc.CustomerID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			resp.CustomerName = c.DisplayName()
		}
	}
	resp.Lines = make([]dto.LineItemResponse, 0, len(lines))
	for _, l := range lines {
		lr := dto.LineItemResponse{
			ID:        l.ID,
			Position:  l.Position,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Subtotal:  l.Subtotal(),
		}
		p, err := s.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			lr.ProductName = p.Name
		}
		resp.Lines = append(resp.Lines, lr)
	}
	resp.Warnings = warnings
	return &resp, nil
}

func headerResponse(d *entity.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:              d.ID,
		Kind:            string(d.Kind),
		Number:          d.Number,
		CustomerID:      d.CustomerID,
		Status:          d.Status,
		PaymentMode:     d.PaymentMode,
		DeliveryDate:    d.DeliveryDate,
		DeliveryAddress: d.DeliveryAddress,
		ValidUntil:      d.ValidUntil,
		Notes:           d.Notes,
		Total:           d.Total,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

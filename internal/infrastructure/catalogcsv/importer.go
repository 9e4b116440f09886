package catalogcsv

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/domain"
)

// ProductCreator alta de productos (ProductUseCase).
type ProductCreator interface {
	Create(ctx context.Context, in dto.CreateProductRequest, actorID string) (*dto.ProductResponse, error)
}

// Summary resultado de una importación.
type Summary struct {
	Created int
	Skipped int // referencia ya existente
	Failed  int
}

// Import da de alta cada producto por separado: un fallo no revierte los anteriores.
// Las referencias existentes se saltan. Un contexto cancelado detiene la importación.
func Import(ctx context.Context, creator ProductCreator, reqs []dto.CreateProductRequest, actorID string, log zerolog.Logger) (Summary, error) {
	var s Summary
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		_, err := creator.Create(ctx, req, actorID)
		switch {
		case err == nil:
			s.Created++
		case errors.Is(err, domain.ErrDuplicate):
			s.Skipped++
			log.Debug().Str("reference", req.Reference).Msg("referencia existente, se omite")
		default:
			s.Failed++
			log.Warn().Err(err).Str("reference", req.Reference).Msg("producto no importado")
		}
	}
	return s, nil
}

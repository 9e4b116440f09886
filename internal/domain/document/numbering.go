package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
)

// QuotePrefix prefijo de cotización para un año: DEV2026.
func QuotePrefix(year int) string {
	return fmt.Sprintf("DEV%d", year)
}

// NextQuoteNumber siguiente número de cotización del año a partir del último
// existente con el mismo prefijo (vacío si no hay ninguno): DEV20260001, DEV20260002...
func NextQuoteNumber(year int, last string) string {
	prefix := QuotePrefix(year)
	seq := 0
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			seq = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1)
}

// DefaultNumber número por defecto de pedidos (CMD-) y ventas (VTE-) basado en la fecha.
func DefaultNumber(kind entity.DocumentKind, now time.Time) string {
	stamp := now.Format("20060102-150405")
	switch kind {
	case entity.DocumentOrder:
		return "CMD-" + stamp
	case entity.DocumentSale:
		return "VTE-" + stamp
	}
	return ""
}

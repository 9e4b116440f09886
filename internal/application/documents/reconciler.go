// Package documents conciliación de líneas de pedidos, ventas y cotizaciones:
// del formulario line_<índice>_<campo> a líneas persistidas y total recalculado,
// todo en una transacción.
package documents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/document"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var (
	hundred     = decimal.NewFromInt(100)
	maxQuantity = decimal.NewFromInt(int64(entity.MaxQuantity))
)

// StockRecorder registra movimientos dentro de la transacción del documento.
type StockRecorder interface {
	RecordMovementInTx(ctx context.Context, r repository.Repos, p *entity.Product, in inventory.MovementInput) (*entity.StockMovement, error)
}

// Header cabecera ya interpretada.
type Header struct {
	Number          string
	CustomerID      string
	Status          string
	PaymentMode     string
	DeliveryDate    *time.Time
	DeliveryAddress string
	ValidUntil      *time.Time
	Notes           string
}

// Submission un envío de formulario de documento.
type Submission struct {
	Kind       entity.DocumentKind
	DocumentID string // vacío = alta
	// Header nil conserva la cabecera existente (solo en edición).
	Header  *Header
	Fields  map[string]string
	ActorID string
	// DropLineID reconstruye las líneas desde las actuales sin esa línea; Fields se ignora.
	DropLineID string
}

// Result documento guardado con sus líneas y los avisos no bloqueantes.
type Result struct {
	Document *entity.Document
	Lines    []*entity.LineItem
	Warnings []string
}

// Reconciler único camino de escritura de líneas y total de un documento.
type Reconciler struct {
	tx    repository.TxRunner
	stock StockRecorder
	log   zerolog.Logger
	now   func() time.Time
}

// NewReconciler construye el conciliador.
func NewReconciler(tx repository.TxRunner, stock StockRecorder, log zerolog.Logger) *Reconciler {
	return &Reconciler{tx: tx, stock: stock, log: log, now: time.Now}
}

// Reconcile valida y persiste cabecera, líneas y total en una sola transacción.
// Cualquier error de línea o de cabecera devuelve *domain.ReconcileError y no deja nada escrito.
func (rc *Reconciler) Reconcile(ctx context.Context, sub Submission) (*Result, error) {
	if !sub.Kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, sub.Kind)
	}
	if sub.DocumentID == "" && sub.Header == nil {
		return nil, fmt.Errorf("%w: cabecera requerida", domain.ErrInvalidInput)
	}
	policy := PolicyFor(sub.Kind)

	var res *Result
	err := rc.tx.Run(ctx, func(r repository.Repos) error {
		out, err := rc.reconcileInTx(ctx, r, policy, sub)
		if err != nil {
			return err
		}
		res = out
		return nil
	})
	if err != nil {
		var re *domain.ReconcileError
		if errors.As(err, &re) {
			rc.log.Debug().Str("kind", string(sub.Kind)).Strs("errors", re.Messages()).Msg("conciliación rechazada")
		}
		return nil, err
	}
	return res, nil
}

func (rc *Reconciler) reconcileInTx(ctx context.Context, r repository.Repos, policy Policy, sub Submission) (*Result, error) {
	rejected := &domain.ReconcileError{}

	var doc *entity.Document
	var oldLines []*entity.LineItem
	if sub.DocumentID != "" {
		var err error
		doc, err = r.Documents.GetForUpdate(ctx, sub.DocumentID)
		if err != nil {
			return nil, err
		}
		if doc == nil || doc.Kind != sub.Kind {
			return nil, domain.ErrNotFound
		}
		if oldLines, err = r.Documents.ListLines(ctx, doc.ID); err != nil {
			return nil, err
		}
	}

	var submitted []document.LineFields
	if sub.DropLineID != "" {
		var found bool
		submitted, found = linesWithout(oldLines, sub.DropLineID)
		if !found {
			return nil, domain.ErrNotFound
		}
	} else {
		submitted = document.ParseLineFields(sub.Fields)
	}

	candidates := make([]document.LineFields, 0, len(submitted))
	for _, lf := range submitted {
		if lf.Blank() {
			rc.log.Debug().Int("index", lf.Index).Msg("línea vacía omitida")
			continue
		}
		candidates = append(candidates, lf)
	}
	rc.log.Debug().Str("kind", string(sub.Kind)).Int("submitted", len(submitted)).Int("candidates", len(candidates)).Msg("líneas recibidas")

	if sub.Header != nil {
		for _, err := range rc.validateHeader(ctx, r, sub.Kind, policy, sub.Header) {
			rejected.Global = append(rejected.Global, err)
		}
	}

	products, err := rc.loadProducts(ctx, r, policy, oldLines, candidates)
	if err != nil {
		return nil, err
	}

	// En una venta editada las cantidades anteriores vuelven al stock antes de validar.
	if policy.MovesStock && doc != nil && len(oldLines) > 0 {
		if err := rc.moveLines(ctx, r, products, oldLines, entity.MovementReturn, "Modificación venta "+doc.Number, doc.ID, sub.ActorID); err != nil {
			return nil, err
		}
	}

	lines, warnings := rc.validateLines(policy, candidates, products, rejected)
	rejected.Warnings = warnings

	if len(candidates) == 0 {
		rejected.Global = append(rejected.Global, domain.ErrNoLines)
	}
	if total := entity.SumSubtotals(lines); total.GreaterThanOrEqual(entity.MaxAmount) {
		rejected.Global = append(rejected.Global, fmt.Errorf("%w: total %s fuera de rango", domain.ErrInvalidInput, total.String()))
	}
	if !rejected.Empty() {
		return nil, rejected
	}

	now := rc.now()
	if doc == nil {
		doc = &entity.Document{
			ID:        uuid.New().String(),
			Kind:      sub.Kind,
			CreatedBy: sub.ActorID,
			CreatedAt: now,
		}
		applyHeader(doc, sub.Header)
		if doc.Number, err = rc.assignNumber(ctx, r, sub.Kind, sub.Header.Number, now); err != nil {
			return nil, err
		}
		if err := r.Documents.Create(ctx, doc); err != nil {
			return nil, err
		}
	} else if sub.Header != nil {
		applyHeader(doc, sub.Header)
	}

	if err := r.Documents.DeleteLines(ctx, doc.ID); err != nil {
		return nil, err
	}
	for _, l := range lines {
		l.ID = uuid.New().String()
		l.DocumentID = doc.ID
		if err := r.Documents.CreateLine(ctx, l); err != nil {
			return nil, err
		}
	}

	if policy.MovesStock {
		if err := rc.moveLines(ctx, r, products, lines, entity.MovementOut, "Venta "+doc.Number, doc.ID, sub.ActorID); err != nil {
			return nil, err
		}
	}

	doc.Total = entity.SumSubtotals(lines)
	doc.UpdatedAt = now
	if err := r.Documents.Update(ctx, doc); err != nil {
		return nil, err
	}

	rc.log.Debug().
		Str("document_id", doc.ID).
		Str("number", doc.Number).
		Int("lines", len(lines)).
		Str("total", doc.Total.String()).
		Msg("documento conciliado")
	return &Result{Document: doc, Lines: lines, Warnings: warnings}, nil
}

// validateLines aplica las reglas por línea en orden y acumula los errores en rejected.
func (rc *Reconciler) validateLines(
	policy Policy,
	candidates []document.LineFields,
	products map[string]*entity.Product,
	rejected *domain.ReconcileError,
) ([]*entity.LineItem, []string) {
	var warnings []string
	requested := map[string]int{}
	lines := make([]*entity.LineItem, 0, len(candidates))

	for _, lf := range candidates {
		fail := func(label string, err error) {
			rejected.Errors = append(rejected.Errors, domain.LineError{Index: lf.Index, Product: label, Err: err})
		}
		before := len(rejected.Errors)

		p := products[lf.ProductID]
		label := lf.ProductID
		if p != nil {
			label = p.Label()
		}
		if p == nil || !p.Active {
			fail(label, domain.ErrProductNotFound)
		}

		rawQty, qtyOK := parseQuantity(lf.Quantity)
		price, priceOK := parseDecimal(lf.UnitPrice)
		if !qtyOK || !priceOK {
			fail(label, domain.ErrMissingField)
		}
		switch {
		case !qtyOK:
		case rawQty.Sign() <= 0:
			fail(label, domain.ErrInvalidQuantity)
		case rawQty.GreaterThan(maxQuantity):
			fail(label, fmt.Errorf("%w: máximo %d", domain.ErrInvalidQuantity, entity.MaxQuantity))
		}
		switch {
		case !priceOK:
		case price.IsNegative():
			fail(label, domain.ErrInvalidPrice)
		case !entity.HasMoneyScale(price):
			fail(label, fmt.Errorf("%w: máximo %d decimales", domain.ErrInvalidPrice, entity.MoneyScale))
		case price.GreaterThanOrEqual(entity.MaxAmount):
			fail(label, fmt.Errorf("%w: fuera de rango", domain.ErrInvalidPrice))
		}
		discount := decimal.Zero
		if lf.Discount != nil && strings.TrimSpace(*lf.Discount) != "" {
			d, ok := parseDecimal(lf.Discount)
			if !ok || d.IsNegative() || d.GreaterThan(hundred) || !entity.HasMoneyScale(d) {
				fail(label, domain.ErrInvalidDiscount)
			} else {
				discount = d
			}
		}

		if len(rejected.Errors) > before {
			rc.log.Debug().Int("index", lf.Index).Str("product_id", lf.ProductID).Msg("línea rechazada")
			continue
		}
		qty := int(rawQty.IntPart())

		requested[p.ID] += qty
		if requested[p.ID] > p.Stock {
			switch policy.StockCheck {
			case StockCheckReject:
				fail(label, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, p.Stock, requested[p.ID]))
				continue
			case StockCheckWarn:
				warnings = append(warnings, fmt.Sprintf("línea %d (%s): stock insuficiente, disponible %d, solicitado %d",
					lf.Index, label, p.Stock, requested[p.ID]))
			}
		}

		lines = append(lines, &entity.LineItem{
			ProductID: p.ID,
			Position:  lf.Index,
			Quantity:  qty,
			UnitPrice: price,
			Discount:  discount,
		})
		rc.log.Debug().Int("index", lf.Index).Str("product_id", p.ID).Int("quantity", qty).Msg("línea aceptada")
	}
	return lines, warnings
}

// loadProducts lee los productos de líneas nuevas y anteriores. Con LockProducts los
// bloquea en orden ascendente de id para que dos documentos no se crucen.
func (rc *Reconciler) loadProducts(
	ctx context.Context,
	r repository.Repos,
	policy Policy,
	oldLines []*entity.LineItem,
	candidates []document.LineFields,
) (map[string]*entity.Product, error) {
	seen := map[string]struct{}{}
	for _, l := range oldLines {
		seen[l.ProductID] = struct{}{}
	}
	for _, lf := range candidates {
		seen[lf.ProductID] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		var p *entity.Product
		var err error
		if policy.LockProducts {
			p, err = r.Products.GetForUpdate(ctx, id)
		} else {
			p, err = r.Products.GetByID(ctx, id)
		}
		if err != nil {
			return nil, err
		}
		if p != nil {
			out[id] = p
		}
	}
	return out, nil
}

// moveLines registra un movimiento por línea con los productos ya bloqueados.
func (rc *Reconciler) moveLines(
	ctx context.Context,
	r repository.Repos,
	products map[string]*entity.Product,
	lines []*entity.LineItem,
	kind entity.MovementKind,
	reason, reference, actorID string,
) error {
	for _, l := range lines {
		p := products[l.ProductID]
		if p == nil {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, l.ProductID)
		}
		_, err := rc.stock.RecordMovementInTx(ctx, r, p, inventory.MovementInput{
			ProductID: p.ID,
			Kind:      kind,
			Quantity:  l.Quantity,
			Reason:    reason,
			Reference: reference,
			ActorID:   actorID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (rc *Reconciler) validateHeader(ctx context.Context, r repository.Repos, kind entity.DocumentKind, policy Policy, h *Header) []error {
	var errs []error
	invalid := func(msg string) { errs = append(errs, fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)) }

	h.CustomerID = strings.TrimSpace(h.CustomerID)
	if h.CustomerID == "" {
		if policy.RequiresCustomer {
			invalid("cliente requerido")
		}
	} else {
		c, err := r.Customers.GetByID(ctx, h.CustomerID)
		if err != nil {
			errs = append(errs, err)
		} else if c == nil {
			invalid("cliente no encontrado")
		}
	}

	if h.Status == "" {
		h.Status = kind.DefaultStatus()
	} else if !kind.ValidStatus(h.Status) {
		invalid(fmt.Sprintf("estado %q no válido", h.Status))
	}

	if kind == entity.DocumentSale {
		if h.PaymentMode == "" {
			h.PaymentMode = entity.PaymentCash
		} else if !entity.ValidPaymentMode(h.PaymentMode) {
			invalid(fmt.Sprintf("modo de pago %q no válido", h.PaymentMode))
		}
	} else {
		h.PaymentMode = ""
	}
	return errs
}

func (rc *Reconciler) assignNumber(ctx context.Context, r repository.Repos, kind entity.DocumentKind, requested string, now time.Time) (string, error) {
	if kind == entity.DocumentQuote {
		prefix := document.QuotePrefix(now.Year())
		last, err := r.Documents.LastNumberWithPrefix(ctx, prefix)
		if err != nil {
			return "", err
		}
		return document.NextQuoteNumber(now.Year(), last), nil
	}
	if n := strings.TrimSpace(requested); n != "" {
		return n, nil
	}
	return document.DefaultNumber(kind, now), nil
}

func applyHeader(doc *entity.Document, h *Header) {
	if h == nil {
		return
	}
	doc.CustomerID = h.CustomerID
	doc.Status = h.Status
	doc.PaymentMode = h.PaymentMode
	doc.Notes = h.Notes
	switch doc.Kind {
	case entity.DocumentOrder:
		doc.DeliveryDate = h.DeliveryDate
		doc.DeliveryAddress = h.DeliveryAddress
	case entity.DocumentQuote:
		doc.ValidUntil = h.ValidUntil
	}
}

// linesWithout vuelve a expresar las líneas actuales como campos de formulario, sin dropID.
func linesWithout(lines []*entity.LineItem, dropID string) ([]document.LineFields, bool) {
	found := false
	out := make([]document.LineFields, 0, len(lines))
	for _, l := range lines {
		if l.ID == dropID {
			found = true
			continue
		}
		qty := fmt.Sprint(l.Quantity)
		price := l.UnitPrice.String()
		discount := l.Discount.String()
		out = append(out, document.LineFields{
			Index:     l.Position,
			ProductID: l.ProductID,
			Quantity:  &qty,
			UnitPrice: &price,
			Discount:  &discount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, found
}

// parseQuantity entero, admite "2" y "2.0". El rango se comprueba en validateLines.
func parseQuantity(s *string) (decimal.Decimal, bool) {
	d, ok := parseDecimal(s)
	if !ok || !d.IsInteger() {
		return decimal.Zero, false
	}
	return d, true
}

func parseDecimal(s *string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.Replace(v, ",", ".", 1))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

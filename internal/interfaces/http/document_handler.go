package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/biomed-stock/internal/application/documents"
	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/domain"
	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// DocumentHandler pedidos, ventas o cotizaciones: un handler por tipo, montado en basePath.
type DocumentHandler struct {
	kind     entity.DocumentKind
	basePath string
	svc      *documents.Service
	pdf      *documents.PDFUseCase
}

// NewDocumentHandler construye el handler de un tipo de documento.
func NewDocumentHandler(kind entity.DocumentKind, basePath string, svc *documents.Service, pdf *documents.PDFUseCase) *DocumentHandler {
	return &DocumentHandler{kind: kind, basePath: basePath, svc: svc, pdf: pdf}
}

// Create godoc
// @Summary      Crear documento desde formulario
// @Description  Cabecera más campos line_<n>_product_id, line_<n>_quantity, line_<n>_unit_price, line_<n>_discount.
// @Tags         documents
// @Security     Bearer
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para evitar dobles envíos"
// @Success      201  {object}  dto.DocumentResponse
// @Success      303
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ReconcileErrorResponse
// @Router       /api/sales [post]
// @Router       /api/orders [post]
// @Router       /api/quotes [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	fields, err := formFields(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "formulario inválido"})
	}
	header, errs := parseHeader(fields)
	if len(errs) > 0 {
		return h.rejected(c, &domain.ReconcileError{Global: errs}, fields)
	}
	out, err := h.svc.Create(c.UserContext(), h.kind, header, fields, GetUserID(c))
	if err != nil {
		return h.rejected(c, err, fields)
	}
	return h.saved(c, out, fiber.StatusCreated)
}

// Update godoc
// @Summary      Reemplazar cabecera y líneas de un documento
// @Tags         documents
// @Security     Bearer
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Success      303
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ReconcileErrorResponse
// @Router       /api/sales/{id} [put]
// @Router       /api/orders/{id} [put]
// @Router       /api/quotes/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	fields, err := formFields(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "formulario inválido"})
	}
	header, errs := parseHeader(fields)
	if len(errs) > 0 {
		return h.rejected(c, &domain.ReconcileError{Global: errs}, fields)
	}
	out, err := h.svc.Update(c.UserContext(), h.kind, c.Params("id"), header, fields, GetUserID(c))
	if err != nil {
		return h.rejected(c, err, fields)
	}
	return h.saved(c, out, fiber.StatusOK)
}

// Get godoc
// @Summary      Obtener documento con líneas
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), h.kind, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "Cliente"
// @Param        status       query  string  false  "Estado"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/sales [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	out, err := h.svc.List(c.UserContext(), repository.DocumentFilter{
		Kind:       h.kind,
		CustomerID: c.Query("customer_id"),
		Status:     c.Query("status"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar documento (una venta devuelve su stock)
// @Tags         documents
// @Security     Bearer
// @Param        id   path  string  true  "ID del documento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), h.kind, c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteLine godoc
// @Summary      Quitar una línea y recalcular el total
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del documento"
// @Param        lineId  path  string  true  "ID de la línea"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ReconcileErrorResponse
// @Router       /api/sales/{id}/lines/{lineId} [delete]
func (h *DocumentHandler) DeleteLine(c *fiber.Ctx) error {
	out, err := h.svc.DeleteLine(c.UserContext(), h.kind, c.Params("id"), c.Params("lineId"), GetUserID(c))
	if err != nil {
		return h.rejected(c, err, nil)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Descargar documento en PDF (cotización, factura o remisión)
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.Download(c.UserContext(), h.kind, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

func (h *DocumentHandler) saved(c *fiber.Ctx, out *dto.DocumentResponse, status int) error {
	location := h.basePath + "/" + out.ID
	if acceptsHTML(c) {
		return c.Redirect(location, fiber.StatusSeeOther)
	}
	c.Location(location)
	return c.Status(status).JSON(out)
}

// rejected 422 con todos los mensajes y el formulario recibido; el resto de errores pasa por writeError.
func (h *DocumentHandler) rejected(c *fiber.Ctx, err error, fields map[string]string) error {
	var re *domain.ReconcileError
	if !errors.As(err, &re) {
		return writeError(c, err)
	}
	if fields == nil {
		fields = map[string]string{}
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ReconcileErrorResponse{
		Code:     "RECONCILE_FAILED",
		Message:  "el documento no se guardó",
		Errors:   re.Messages(),
		Warnings: re.Warnings,
		Form:     fields,
	})
}

func acceptsHTML(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML)
}

// formFields lee el cuerpo como urlencoded, multipart o un objeto JSON plano.
// Con claves repetidas gana el último valor.
func formFields(c *fiber.Ctx) (map[string]string, error) {
	fields := map[string]string{}
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				fields[k] = vs[len(vs)-1]
			}
		}
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		if err := c.BodyParser(&fields); err != nil {
			return nil, err
		}
	default:
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			fields[string(k)] = string(v)
		})
	}
	return fields, nil
}

// parseHeader cabecera desde los campos del formulario. Fechas en formato YYYY-MM-DD.
func parseHeader(fields map[string]string) (documents.Header, []error) {
	in := dto.DocumentHeaderInput{
		Number:          fields["number"],
		CustomerID:      fields["customer_id"],
		Status:          strings.ToUpper(strings.TrimSpace(fields["status"])),
		PaymentMode:     strings.ToUpper(strings.TrimSpace(fields["payment_mode"])),
		DeliveryDate:    fields["delivery_date"],
		DeliveryAddress: fields["delivery_address"],
		ValidUntil:      fields["valid_until"],
		Notes:           fields["notes"],
	}
	var errs []error
	delivery, err := parseDate(in.DeliveryDate)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: fecha de entrega inválida", domain.ErrInvalidInput))
	}
	validUntil, err := parseDate(in.ValidUntil)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: fecha de validez inválida", domain.ErrInvalidInput))
	}
	return documents.Header{
		Number:          in.Number,
		CustomerID:      in.CustomerID,
		Status:          in.Status,
		PaymentMode:     in.PaymentMode,
		DeliveryDate:    delivery,
		DeliveryAddress: in.DeliveryAddress,
		ValidUntil:      validUntil,
		Notes:           in.Notes,
	}, errs
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Errores por línea de documento.
	ErrProductNotFound = errors.New("producto no encontrado o inactivo")
	ErrMissingField    = errors.New("cantidad o precio ausente o no numérico")
	ErrInvalidQuantity = errors.New("la cantidad debe ser mayor que cero")
	ErrInvalidPrice    = errors.New("el precio no puede ser negativo")
	ErrInvalidDiscount = errors.New("el descuento debe estar entre 0 y 100")
	ErrNoLines         = errors.New("el documento debe contener al menos un producto")
)

// LineError error de validación de una línea enviada (Index = índice del formulario).
type LineError struct {
	Index   int
	Product string // nombre o id del producto, si se conoce
	Err     error
}

func (e LineError) Error() string {
	if e.Product != "" {
		return fmt.Sprintf("línea %d (%s): %v", e.Index, e.Product, e.Err)
	}
	return fmt.Sprintf("línea %d: %v", e.Index, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// ReconcileError reúne todos los errores de una conciliación rechazada.
// Con errors.Is se puede preguntar por cualquiera de los sentinels contenidos.
type ReconcileError struct {
	Errors []LineError
	// Global errores que no pertenecen a una línea (ej. ErrNoLines).
	Global []error
	// Warnings avisos no bloqueantes reunidos antes del rechazo.
	Warnings []string
}

func (e *ReconcileError) Error() string {
	msgs := e.Messages()
	if len(msgs) == 1 {
		return msgs[0]
	}
	return fmt.Sprintf("%d errores: %s", len(msgs), strings.Join(msgs, "; "))
}

// Messages devuelve un mensaje legible por error, en orden de línea.
func (e *ReconcileError) Messages() []string {
	out := make([]string, 0, len(e.Errors)+len(e.Global))
	for _, le := range e.Errors {
		out = append(out, le.Error())
	}
	for _, g := range e.Global {
		out = append(out, g.Error())
	}
	return out
}

func (e *ReconcileError) Unwrap() []error {
	out := make([]error, 0, len(e.Errors)+len(e.Global))
	for _, le := range e.Errors {
		out = append(out, le)
	}
	return append(out, e.Global...)
}

// Empty indica que no se acumuló ningún error.
func (e *ReconcileError) Empty() bool {
	return len(e.Errors) == 0 && len(e.Global) == 0
}

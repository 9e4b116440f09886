package ports

import (
	"context"
	"time"
)

// IdempotencyStore reserva claves de envío para que un formulario enviado dos veces
// no cree dos documentos. Cualquier adaptador (Redis, memoria) implementa esta interfaz.
type IdempotencyStore interface {
	// Reserve marca la clave durante ttl. Devuelve false si ya estaba reservada.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release libera la clave (el envío falló y puede reintentarse).
	Release(ctx context.Context, key string) error
}

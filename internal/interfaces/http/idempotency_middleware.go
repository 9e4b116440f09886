package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
	"github.com/jhoicas/biomed-stock/internal/application/ports"
)

// HeaderIdempotencyKey cabecera que envía el formulario para evitar dobles envíos.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyMiddleware rechaza con 409 una segunda petición con la misma clave mientras
// la primera siga vigente. Si la petición falla (status >= 400) la clave se libera para
// que el usuario pueda corregir y reenviar. Sin cabecera no hace nada.
func IdempotencyMiddleware(store ports.IdempotencyStore, ttl time.Duration, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(HeaderIdempotencyKey)
		if header == "" || store == nil {
			return c.Next()
		}
		key := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + header

		ok, err := store.Reserve(c.UserContext(), key, ttl)
		if err != nil {
			// Almacén caído: se deja pasar.
			log.Warn().Err(err).Str("key", header).Msg("idempotencia no disponible")
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_SUBMISSION", Message: "esta operación ya fue enviada"})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if relErr := store.Release(c.UserContext(), key); relErr != nil {
				log.Warn().Err(relErr).Str("key", header).Msg("liberar clave de idempotencia")
			}
		}
		return err
	}
}

package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isForeignKeyViolation(unique))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("conexión cerrada")))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	v := nullable("abc")
	if assert.NotNil(t, v) {
		assert.Equal(t, "abc", *v)
	}
	assert.Equal(t, "", deref(nil))
	assert.Equal(t, "abc", deref(v))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("0b7e6b8e-3c1a-4f6e-9a51-2f4c0d8e7a10"))
	for _, id := range []string{"", "1", "A", "0b7e6b8e3c1a4f6e9a512f4c0d8e7a10", "{0b7e6b8e-3c1a-4f6e-9a51-2f4c0d8e7a10}", "0b7e6b8e-3c1a-4f6e-9a51-2f4c0d8e7a1z"} {
		assert.False(t, validID(id), id)
	}
}

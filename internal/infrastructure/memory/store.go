// Package memory persistencia en memoria con transacciones por instantánea.
// Una sola transacción de escritura a la vez: equivale a bloquear todas las filas,
// así que GetForUpdate es una lectura normal. Se usa con DB_DRIVER=memory y en tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/biomed-stock/internal/domain/entity"
	"github.com/jhoicas/biomed-stock/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	products   map[string]entity.Product
	movements  []entity.StockMovement
	documents  map[string]entity.Document
	lines      map[string][]entity.LineItem // por documento
	customers  map[string]entity.Customer
	users      map[string]entity.User
	categories map[string]entity.Category
	seq        int64
}

func newState() *state {
	return &state{
		products:   map[string]entity.Product{},
		documents:  map[string]entity.Document{},
		lines:      map[string][]entity.LineItem{},
		customers:  map[string]entity.Customer{},
		users:      map[string]entity.User{},
		categories: map[string]entity.Category{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		movements:  make([]entity.StockMovement, len(s.movements)),
		documents:  make(map[string]entity.Document, len(s.documents)),
		lines:      make(map[string][]entity.LineItem, len(s.lines)),
		customers:  make(map[string]entity.Customer, len(s.customers)),
		users:      make(map[string]entity.User, len(s.users)),
		categories: make(map[string]entity.Category, len(s.categories)),
		seq:        s.seq,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	copy(c.movements, s.movements)
	for k, v := range s.documents {
		c.documents[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entity.LineItem(nil), v...)
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	return c
}

// Store base de datos en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea una base vacía.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn sobre una copia del estado; la copia reemplaza al original solo si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.clone()
	if err := fn(reposFor(handle{store: s, tx: tx})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.data = tx
	return nil
}

// Repos repositorios fuera de transacción (cada llamada es atómica).
func (s *Store) Repos() repository.Repos {
	return reposFor(handle{store: s})
}

func (s *Store) Products() *ProductRepo { return &ProductRepo{h: handle{store: s}} }
func (s *Store) Movements() *MovementRepo { return &MovementRepo{h: handle{store: s}} }
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{h: handle{store: s}} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{h: handle{store: s}} }
func (s *Store) Users() *UserRepo { return &UserRepo{h: handle{store: s}} }
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{h: handle{store: s}} }
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{h: handle{store: s}} }

func reposFor(h handle) repository.Repos {
	return repository.Repos{
		Products:  &ProductRepo{h: h},
		Movements: &MovementRepo{h: h},
		Documents: &DocumentRepo{h: h},
		Customers: &CustomerRepo{h: h},
	}
}

// handle apunta al estado de una transacción o, si tx es nil, al estado confirmado.
type handle struct {
	store *Store
	tx    *state
}

func (h handle) do(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.data)
}

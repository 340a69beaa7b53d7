package services

import (
	"context"

	"github.com/foundrygate/gateway-validator/internal/models"
	"github.com/foundrygate/gateway-validator/internal/store"
)

// Health exposes the read side of the connection health cache.
type Health struct {
	store *store.Store
}

func NewHealthService(st *store.Store) *Health {
	return &Health{store: st}
}

func (s *Health) Get(ctx context.Context, connection string) (*models.ConnectionHealth, error) {
	return s.store.Health().Get(ctx, connection)
}

func (s *Health) List(ctx context.Context) ([]models.ConnectionHealth, error) {
	return s.store.Health().List(ctx)
}

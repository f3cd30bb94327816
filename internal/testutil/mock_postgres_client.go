package testutil

import (
	"context"

	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// MockPostgresClient is a mock implementation of postgres client for testing.
// The in-memory stores do their own locking, so WithTx just runs the
// function without transactional semantics.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// WithTx executes the given function without a real transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Querier returns nil; in-memory repositories never touch the database
func (c *MockPostgresClient) Querier(ctx context.Context) postgres.Querier {
	return nil
}

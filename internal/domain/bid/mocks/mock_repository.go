package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/procure-hub/procure-hub/internal/domain/bid"
)

// MockRepository is a mock implementation of bid.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, b *bid.Bid) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, bidID uuid.UUID) (*bid.Bid, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bid.Bid), args.Error(1)
}

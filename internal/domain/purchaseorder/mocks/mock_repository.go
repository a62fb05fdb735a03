package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/procure-hub/procure-hub/internal/domain/purchaseorder"
)

// MockRepository is a mock implementation of purchaseorder.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, po *purchaseorder.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, poID uuid.UUID) (*purchaseorder.PurchaseOrder, error) {
	args := m.Called(ctx, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchaseorder.PurchaseOrder), args.Error(1)
}

func (m *MockRepository) GetByNegotiationID(ctx context.Context, negotiationID uuid.UUID) (*purchaseorder.PurchaseOrder, error) {
	args := m.Called(ctx, negotiationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchaseorder.PurchaseOrder), args.Error(1)
}

package order

import (
	"context"
	"fmt"

	"marketplace-backend/internal/domain"
)

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)
	ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.Order, error)
	SaveStatus(ctx context.Context, o *domain.Order) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
}

type Service struct {
	orders orderRepo
	clock  domain.Clock
}

func New(orders orderRepo, clock domain.Clock) *Service {
	return &Service{orders: orders, clock: clock}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListBySeller(ctx, sellerID, limit, offset)
}

// UpdateStatus applies a fulfilment transition and persists the result.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.SetStatus(status, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("order %s to %s: %w", id, status, err)
	}
	if err := s.orders.SaveStatus(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdatePaymentStatus applies a payment transition and persists the result.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.SetPaymentStatus(status, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("order %s payment to %s: %w", id, status, err)
	}
	if err := s.orders.SaveStatus(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel stops an order that has not shipped yet.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, fmt.Errorf("order %s in status %s: %w", id, o.Status, domain.ErrInvalidTransition)
	}
	if err := o.SetStatus(domain.OrderCancelled, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.orders.SaveStatus(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.orders.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id string) error {
	return s.orders.Restore(ctx, id)
}

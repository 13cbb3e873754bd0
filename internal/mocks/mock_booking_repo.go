package mocks

import (
	"context"
	"time"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepo) GetById(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByIdAndUser(ctx context.Context, id int64, userID string) (*domain.Booking, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) GetPaidByUser(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingDetail), args.Error(1)
}

func (m *MockBookingRepo) GetUnpaidByUser(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingDetail), args.Error(1)
}

func (m *MockBookingRepo) SetOrderID(ctx context.Context, id int64, orderID string) error {
	args := m.Called(ctx, id, orderID)
	return args.Error(0)
}

func (m *MockBookingRepo) MarkPaid(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) Cancel(ctx context.Context, id int64, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockBookingRepo) Expire(ctx context.Context, id int64, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockBookingRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepo) DeleteExpiredByUser(ctx context.Context, userID string, now time.Time) (int, error) {
	args := m.Called(ctx, userID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepo) GetAll(ctx context.Context, pagination domain.Pagination) ([]domain.AdminBooking, *domain.Metadata, error) {
	args := m.Called(ctx, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.AdminBooking), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockBookingRepo) Stats(ctx context.Context) (*domain.BookingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingStats), args.Error(1)
}

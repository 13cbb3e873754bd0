package mocks

import (
	"context"
	"time"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShowRepo struct {
	mock.Mock
	domain.ShowRepository
}

func (m *MockShowRepo) CreateBatch(ctx context.Context, shows []domain.Show) error {
	args := m.Called(ctx, shows)
	return args.Error(0)
}

func (m *MockShowRepo) GetById(ctx context.Context, id int64) (*domain.Show, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Show), args.Error(1)
}

func (m *MockShowRepo) GetUpcoming(ctx context.Context, now time.Time) ([]domain.Show, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Show), args.Error(1)
}

func (m *MockShowRepo) GetUpcomingByMovie(ctx context.Context, movieID int64, now time.Time) ([]domain.Show, error) {
	args := m.Called(ctx, movieID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Show), args.Error(1)
}

func (m *MockShowRepo) GetSeatMap(ctx context.Context, showID int64) (map[string]string, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockShowRepo) CheckAvailability(ctx context.Context, showID int64, seats []string) (bool, error) {
	args := m.Called(ctx, showID, seats)
	return args.Bool(0), args.Error(1)
}

package mocks

import (
	"context"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockMetadataClient struct {
	mock.Mock
	domain.MovieMetadataClient
}

func (m *MockMetadataClient) FetchMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

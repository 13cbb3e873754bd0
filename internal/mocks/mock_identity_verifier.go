package mocks

import (
	"context"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockIdentityVerifier struct {
	mock.Mock
	domain.IdentityVerifier
}

func (m *MockIdentityVerifier) VerifyToken(ctx context.Context, token string) (domain.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.Identity), args.Error(1)
}

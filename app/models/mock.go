package models

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockModel struct {
	mock.Mock
}

var _ Interface = &MockModel{}

func (m *MockModel) Generate(ctx context.Context, messages []Message) (*Generation, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Generation), args.Error(1)
}

//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/fakeplayers/internal/server/storage"
)

// MockRosterStore 名册镜像存储 mock
type MockRosterStore struct {
	mock.Mock
}

func (m *MockRosterStore) SaveRosterMember(ctx context.Context, data *storage.RosterMemberData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockRosterStore) RemoveRosterMember(ctx context.Context, networkID uint64) error {
	args := m.Called(ctx, networkID)
	return args.Error(0)
}

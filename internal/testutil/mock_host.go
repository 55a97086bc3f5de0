//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/fakeplayers/internal/fakeplayer"
)

// MockHost 主机能力 mock
type MockHost struct {
	mock.Mock
}

func (m *MockHost) CreateSession() (fakeplayer.Handle, error) {
	args := m.Called()
	return args.Get(0), args.Error(1)
}

func (m *MockHost) NewSessionID() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockHost) AssignDisplayID(h fakeplayer.Handle, id int) error {
	args := m.Called(h, id)
	return args.Error(0)
}

func (m *MockHost) RemoveDisplayID(h fakeplayer.Handle) error {
	args := m.Called(h)
	return args.Error(0)
}

func (m *MockHost) Login(h fakeplayer.Handle, req fakeplayer.LoginRequest) (bool, error) {
	args := m.Called(h, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockHost) InRoster(networkID uint64) (bool, error) {
	args := m.Called(networkID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHost) AddToRoster(h fakeplayer.Handle) error {
	args := m.Called(h)
	return args.Error(0)
}

func (m *MockHost) RemoveFromRoster(networkID uint64) error {
	args := m.Called(networkID)
	return args.Error(0)
}

func (m *MockHost) ReleaseSession(h fakeplayer.Handle) error {
	args := m.Called(h)
	return args.Error(0)
}

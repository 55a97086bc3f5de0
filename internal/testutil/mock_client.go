//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/fakeplayers/internal/protocol"
	"github.com/palemoky/fakeplayers/internal/server/session"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) Session() *session.Context {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*session.Context)
}

func (m *MockClient) SetSession(c *session.Context) {
	m.Called(c)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言的测试）
type SimpleClient struct {
	ID   string
	Name string

	mu       sync.Mutex
	ctx      *session.Context
	Messages []*protocol.Message
}

func (m *SimpleClient) GetID() string   { return m.ID }
func (m *SimpleClient) GetName() string { return m.Name }
func (m *SimpleClient) Close()          {}

func (m *SimpleClient) Session() *session.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctx
}

func (m *SimpleClient) SetSession(c *session.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx = c
}

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

// Sent 返回已发送消息的副本
func (m *SimpleClient) Sent() []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*protocol.Message(nil), m.Messages...)
}

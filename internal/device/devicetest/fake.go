// Package devicetest provides in-memory platform fakes for tests.
package devicetest

import (
	"context"
	"sync"

	"schoolapp/internal/device"
	"schoolapp/internal/notification/domain"
)

// Messaging is a scriptable device.Messaging.
type Messaging struct {
	mu sync.Mutex

	OS            device.Platform
	TokenValue    string
	TokenErr      error
	Registered    bool
	RegisterErr   error
	Status        device.AuthorizationStatus
	StatusErr     error
	RequestResult device.AuthorizationStatus
	RequestErr    error
	Initial       *domain.Message
	InitialErr    error

	TokenCalls    int
	RegisterCalls int
	RequestCalls  int
	InitialCalls  int
}

var _ device.Messaging = (*Messaging)(nil)

func (m *Messaging) Platform() device.Platform {
	if m.OS == "" {
		return device.PlatformAndroid
	}
	return m.OS
}

func (m *Messaging) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenCalls++
	return m.TokenValue, m.TokenErr
}

func (m *Messaging) IsRegisteredForRemoteMessages(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Registered
}

func (m *Messaging) RegisterForRemoteMessages(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegisterCalls++
	if m.RegisterErr != nil {
		return m.RegisterErr
	}
	m.Registered = true
	return nil
}

func (m *Messaging) PermissionStatus(context.Context) (device.AuthorizationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Status == "" {
		return device.StatusNotDetermined, m.StatusErr
	}
	return m.Status, m.StatusErr
}

func (m *Messaging) RequestPermission(context.Context) (device.AuthorizationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCalls++
	if m.RequestErr != nil {
		return device.StatusNotDetermined, m.RequestErr
	}
	m.Status = m.RequestResult
	return m.RequestResult, nil
}

func (m *Messaging) InitialMessage(context.Context) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitialCalls++
	return m.Initial, m.InitialErr
}

// Badge records badge updates.
type Badge struct {
	Count int
	Err   error
	Calls int
}

func (b *Badge) SetBadgeCount(_ context.Context, n int) error {
	b.Calls++
	if b.Err != nil {
		return b.Err
	}
	b.Count = n
	return nil
}

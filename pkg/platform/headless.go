// Package platform provides the device collaborators used when the agent runs
// without a mobile OS underneath it.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"schoolapp/internal/device"
	"schoolapp/internal/notification/domain"
	"schoolapp/internal/notification/router"
	"schoolapp/internal/notification/scheduler"
)

var ErrNoToken = errors.New("platform: no device token configured")

// Messaging reports a token and permission state fixed at startup.
type Messaging struct {
	mu         sync.Mutex
	os         device.Platform
	token      string
	granted    bool
	registered bool
	initial    *domain.Message
}

var _ device.Messaging = (*Messaging)(nil)

func NewMessaging(platform, token string, granted bool) *Messaging {
	os := device.PlatformAndroid
	if platform == string(device.PlatformIOS) {
		os = device.PlatformIOS
	}
	return &Messaging{os: os, token: token, granted: granted}
}

// SetInitialMessage sets the message reported as having launched the app.
func (m *Messaging) SetInitialMessage(msg *domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initial = msg
}

// ParseInitialMessage decodes a launch message given as JSON. An empty
// string means the app was not opened from a notification.
func ParseInitialMessage(raw string) (*domain.Message, error) {
	if raw == "" {
		return nil, nil
	}
	var msg domain.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("invalid initial message: %w", err)
	}
	return &msg, nil
}

func (m *Messaging) Platform() device.Platform { return m.os }

func (m *Messaging) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *Messaging) IsRegisteredForRemoteMessages(context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registered
}

func (m *Messaging) RegisterForRemoteMessages(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = true
	return nil
}

func (m *Messaging) PermissionStatus(context.Context) (device.AuthorizationStatus, error) {
	return m.status(), nil
}

func (m *Messaging) RequestPermission(context.Context) (device.AuthorizationStatus, error) {
	return m.status(), nil
}

func (m *Messaging) status() device.AuthorizationStatus {
	if m.granted {
		return device.StatusAuthorized
	}
	return device.StatusDenied
}

func (m *Messaging) InitialMessage(context.Context) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initial, nil
}

// Dialog answers the permission explanation with a fixed choice.
type Dialog struct {
	Accept bool
}

func (d Dialog) ConfirmNotifications(context.Context) (bool, error) {
	log.Printf("[Permission] Explanation dialog answered: accept=%v", d.Accept)
	return d.Accept, nil
}

func (d Dialog) PromptOpenSettings(context.Context) error {
	log.Printf("[Permission] Notifications are disabled; enable them in the system settings")
	return nil
}

// Navigator logs navigation requests and remembers the last one.
type Navigator struct {
	mu     sync.Mutex
	last   router.Destination
	params map[string]string
}

func (n *Navigator) Navigate(_ context.Context, dest router.Destination, params map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = dest
	n.params = params
	log.Printf("[Router] Navigating to %s %v", dest, params)
	return nil
}

// Last returns the most recent destination and its parameters.
func (n *Navigator) Last() (router.Destination, map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last, n.params
}

// Badge keeps the app icon badge count in memory.
type Badge struct {
	mu    sync.Mutex
	count int
}

func (b *Badge) SetBadgeCount(_ context.Context, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = n
	return nil
}

func (b *Badge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// LogPresenter presents notifications by writing them to the log.
type LogPresenter struct{}

func (LogPresenter) Present(_ context.Context, n scheduler.Notification) error {
	log.Printf("[Notification] (%s) %s: %s", n.Channel, n.Content.Title, n.Content.Body)
	return nil
}

package token

import (
	"context"
	"errors"
	"log"

	"schoolapp/internal/device"
	"schoolapp/pkg/kvstore"
)

// Storage keys for the cached device token. Both hold the same value.
const (
	FCMTokenKey    = "fcmToken"
	DeviceTokenKey = "deviceToken"
)

// Keys lists every key the token manager writes.
var Keys = []string{DeviceTokenKey, FCMTokenKey}

// Manager acquires and caches the push device token of the installation.
type Manager struct {
	messaging device.Messaging
	store     kvstore.Store
}

func NewManager(messaging device.Messaging, store kvstore.Store) *Manager {
	return &Manager{messaging: messaging, store: store}
}

// Acquire returns the device token, preferring the cached value. When the
// provider fails or returns nothing the cached token is used; ok is false
// when no token is known, and requests then go out without device targeting.
func (m *Manager) Acquire(ctx context.Context) (string, bool) {
	if cached := m.Cached(ctx); cached != "" {
		return cached, true
	}

	fresh, err := m.fetch(ctx)
	if err != nil {
		log.Printf("[TokenManager] Failed to get token from provider: %v", err)
		return m.fallback(ctx)
	}
	if fresh == "" {
		log.Printf("[TokenManager] Provider returned an empty token")
		return m.fallback(ctx)
	}

	m.persist(ctx, fresh)
	log.Printf("[TokenManager] Acquired device token %s", redact(fresh))
	return fresh, true
}

// Refresh stores a token rotated by the platform.
func (m *Manager) Refresh(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if token == m.Cached(ctx) {
		return
	}
	m.persist(ctx, token)
	log.Printf("[TokenManager] Device token refreshed: %s", redact(token))
}

// Cached returns the stored token without contacting the provider.
func (m *Manager) Cached(ctx context.Context) string {
	for _, key := range []string{FCMTokenKey, DeviceTokenKey} {
		v, err := m.store.Get(ctx, key)
		if err == nil && v != "" {
			return v
		}
		if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("[TokenManager] Error reading %s: %v", key, err)
		}
	}
	return ""
}

// Clear removes the cached token.
func (m *Manager) Clear(ctx context.Context) error {
	return m.store.Remove(ctx, Keys...)
}

func (m *Manager) fetch(ctx context.Context) (string, error) {
	if m.messaging.Platform() == device.PlatformIOS && !m.messaging.IsRegisteredForRemoteMessages(ctx) {
		log.Printf("[TokenManager] Registering for remote messages")
		if err := m.messaging.RegisterForRemoteMessages(ctx); err != nil {
			return "", err
		}
	}
	return m.messaging.Token(ctx)
}

// fallback re-reads the cache; a concurrent refresh may have filled it.
func (m *Manager) fallback(ctx context.Context) (string, bool) {
	if cached := m.Cached(ctx); cached != "" {
		log.Printf("[TokenManager] Using cached token")
		return cached, true
	}
	log.Printf("[TokenManager] No device token available")
	return "", false
}

func (m *Manager) persist(ctx context.Context, token string) {
	for _, key := range []string{FCMTokenKey, DeviceTokenKey} {
		if err := m.store.Set(ctx, key, token); err != nil {
			log.Printf("[TokenManager] Failed to save %s: %v", key, err)
		}
	}
}

func redact(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:12] + "..."
}

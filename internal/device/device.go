package device

import (
	"context"

	"schoolapp/internal/notification/domain"
)

// Platform decides how a device token is acquired
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// AuthorizationStatus is the live OS notification permission.
type AuthorizationStatus string

const (
	StatusNotDetermined AuthorizationStatus = "not_determined"
	StatusDenied        AuthorizationStatus = "denied"
	StatusAuthorized    AuthorizationStatus = "authorized"
	StatusProvisional   AuthorizationStatus = "provisional"
)

// Granted reports whether notifications may be shown, fully or provisionally.
func (s AuthorizationStatus) Granted() bool {
	return s == StatusAuthorized || s == StatusProvisional
}

// Messaging is the push-messaging provider of the installation.
type Messaging interface {
	Platform() Platform
	// Token returns the current device token; it may be empty.
	Token(ctx context.Context) (string, error)
	IsRegisteredForRemoteMessages(ctx context.Context) bool
	// RegisterForRemoteMessages may block until the OS confirms.
	RegisterForRemoteMessages(ctx context.Context) error

	PermissionStatus(ctx context.Context) (AuthorizationStatus, error)
	RequestPermission(ctx context.Context) (AuthorizationStatus, error)

	// InitialMessage returns the message that launched the app, if any.
	InitialMessage(ctx context.Context) (*domain.Message, error)
}

// Badge controls the app icon badge counter.
type Badge interface {
	SetBadgeCount(ctx context.Context, n int) error
}

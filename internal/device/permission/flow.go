package permission

import (
	"context"
	"errors"
	"log"

	"schoolapp/internal/device"
	"schoolapp/pkg/kvstore"
)

// AskedKey records that the explanatory dialog has been shown.
const AskedKey = "hasAskedForNotificationPermission"

// Result is how a run of the flow ended
type Result string

const (
	ResultDeclined         Result = "declined"          // user declined the explanatory dialog
	ResultDenied           Result = "denied"            // OS request refused on first ask
	ResultGranted          Result = "granted"           // permission held; token acquisition attempted
	ResultSettingsPrompted Result = "settings_prompted" // later launch without permission
	ResultFailed           Result = "failed"
)

// Dialog shows the app's own permission prompts.
type Dialog interface {
	// ConfirmNotifications explains why notifications are useful and
	// returns whether the user accepted.
	ConfirmNotifications(ctx context.Context) (bool, error)
	// PromptOpenSettings offers to open the OS settings page.
	PromptOpenSettings(ctx context.Context) error
}

// TokenAcquirer is satisfied by the token manager.
type TokenAcquirer interface {
	Acquire(ctx context.Context) (string, bool)
}

// Flow asks for notification permission at most once per installation.
type Flow struct {
	messaging device.Messaging
	dialog    Dialog
	tokens    TokenAcquirer
	store     kvstore.Store
}

func NewFlow(messaging device.Messaging, dialog Dialog, tokens TokenAcquirer, store kvstore.Store) *Flow {
	return &Flow{messaging: messaging, dialog: dialog, tokens: tokens, store: store}
}

// Run executes the flow. On the first run the explanatory dialog is shown and
// the asked flag is persisted whatever the answer. Later runs only check the
// live OS status and offer the settings prompt when permission is missing.
func (f *Flow) Run(ctx context.Context) Result {
	asked, err := f.HasAsked(ctx)
	if err != nil {
		log.Printf("[Permission] Error reading %s: %v", AskedKey, err)
		return ResultFailed
	}
	if asked {
		return f.recheck(ctx)
	}
	return f.firstAsk(ctx)
}

// HasAsked reports whether the explanatory dialog was already shown.
func (f *Flow) HasAsked(ctx context.Context) (bool, error) {
	v, err := f.store.Get(ctx, AskedKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (f *Flow) firstAsk(ctx context.Context) Result {
	accepted, err := f.dialog.ConfirmNotifications(ctx)
	if err != nil {
		// Not shown, so the flag stays unset and the next launch asks again.
		log.Printf("[Permission] Explanatory dialog failed: %v", err)
		return ResultFailed
	}
	if err := f.store.Set(ctx, AskedKey, "true"); err != nil {
		log.Printf("[Permission] Failed to persist %s: %v", AskedKey, err)
	}
	if !accepted {
		log.Printf("[Permission] User declined notifications")
		return ResultDeclined
	}

	status, err := f.messaging.RequestPermission(ctx)
	if err != nil {
		log.Printf("[Permission] OS permission request failed: %v", err)
		return ResultFailed
	}
	if !status.Granted() {
		log.Printf("[Permission] OS permission not granted: %s", status)
		return ResultDenied
	}

	f.acquireToken(ctx)
	return ResultGranted
}

func (f *Flow) recheck(ctx context.Context) Result {
	status, err := f.messaging.PermissionStatus(ctx)
	if err != nil {
		log.Printf("[Permission] Failed to query permission status: %v", err)
		return ResultFailed
	}
	if status.Granted() {
		f.acquireToken(ctx)
		return ResultGranted
	}

	if err := f.dialog.PromptOpenSettings(ctx); err != nil {
		log.Printf("[Permission] Settings prompt failed: %v", err)
	}
	return ResultSettingsPrompted
}

func (f *Flow) acquireToken(ctx context.Context) {
	if _, ok := f.tokens.Acquire(ctx); !ok {
		log.Printf("[Permission] Permission granted but no device token available")
	}
}

package permission

import (
	"context"
	"errors"
	"testing"

	"schoolapp/internal/device"
	"schoolapp/internal/device/devicetest"
	"schoolapp/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialog struct {
	accept        bool
	confirmErr    error
	confirmCalls  int
	settingsCalls int
}

func (d *fakeDialog) ConfirmNotifications(context.Context) (bool, error) {
	d.confirmCalls++
	return d.accept, d.confirmErr
}

func (d *fakeDialog) PromptOpenSettings(context.Context) error {
	d.settingsCalls++
	return nil
}

type fakeTokens struct{ calls int }

func (f *fakeTokens) Acquire(context.Context) (string, bool) {
	f.calls++
	return "tok", true
}

func TestFlow_FirstRunAccepted(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	msg := &devicetest.Messaging{RequestResult: device.StatusAuthorized}
	dialog := &fakeDialog{accept: true}
	tokens := &fakeTokens{}

	f := NewFlow(msg, dialog, tokens, store)
	assert.Equal(t, ResultGranted, f.Run(ctx))
	assert.Equal(t, 1, dialog.confirmCalls)
	assert.Equal(t, 1, msg.RequestCalls)
	assert.Equal(t, 1, tokens.calls)

	asked, err := f.HasAsked(ctx)
	require.NoError(t, err)
	assert.True(t, asked)
}

func TestFlow_ProvisionalCountsAsGranted(t *testing.T) {
	msg := &devicetest.Messaging{RequestResult: device.StatusProvisional}
	tokens := &fakeTokens{}
	f := NewFlow(msg, &fakeDialog{accept: true}, tokens, kvstore.NewMemoryStore())

	assert.Equal(t, ResultGranted, f.Run(context.Background()))
	assert.Equal(t, 1, tokens.calls)
}

func TestFlow_FirstRunDeclined(t *testing.T) {
	ctx := context.Background()
	msg := &devicetest.Messaging{}
	dialog := &fakeDialog{accept: false}
	tokens := &fakeTokens{}
	f := NewFlow(msg, dialog, tokens, kvstore.NewMemoryStore())

	assert.Equal(t, ResultDeclined, f.Run(ctx))
	assert.Zero(t, msg.RequestCalls)
	assert.Zero(t, tokens.calls)

	// second launch: no explanatory dialog, settings prompt instead
	assert.Equal(t, ResultSettingsPrompted, f.Run(ctx))
	assert.Equal(t, 1, dialog.confirmCalls)
	assert.Equal(t, 1, dialog.settingsCalls)
}

func TestFlow_OSDenied(t *testing.T) {
	msg := &devicetest.Messaging{RequestResult: device.StatusDenied}
	tokens := &fakeTokens{}
	f := NewFlow(msg, &fakeDialog{accept: true}, tokens, kvstore.NewMemoryStore())

	assert.Equal(t, ResultDenied, f.Run(context.Background()))
	assert.Zero(t, tokens.calls)
}

func TestFlow_DialogShownOnceAcrossOutcomes(t *testing.T) {
	ctx := context.Background()
	for _, status := range []device.AuthorizationStatus{device.StatusAuthorized, device.StatusDenied} {
		t.Run(string(status), func(t *testing.T) {
			msg := &devicetest.Messaging{RequestResult: status}
			dialog := &fakeDialog{accept: true}
			f := NewFlow(msg, dialog, &fakeTokens{}, kvstore.NewMemoryStore())

			for i := 0; i < 3; i++ {
				f.Run(ctx)
			}
			assert.Equal(t, 1, dialog.confirmCalls)
			assert.Equal(t, 1, msg.RequestCalls)
		})
	}
}

func TestFlow_RecheckGranted(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, AskedKey, "true"))
	msg := &devicetest.Messaging{Status: device.StatusAuthorized}
	dialog := &fakeDialog{}
	tokens := &fakeTokens{}

	assert.Equal(t, ResultGranted, NewFlow(msg, dialog, tokens, store).Run(ctx))
	assert.Zero(t, dialog.confirmCalls)
	assert.Zero(t, dialog.settingsCalls)
	assert.Equal(t, 1, tokens.calls)
}

func TestFlow_DialogError(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	dialog := &fakeDialog{confirmErr: errors.New("no window")}
	f := NewFlow(&devicetest.Messaging{RequestResult: device.StatusAuthorized}, dialog, &fakeTokens{}, store)
	assert.Equal(t, ResultFailed, f.Run(ctx))
	asked, _ := f.HasAsked(ctx)
	assert.False(t, asked)

	// The dialog never reached the user, so the next launch explains again.
	dialog.confirmErr = nil
	dialog.accept = true
	assert.Equal(t, ResultGranted, f.Run(ctx))
	asked, _ = f.HasAsked(ctx)
	assert.True(t, asked)
}

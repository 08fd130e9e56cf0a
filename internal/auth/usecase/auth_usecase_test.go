package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	authdto "schoolapp/internal/auth/dto"
	"schoolapp/internal/device/devicetest"
	"schoolapp/internal/device/token"
	"schoolapp/internal/logout"
	"schoolapp/internal/notification/history"
	"schoolapp/internal/session"
	"schoolapp/pkg/backend"
	"schoolapp/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	got  backend.LoginRequest
	resp *backend.LoginResponse
	err  error
}

func (f *fakeChecker) Login(_ context.Context, req backend.LoginRequest) (*backend.LoginResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeChecker) RemoveDevice(context.Context, string, string) error { return nil }

func newUsecase(store kvstore.Store, checker *fakeChecker, msg *devicetest.Messaging) AuthUsecase {
	sessions := session.NewRepository(store)
	tokens := token.NewManager(msg, store)
	orch := logout.NewOrchestrator(logout.Deps{
		Store:    store,
		Sessions: sessions,
		History:  history.NewStore(store),
		Tokens:   tokens,
		Backend:  checker,
	})
	return NewAuthUsecase(checker, tokens, sessions, orch)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	checker := &fakeChecker{resp: &backend.LoginResponse{
		ID: "p1", AuthCode: "P-1", Username: "parent", UserType: "parent",
		Students: []backend.LinkedStudent{{ID: "s1", AuthCode: "AUTH-1"}},
	}}
	uc := newUsecase(store, checker, &devicetest.Messaging{TokenValue: "dev-tok"})

	user, err := uc.Login(ctx, &authdto.LoginRequest{Username: "parent", Password: "pw", UserType: "parent"})
	require.NoError(t, err)
	assert.Equal(t, session.UserTypeParent, user.UserType)
	assert.Equal(t, "dev-tok", checker.got.DeviceToken)

	current, err := uc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1", current.ID)

	accounts, err := session.NewRepository(store).StudentAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "AUTH-1", accounts[0].AuthCode)
}

func TestLogin_WithoutToken(t *testing.T) {
	checker := &fakeChecker{resp: &backend.LoginResponse{ID: "t1", UserType: "teacher"}}
	uc := newUsecase(kvstore.NewMemoryStore(), checker, &devicetest.Messaging{TokenErr: errors.New("offline")})

	_, err := uc.Login(context.Background(), &authdto.LoginRequest{Username: "t", Password: "p", UserType: "teacher"})
	require.NoError(t, err)
	assert.Empty(t, checker.got.DeviceToken)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "bad credentials", err: &backend.APIError{StatusCode: http.StatusUnauthorized}, wantErr: ErrInvalidCredentials},
		{name: "server error", err: &backend.APIError{StatusCode: http.StatusInternalServerError}},
		{name: "network", err: errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := kvstore.NewMemoryStore()
			uc := newUsecase(store, &fakeChecker{err: tt.err}, &devicetest.Messaging{})

			_, err := uc.Login(context.Background(), &authdto.LoginRequest{Username: "x", Password: "y", UserType: "student"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			_, err = uc.CurrentUser(context.Background())
			assert.ErrorIs(t, err, session.ErrNoSession)
		})
	}
}

func TestRemoveStudent_NotLinked(t *testing.T) {
	uc := newUsecase(kvstore.NewMemoryStore(), &fakeChecker{}, &devicetest.Messaging{})
	_, err := uc.RemoveStudent(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrStudentNotLinked)
}

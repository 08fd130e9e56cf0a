package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	authdto "schoolapp/internal/auth/dto"
	"schoolapp/internal/logout"
	"schoolapp/internal/session"
	"schoolapp/pkg/backend"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("session expired")
	ErrStudentNotLinked   = errors.New("student account not linked")
)

// CredentialChecker is the backend login call.
type CredentialChecker interface {
	Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error)
}

// TokenAcquirer is satisfied by the token manager.
type TokenAcquirer interface {
	Acquire(ctx context.Context) (string, bool)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	backend  CredentialChecker
	tokens   TokenAcquirer
	sessions *session.Repository
	logout   *logout.Orchestrator
	now      func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(checker CredentialChecker, tokens TokenAcquirer, sessions *session.Repository, orchestrator *logout.Orchestrator) AuthUsecase {
	return &authUsecase{
		backend:  checker,
		tokens:   tokens,
		sessions: sessions,
		logout:   orchestrator,
		now:      time.Now,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*session.UserData, error) {
	deviceToken, ok := u.tokens.Acquire(ctx)
	if !ok {
		log.Printf("[Auth] Logging in without device token; push notifications will not be targeted")
	}

	resp, err := u.backend.Login(ctx, backend.LoginRequest{
		Username:    req.Username,
		Password:    req.Password,
		UserType:    req.UserType,
		DeviceToken: deviceToken,
	})
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user := &session.UserData{
		ID:          resp.ID,
		AuthCode:    resp.AuthCode,
		Username:    resp.Username,
		Name:        resp.Name,
		UserType:    session.UserType(resp.UserType),
		BranchID:    resp.BranchID,
		AccessToken: resp.AccessToken,
	}
	if user.UserType == "" {
		user.UserType = session.UserType(req.UserType)
	}
	if err := u.sessions.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if len(resp.Students) > 0 {
		accounts := make([]session.StudentAccount, 0, len(resp.Students))
		for _, s := range resp.Students {
			accounts = append(accounts, session.StudentAccount{ID: s.ID, AuthCode: s.AuthCode, Username: s.Username, Name: s.Name})
		}
		if err := u.sessions.SaveStudentAccounts(ctx, accounts); err != nil {
			log.Printf("[Auth] Failed to save linked student accounts: %v", err)
		}
	}

	log.Printf("[Auth] %s %s logged in", user.UserType, user.Username)
	return user, nil
}

func (u *authUsecase) CurrentUser(ctx context.Context) (*session.UserData, error) {
	user, err := u.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if user.Expired(u.now()) {
		return nil, ErrSessionExpired
	}
	return user, nil
}

func (u *authUsecase) Logout(ctx context.Context, opts logout.Options) logout.Report {
	return u.logout.Logout(ctx, opts)
}

func (u *authUsecase) RemoveStudent(ctx context.Context, authCode string) (logout.Report, error) {
	accounts, err := u.sessions.StudentAccounts(ctx)
	if err != nil {
		return logout.Report{}, err
	}
	for _, a := range accounts {
		if a.AuthCode == authCode {
			return u.logout.RemoveStudent(ctx, a), nil
		}
	}
	return logout.Report{}, ErrStudentNotLinked
}

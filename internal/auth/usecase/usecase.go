package usecase

import (
	"context"

	authdto "schoolapp/internal/auth/dto"
	"schoolapp/internal/logout"
	"schoolapp/internal/session"
)

// AuthUsecase logs principals in and out of this installation.
type AuthUsecase interface {
	// Login checks credentials with the backend and persists the session.
	Login(ctx context.Context, req *authdto.LoginRequest) (*session.UserData, error)

	// CurrentUser returns the logged-in user or session.ErrNoSession.
	CurrentUser(ctx context.Context) (*session.UserData, error)

	// Logout runs the cleanup pipeline with opts.
	Logout(ctx context.Context, opts logout.Options) logout.Report

	// RemoveStudent unlinks one student account from a parent login.
	RemoveStudent(ctx context.Context, authCode string) (logout.Report, error)
}

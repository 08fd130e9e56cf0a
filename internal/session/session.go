package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schoolapp/pkg/kvstore"

	"github.com/golang-jwt/jwt/v5"
)

// Storage keys owned by the session layer.
const (
	UserDataKey        = "userData"
	StudentAccountsKey = "studentAccounts"
)

// ErrNoSession is returned when no user is logged in on this installation.
var ErrNoSession = errors.New("no active session")

// UserType identifies the kind of principal that logged in
type UserType string

const (
	UserTypeTeacher UserType = "teacher"
	UserTypeStudent UserType = "student"
	UserTypeParent  UserType = "parent"
)

// UserData is the persisted record of the logged-in principal.
type UserData struct {
	ID          string   `json:"id"`
	AuthCode    string   `json:"authCode"`
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	UserType    UserType `json:"userType"`
	BranchID    string   `json:"branchId,omitempty"`
	AccessToken string   `json:"accessToken,omitempty"`
}

// StudentAccount is a student linked to a parent login.
type StudentAccount struct {
	ID       string `json:"id"`
	AuthCode string `json:"authCode"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Repository reads and writes session records in the key-value store.
type Repository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

// Current returns the logged-in user or ErrNoSession.
func (r *Repository) Current(ctx context.Context) (*UserData, error) {
	var user UserData
	if err := kvstore.GetJSON(ctx, r.store, UserDataKey, &user); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Save(ctx context.Context, user *UserData) error {
	return kvstore.SetJSON(ctx, r.store, UserDataKey, user)
}

func (r *Repository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, UserDataKey)
}

// StudentAccounts returns the students linked to the current parent login.
// A missing list is not an error.
func (r *Repository) StudentAccounts(ctx context.Context) ([]StudentAccount, error) {
	var accounts []StudentAccount
	err := kvstore.GetJSON(ctx, r.store, StudentAccountsKey, &accounts)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return nil, err
	}
	return accounts, nil
}

func (r *Repository) SaveStudentAccounts(ctx context.Context, accounts []StudentAccount) error {
	return kvstore.SetJSON(ctx, r.store, StudentAccountsKey, accounts)
}

// RemoveStudentAccount drops the account with the given auth code from the
// linked list. It reports whether an account was removed.
func (r *Repository) RemoveStudentAccount(ctx context.Context, authCode string) (bool, error) {
	accounts, err := r.StudentAccounts(ctx)
	if err != nil {
		return false, err
	}
	kept := accounts[:0]
	removed := false
	for _, a := range accounts {
		if a.AuthCode == authCode {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return false, nil
	}
	if err := r.SaveStudentAccounts(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// ResolveUserID returns the identifier the backend uses for device
// registration: the stored id, else the auth code, else the "user_id" claim
// of the access token.
func (u *UserData) ResolveUserID() (string, error) {
	if u.ID != "" {
		return u.ID, nil
	}
	if u.AuthCode != "" {
		return u.AuthCode, nil
	}
	if u.AccessToken == "" {
		return "", errors.New("user identifier unavailable")
	}
	claims, err := u.claims()
	if err != nil {
		return "", err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid token claims")
	}
	return userID, nil
}

// Expired reports whether the access token carries an expiry in the past.
// Tokens without an "exp" claim never expire.
func (u *UserData) Expired(now time.Time) bool {
	if u.AccessToken == "" {
		return false
	}
	claims, err := u.claims()
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Before(now)
}

// claims decodes the access token without verifying its signature; the
// signing key lives on the backend.
func (u *UserData) claims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(u.AccessToken, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	return claims, nil
}

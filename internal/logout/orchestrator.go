package logout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"schoolapp/internal/device"
	"schoolapp/internal/notification/domain"
	"schoolapp/internal/notification/history"
	"schoolapp/internal/session"
	"schoolapp/pkg/kvstore"
)

// DefaultDeregisterTimeout bounds the remote device deregistration call.
const DefaultDeregisterTimeout = 10 * time.Second

// Options select how much the logout removes.
type Options struct {
	ClearDeviceToken bool
	ClearAllData     bool
}

var (
	// QuickLogout keeps the device token and unrelated keys.
	QuickLogout = Options{}
	// CompleteLogout removes the device token and every persisted key.
	CompleteLogout = Options{ClearDeviceToken: true, ClearAllData: true}
)

// TeardownObserver releases in-memory state of a subsystem on logout.
type TeardownObserver interface {
	Name() string
	Teardown(ctx context.Context) error
}

type observerFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (o observerFunc) Name() string                       { return o.name }
func (o observerFunc) Teardown(ctx context.Context) error { return o.fn(ctx) }

// Observer adapts fn to a TeardownObserver.
func Observer(name string, fn func(ctx context.Context) error) TeardownObserver {
	return observerFunc{name: name, fn: fn}
}

// DeviceDeregisterer is the backend call that unlinks a device token.
type DeviceDeregisterer interface {
	RemoveDevice(ctx context.Context, userID, deviceToken string) error
}

// TokenSource returns the cached device token.
type TokenSource interface {
	Cached(ctx context.Context) string
}

// CacheClearer clears a cache owned by another subsystem.
type CacheClearer interface {
	Clear(ctx context.Context) error
}

// Deps are the collaborators of the Orchestrator. Backend, Badge and
// PolicyCache are optional; a missing one makes its step fail or skip.
type Deps struct {
	Store       kvstore.Store
	Registry    *Registry
	Sessions    *session.Repository
	History     *history.Store
	Tokens      TokenSource
	Backend     DeviceDeregisterer
	Badge       device.Badge
	PolicyCache CacheClearer

	DeregisterTimeout time.Duration
}

// Orchestrator tears down every piece of user-scoped state. Steps run in a
// fixed order and a failing step never stops the ones after it.
type Orchestrator struct {
	deps      Deps
	mu        sync.Mutex
	observers []TeardownObserver
}

func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Registry == nil {
		deps.Registry = DefaultRegistry()
	}
	if deps.DeregisterTimeout <= 0 {
		deps.DeregisterTimeout = DefaultDeregisterTimeout
	}
	return &Orchestrator{deps: deps}
}

// RegisterObserver adds a teardown observer run as the first logout step.
func (o *Orchestrator) RegisterObserver(obs TeardownObserver) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, obs)
}

// Logout runs the cleanup pipeline. Remote deregistration runs before any
// local identity data is removed because it needs the session and token.
func (o *Orchestrator) Logout(ctx context.Context, opts Options) Report {
	o.mu.Lock()
	defer o.mu.Unlock()

	log.Printf("[Logout] Starting logout (clearDeviceToken=%v, clearAllData=%v)", opts.ClearDeviceToken, opts.ClearAllData)

	r := &Report{}
	r.run(StepTeardownObservers, func() error { return o.runObservers(ctx) })
	r.run(StepDeregisterDevice, func() error { return o.deregisterCurrent(ctx) })
	r.run(StepResetBadge, func() error { return o.resetBadge(ctx) })
	r.run(StepRemoveSession, func() error { return o.deps.Sessions.Clear(ctx) })
	r.run(StepClearHistory, func() error { return o.deps.History.Clear(ctx) })
	r.run(StepRemoveMessagingKeys, func() error { return o.removeGroup(ctx, GroupMessaging) })
	r.run(StepClearPolicyCache, func() error { return o.clearPolicyCache(ctx) })
	r.run(StepRemoveDomainCaches, func() error { return o.removeGroup(ctx, GroupDomainCache) })
	r.run(StepRemoveStudentAccounts, func() error { return o.removeGroup(ctx, GroupStudentAccounts) })
	if opts.ClearDeviceToken {
		r.run(StepRemoveDeviceToken, func() error { return o.removeGroup(ctx, GroupDeviceToken) })
	} else {
		r.skip(StepRemoveDeviceToken)
	}
	r.run(StepSweepKeys, func() error { return o.sweep(ctx, opts) })

	if err := r.Err(); err != nil {
		log.Printf("[Logout] Logout finished with failures: %v", err)
	} else {
		log.Printf("[Logout] Logout finished")
	}
	return *r
}

// QuickLogout keeps the device token and unrelated keys.
func (o *Orchestrator) QuickLogout(ctx context.Context) Report {
	return o.Logout(ctx, QuickLogout)
}

// CompleteLogout clears the device token and all data.
func (o *Orchestrator) CompleteLogout(ctx context.Context) Report {
	return o.Logout(ctx, CompleteLogout)
}

func (o *Orchestrator) runObservers(ctx context.Context) error {
	var errs []error
	for _, obs := range o.observers {
		if err := obs.Teardown(ctx); err != nil {
			log.Printf("[Logout] Teardown observer %s failed: %v", obs.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", obs.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) deregisterCurrent(ctx context.Context) error {
	user, err := o.deps.Sessions.Current(ctx)
	if err != nil {
		return err
	}
	userID, err := user.ResolveUserID()
	if err != nil {
		return err
	}
	return o.deregister(ctx, userID)
}

func (o *Orchestrator) deregister(ctx context.Context, userID string) error {
	if o.deps.Backend == nil {
		return errors.New("backend not configured")
	}
	if o.deps.Tokens == nil {
		return ErrNoDeviceToken
	}
	deviceToken := o.deps.Tokens.Cached(ctx)
	if deviceToken == "" {
		return ErrNoDeviceToken
	}

	ctx, cancel := context.WithTimeout(ctx, o.deps.DeregisterTimeout)
	defer cancel()
	if err := o.deps.Backend.RemoveDevice(ctx, userID, deviceToken); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("device deregistration timed out after %s: %w", o.deps.DeregisterTimeout, err)
		}
		return err
	}
	log.Printf("[Logout] Device deregistered for user %s", userID)
	return nil
}

func (o *Orchestrator) resetBadge(ctx context.Context) error {
	if o.deps.Badge == nil {
		return nil
	}
	return o.deps.Badge.SetBadgeCount(ctx, 0)
}

func (o *Orchestrator) clearPolicyCache(ctx context.Context) error {
	if o.deps.PolicyCache == nil {
		return nil
	}
	return o.deps.PolicyCache.Clear(ctx)
}

func (o *Orchestrator) removeGroup(ctx context.Context, group Group) error {
	keys := o.deps.Registry.ExactKeys(group)
	if len(keys) == 0 {
		return nil
	}
	return o.deps.Store.Remove(ctx, keys...)
}

// sweep removes every key when all data is cleared, keeping the device
// token unless that was also requested. Otherwise it removes only keys of
// the registered user-data domains.
func (o *Orchestrator) sweep(ctx context.Context, opts Options) error {
	keys, err := o.deps.Store.Keys(ctx)
	if err != nil {
		return err
	}

	var doomed []string
	for _, k := range keys {
		if opts.ClearAllData {
			if !opts.ClearDeviceToken && o.deps.Registry.Match(k, GroupDeviceToken) {
				continue
			}
			doomed = append(doomed, k)
			continue
		}
		if o.deps.Registry.Match(k, GroupUserData) {
			doomed = append(doomed, k)
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	log.Printf("[Logout] Removing %d remaining keys", len(doomed))
	return o.deps.Store.Remove(ctx, doomed...)
}

// minSweepTokenLen is the shortest identifier the student sweep looks for.
const minSweepTokenLen = 3

// protectedGroups are never touched by the student sweep.
var protectedGroups = []Group{GroupSession, GroupHistory, GroupDeviceToken, GroupStudentAccounts}

// RemoveStudent clears the cached data of one linked student account.
func (o *Orchestrator) RemoveStudent(ctx context.Context, student session.StudentAccount) Report {
	o.mu.Lock()
	defer o.mu.Unlock()

	log.Printf("[Logout] Removing data of student %s", student.AuthCode)

	r := &Report{}
	r.run(StepDeregisterStudent, func() error {
		userID := student.ID
		if userID == "" {
			userID = student.AuthCode
		}
		if userID == "" {
			return errors.New("student identifier unavailable")
		}
		return o.deregister(ctx, userID)
	})
	r.run(StepRemoveStudentKeys, func() error {
		if student.AuthCode == "" {
			return errors.New("student auth code unavailable")
		}
		return o.deps.Store.Remove(ctx, o.deps.Registry.StudentKeys(student.AuthCode)...)
	})
	r.run(StepFilterHistory, func() error {
		n, err := o.deps.History.RemoveWhere(ctx, func(rec domain.Record) bool {
			return belongsToStudent(rec, student)
		})
		if err == nil && n > 0 {
			log.Printf("[Logout] Removed %d history entries of student %s", n, student.AuthCode)
		}
		return err
	})
	r.run(StepSweepStudentKeys, func() error { return o.sweepStudent(ctx, student) })
	r.run(StepUnlinkStudent, func() error {
		_, err := o.deps.Sessions.RemoveStudentAccount(ctx, student.AuthCode)
		return err
	})
	return *r
}

func (o *Orchestrator) sweepStudent(ctx context.Context, student session.StudentAccount) error {
	var needles []string
	for _, s := range []string{student.ID, student.AuthCode, student.Username} {
		if len(s) >= minSweepTokenLen {
			needles = append(needles, s)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	keys, err := o.deps.Store.Keys(ctx)
	if err != nil {
		return err
	}
	var doomed []string
	for _, k := range keys {
		if o.deps.Registry.Match(k, protectedGroups...) {
			continue
		}
		for _, n := range needles {
			if containsSegment(k, n) {
				doomed = append(doomed, k)
				break
			}
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	return o.deps.Store.Remove(ctx, doomed...)
}

func isKeySeparator(b byte) bool {
	switch b {
	case '_', '-', ':', '.':
		return true
	}
	return false
}

// containsSegment reports whether id occurs in key bounded on both sides by
// a separator or the end of the key, so "A101" does not match "grades_A1010".
func containsSegment(key, id string) bool {
	for from := 0; from+len(id) <= len(key); {
		i := strings.Index(key[from:], id)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(id)
		if (start == 0 || isKeySeparator(key[start-1])) && (end == len(key) || isKeySeparator(key[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

var studentDataFields = []string{"student_id", "studentId", "auth_code", "authCode"}

func belongsToStudent(rec domain.Record, student session.StudentAccount) bool {
	for _, f := range studentDataFields {
		v := rec.Data[f]
		if v == "" {
			continue
		}
		if v == student.ID || v == student.AuthCode {
			return true
		}
	}
	return false
}

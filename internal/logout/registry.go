package logout

import (
	"strings"
	"sync"

	"schoolapp/internal/device/token"
	"schoolapp/internal/notification/history"
	"schoolapp/internal/session"
)

// Group is the logout step that owns a set of keys
type Group string

const (
	GroupSession         Group = "session"
	GroupHistory         Group = "history"
	GroupMessaging       Group = "messaging"
	GroupDomainCache     Group = "domain_cache"
	GroupStudentAccounts Group = "student_accounts"
	GroupDeviceToken     Group = "device_token"
	GroupUserData        Group = "user_data"
)

type matchKind int

const (
	matchExact matchKind = iota
	matchPrefix
	matchSuffix
)

// KeyPattern selects storage keys by exact name, prefix or suffix.
type KeyPattern struct {
	kind  matchKind
	value string
}

func Exact(key string) KeyPattern     { return KeyPattern{kind: matchExact, value: key} }
func Prefix(prefix string) KeyPattern { return KeyPattern{kind: matchPrefix, value: prefix} }
func Suffix(suffix string) KeyPattern { return KeyPattern{kind: matchSuffix, value: suffix} }

func (p KeyPattern) Match(key string) bool {
	switch p.kind {
	case matchPrefix:
		return strings.HasPrefix(key, p.value)
	case matchSuffix:
		return strings.HasSuffix(key, p.value)
	default:
		return key == p.value
	}
}

// Domain is a logical feature area and the keys it persists.
type Domain struct {
	Name     string
	Group    Group
	Patterns []KeyPattern
}

// Registry maps logical domains to the keys they own, so cleanup walks a
// known list instead of guessing from key names.
type Registry struct {
	mu      sync.RWMutex
	domains []Domain

	// studentKeyPrefixes build per-student cache keys: prefix + auth code.
	studentKeyPrefixes []string
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds d. Features that persist new keys register them at startup.
func (r *Registry) Register(d Domain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.domains = append(r.domains, d)
}

// RegisterStudentKeyPrefix declares a cache keyed by a student's auth code.
func (r *Registry) RegisterStudentKeyPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.studentKeyPrefixes = append(r.studentKeyPrefixes, prefix)
}

// ExactKeys returns the fixed keys owned by group.
func (r *Registry) ExactKeys(group Group) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for _, d := range r.domains {
		if d.Group != group {
			continue
		}
		for _, p := range d.Patterns {
			if p.kind == matchExact {
				keys = append(keys, p.value)
			}
		}
	}
	return keys
}

// Match reports whether key belongs to any domain of the given groups.
func (r *Registry) Match(key string, groups ...Group) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.domains {
		if !containsGroup(groups, d.Group) {
			continue
		}
		for _, p := range d.Patterns {
			if p.Match(key) {
				return true
			}
		}
	}
	return false
}

// StudentKeys returns the per-student cache keys for authCode.
func (r *Registry) StudentKeys(authCode string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.studentKeyPrefixes))
	for _, p := range r.studentKeyPrefixes {
		keys = append(keys, p+authCode)
	}
	return keys
}

func containsGroup(groups []Group, g Group) bool {
	for _, x := range groups {
		if x == g {
			return true
		}
	}
	return false
}

// DefaultRegistry returns the keys the app persists today.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Domain{Name: "session", Group: GroupSession, Patterns: []KeyPattern{Exact(session.UserDataKey)}})
	r.Register(Domain{Name: "notification history", Group: GroupHistory, Patterns: []KeyPattern{Exact(history.StorageKey)}})
	r.Register(Domain{Name: "messaging", Group: GroupMessaging, Patterns: []KeyPattern{
		Exact("notificationSettings"),
		Exact("pendingNotifications"),
		Exact("lastNotificationCheck"),
		Exact("unreadNotificationCount"),
		Exact("notificationBadgeCount"),
	}})
	r.Register(Domain{Name: "school data", Group: GroupDomainCache, Patterns: []KeyPattern{
		Exact("gradesData"),
		Exact("attendanceData"),
		Exact("timetableData"),
		Exact("libraryData"),
		Exact("bpsData"),
		Exact("healthData"),
		Exact("selectedStudent"),
		Exact("selectedBranch"),
	}})
	r.Register(Domain{Name: "linked students", Group: GroupStudentAccounts, Patterns: []KeyPattern{Exact(session.StudentAccountsKey)}})

	tokenPatterns := make([]KeyPattern, 0, len(token.Keys))
	for _, k := range token.Keys {
		tokenPatterns = append(tokenPatterns, Exact(k))
	}
	r.Register(Domain{Name: "device token", Group: GroupDeviceToken, Patterns: tokenPatterns})

	r.Register(Domain{Name: "cached user data", Group: GroupUserData, Patterns: []KeyPattern{
		Prefix("grades_"),
		Prefix("attendance_"),
		Prefix("homework_"),
		Prefix("timetable_"),
		Prefix("library_"),
		Prefix("bps_"),
		Prefix("health_"),
		Prefix("teacher_"),
		Prefix("student_"),
		Suffix("_cache"),
		Suffix("_history"),
	}})

	for _, p := range []string{"grades_", "attendance_", "homework_", "timetable_", "library_", "bps_", "health_"} {
		r.RegisterStudentKeyPrefix(p)
	}
	return r
}

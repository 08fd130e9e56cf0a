package scheduler

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"schoolapp/internal/notification/domain"

	"github.com/google/uuid"
)

// Outcome records what happened to a scheduling call
type Outcome string

const (
	OutcomePresented Outcome = "presented"
	OutcomeScheduled Outcome = "scheduled"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Notification is handed to the Presenter when it is due.
type Notification struct {
	ID      string         `json:"id"`
	Content domain.Content `json:"content"`
	Channel domain.Channel `json:"channel"`
	FireAt  time.Time      `json:"fireAt"`
}

// Presenter displays a notification on the device.
type Presenter interface {
	Present(ctx context.Context, n Notification) error
}

// Trigger says when a notification fires. The zero Trigger fires immediately.
type Trigger struct {
	At           time.Time
	RepeatsDaily bool
}

func Immediate() Trigger { return Trigger{} }

func At(t time.Time) Trigger { return Trigger{At: t} }

// DailyAt fires at t and then every 24 hours.
func DailyAt(t time.Time) Trigger { return Trigger{At: t, RepeatsDaily: true} }

func (t Trigger) immediate() bool { return t.At.IsZero() }

type pending struct {
	notification Notification
	repeatsDaily bool
}

// Scheduler presents local notifications now or queues them for later.
// Calls never block on the presenter beyond a single attempt and are not retried.
type Scheduler struct {
	presenter Presenter
	interval  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	pending  map[string]*pending
	outcomes map[Outcome]int

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler that checks for due notifications every interval.
func NewScheduler(presenter Presenter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		presenter: presenter,
		interval:  interval,
		now:       time.Now,
		pending:   make(map[string]*pending),
		outcomes:  make(map[Outcome]int),
		stopChan:  make(chan struct{}),
	}
}

// Schedule presents content immediately or queues it for trigger.At.
// A one-shot trigger already in the past is skipped; a daily one rolls
// forward to its next occurrence.
func (s *Scheduler) Schedule(ctx context.Context, content domain.Content, trigger Trigger) (string, Outcome) {
	n := Notification{
		ID:      uuid.New().String(),
		Content: content,
		Channel: content.Channel(),
	}

	if trigger.immediate() {
		n.FireAt = s.now()
		return n.ID, s.record(s.present(ctx, n))
	}

	now := s.now()
	fireAt := trigger.At
	if !fireAt.After(now) {
		if !trigger.RepeatsDaily {
			log.Printf("[Scheduler] Skipping %q: trigger %s already passed", content.Title, fireAt.Format(time.RFC3339))
			return n.ID, s.record(OutcomeSkipped)
		}
		for !fireAt.After(now) {
			fireAt = fireAt.Add(24 * time.Hour)
		}
	}
	n.FireAt = fireAt

	s.mu.Lock()
	s.pending[n.ID] = &pending{notification: n, repeatsDaily: trigger.RepeatsDaily}
	s.mu.Unlock()

	log.Printf("[Scheduler] Scheduled %q on channel %s for %s", content.Title, n.Channel, fireAt.Format(time.RFC3339))
	return n.ID, s.record(OutcomeScheduled)
}

// Cancel removes a queued notification. It reports whether one was queued.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	delete(s.pending, id)
	return ok
}

// CancelAll drops every queued notification.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	s.pending = make(map[string]*pending)
	return n
}

// Pending returns the queued notifications ordered by fire time.
func (s *Scheduler) Pending() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.notification)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// Outcomes returns how many calls ended in each outcome.
func (s *Scheduler) Outcomes() map[Outcome]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Outcome]int, len(s.outcomes))
	for k, v := range s.outcomes {
		out[k] = v
	}
	return out
}

// Start begins the delivery loop for queued notifications
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("[Scheduler] Starting local notification scheduler (interval: %s)", s.interval)

	go func() {
		s.deliverDue(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.deliverDue(ctx)
			case <-ctx.Done():
				log.Println("[Scheduler] Scheduler stopped")
				return
			case <-s.stopChan:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the delivery loop
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// deliverDue presents every queued notification whose time has come.
// Daily notifications are re-queued for the next day.
func (s *Scheduler) deliverDue(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []Notification
	for id, p := range s.pending {
		if p.notification.FireAt.After(now) {
			continue
		}
		due = append(due, p.notification)
		if p.repeatsDaily {
			p.notification.FireAt = p.notification.FireAt.Add(24 * time.Hour)
		} else {
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].FireAt.Before(due[j].FireAt) })
	for _, n := range due {
		s.record(s.present(ctx, n))
	}
}

func (s *Scheduler) present(ctx context.Context, n Notification) Outcome {
	if s.presenter == nil {
		log.Printf("[Scheduler] No presenter configured, dropping %q", n.Content.Title)
		return OutcomeFailed
	}
	if err := s.presenter.Present(ctx, n); err != nil {
		log.Printf("[Scheduler] Failed to present %q: %v", n.Content.Title, err)
		return OutcomeFailed
	}
	return OutcomePresented
}

func (s *Scheduler) record(o Outcome) Outcome {
	s.mu.Lock()
	s.outcomes[o]++
	s.mu.Unlock()
	return o
}

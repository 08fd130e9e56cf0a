package router

import (
	"context"
	"log"
	"sync"
	"time"

	"schoolapp/internal/notification/domain"
	"schoolapp/internal/notification/scheduler"
)

// Destination is an in-app navigation target
type Destination string

const (
	DestinationHome          Destination = "Home"
	DestinationAttendance    Destination = "Attendance"
	DestinationGrades        Destination = "Grades"
	DestinationAnnouncements Destination = "Announcements"
	DestinationTimetable     Destination = "Timetable"
)

// Navigator moves the app to a destination.
type Navigator interface {
	Navigate(ctx context.Context, dest Destination, params map[string]string) error
}

// Displayer shows local notifications; satisfied by *scheduler.Scheduler.
type Displayer interface {
	Schedule(ctx context.Context, content domain.Content, trigger scheduler.Trigger) (string, scheduler.Outcome)
}

// HistoryAppender is satisfied by *history.Store.
type HistoryAppender interface {
	Append(ctx context.Context, rec domain.Record) error
}

// InitialMessageSource returns the message that cold-started the app.
type InitialMessageSource interface {
	InitialMessage(ctx context.Context) (*domain.Message, error)
}

// Delivery reports what happened to a foreground message.
type Delivery struct {
	RecordID string
	Display  scheduler.Outcome
	Stored   bool
}

// Router dispatches inbound push messages.
type Router struct {
	display   Displayer
	history   HistoryAppender
	navigator Navigator
	initial   InitialMessageSource
	now       func() time.Time

	coldStartOnce sync.Once
}

func NewRouter(display Displayer, history HistoryAppender, navigator Navigator, initial InitialMessageSource) *Router {
	return &Router{
		display:   display,
		history:   history,
		navigator: navigator,
		initial:   initial,
		now:       time.Now,
	}
}

// HandleForeground shows msg as a local notification and records it in the
// history. Both happen regardless of the other's outcome.
func (r *Router) HandleForeground(ctx context.Context, msg domain.Message) Delivery {
	content := domain.Content{
		Title:    msg.Title,
		Body:     msg.Body,
		Type:     msg.Type(),
		Priority: domain.Priority(msg.Data["priority"]),
		Data:     msg.Data,
	}
	_, outcome := r.display.Schedule(ctx, content, scheduler.Immediate())

	rec := domain.NewRecord(msg.Title, msg.Body, msg.Data, r.now())
	stored := true
	if err := r.history.Append(ctx, rec); err != nil {
		log.Printf("[Router] Failed to store notification %q: %v", msg.Title, err)
		stored = false
	}

	log.Printf("[Router] Foreground message %q (type: %s) display=%s stored=%v", msg.Title, content.Type, outcome, stored)
	return Delivery{RecordID: rec.ID, Display: outcome, Stored: stored}
}

// HandleOpened routes a notification tapped while the app was in the
// background. The OS already displayed it, so nothing is shown or stored.
func (r *Router) HandleOpened(ctx context.Context, msg domain.Message) Destination {
	dest := DestinationFor(msg)
	if err := r.navigator.Navigate(ctx, dest, msg.Data); err != nil {
		log.Printf("[Router] Navigation to %s failed: %v", dest, err)
	}
	return dest
}

// HandleColdStart routes the notification that launched the app. The
// provider is queried only on the first call; ok is false when the app was
// not opened from a notification.
func (r *Router) HandleColdStart(ctx context.Context) (dest Destination, ok bool) {
	r.coldStartOnce.Do(func() {
		msg, err := r.initial.InitialMessage(ctx)
		if err != nil {
			log.Printf("[Router] Failed to read initial notification: %v", err)
			return
		}
		if msg == nil {
			return
		}
		log.Printf("[Router] App opened from notification %q", msg.Title)
		dest, ok = r.HandleOpened(ctx, *msg), true
	})
	return dest, ok
}

// DestinationFor maps a message's type to where the app should go.
func DestinationFor(msg domain.Message) Destination {
	switch msg.Data["type"] {
	case "attendance":
		return DestinationAttendance
	case "grade":
		return DestinationGrades
	case "announcement":
		return DestinationAnnouncements
	case "timetable":
		return DestinationTimetable
	default:
		return DestinationHome
	}
}

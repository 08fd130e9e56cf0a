package router

import (
	"context"
	"errors"
	"testing"

	"schoolapp/internal/notification/domain"
	"schoolapp/internal/notification/history"
	"schoolapp/internal/notification/scheduler"
	"schoolapp/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct {
	shown   []domain.Content
	outcome scheduler.Outcome
}

func (d *fakeDisplay) Schedule(_ context.Context, c domain.Content, _ scheduler.Trigger) (string, scheduler.Outcome) {
	d.shown = append(d.shown, c)
	if d.outcome == "" {
		return "id", scheduler.OutcomePresented
	}
	return "id", d.outcome
}

type fakeNavigator struct {
	visited []Destination
	err     error
}

func (n *fakeNavigator) Navigate(_ context.Context, dest Destination, _ map[string]string) error {
	n.visited = append(n.visited, dest)
	return n.err
}

type fakeInitial struct {
	msg   *domain.Message
	err   error
	calls int
}

func (f *fakeInitial) InitialMessage(context.Context) (*domain.Message, error) {
	f.calls++
	return f.msg, f.err
}

type failingHistory struct{}

func (failingHistory) Append(context.Context, domain.Record) error { return errors.New("disk full") }

func TestDestinationFor(t *testing.T) {
	tests := map[string]Destination{
		"attendance":   DestinationAttendance,
		"grade":        DestinationGrades,
		"announcement": DestinationAnnouncements,
		"timetable":    DestinationTimetable,
		"bps":          DestinationHome,
		"":             DestinationHome,
	}
	for typ, want := range tests {
		t.Run(typ, func(t *testing.T) {
			msg := domain.Message{Data: map[string]string{"type": typ}}
			assert.Equal(t, want, DestinationFor(msg))
		})
	}
	assert.Equal(t, DestinationHome, DestinationFor(domain.Message{}))
}

func TestRouter_HandleForeground(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(kvstore.NewMemoryStore())
	display := &fakeDisplay{}
	nav := &fakeNavigator{}
	r := NewRouter(display, store, nav, &fakeInitial{})

	d := r.HandleForeground(ctx, domain.Message{
		Title: "Fire drill",
		Body:  "Assemble at 10:00",
		Data:  map[string]string{"type": "announcement", "priority": "high"},
	})
	assert.Equal(t, scheduler.OutcomePresented, d.Display)
	assert.True(t, d.Stored)

	require.Len(t, display.shown, 1)
	assert.Equal(t, domain.ChannelAlerts, display.shown[0].Channel())

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, d.RecordID, records[0].ID)
	assert.Equal(t, domain.TypeAnnouncement, records[0].Type)
	assert.False(t, records[0].Read)
	assert.Empty(t, nav.visited)
}

func TestRouter_HandleForegroundStoresEvenWhenDisplayFails(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(kvstore.NewMemoryStore())
	r := NewRouter(&fakeDisplay{outcome: scheduler.OutcomeFailed}, store, &fakeNavigator{}, &fakeInitial{})

	d := r.HandleForeground(ctx, domain.Message{Title: "x"})
	assert.Equal(t, scheduler.OutcomeFailed, d.Display)
	assert.True(t, d.Stored)

	display := &fakeDisplay{}
	r = NewRouter(display, failingHistory{}, &fakeNavigator{}, &fakeInitial{})
	d = r.HandleForeground(ctx, domain.Message{Title: "y"})
	assert.False(t, d.Stored)
	assert.Len(t, display.shown, 1)
}

func TestRouter_HandleOpened(t *testing.T) {
	ctx := context.Background()
	store := history.NewStore(kvstore.NewMemoryStore())
	display := &fakeDisplay{}
	nav := &fakeNavigator{err: errors.New("no screen")}
	r := NewRouter(display, store, nav, &fakeInitial{})

	dest := r.HandleOpened(ctx, domain.Message{Data: map[string]string{"type": "grade"}})
	assert.Equal(t, DestinationGrades, dest)
	assert.Equal(t, []Destination{DestinationGrades}, nav.visited)
	assert.Empty(t, display.shown)

	records, _ := store.List(ctx)
	assert.Empty(t, records)
}

func TestRouter_HandleColdStart(t *testing.T) {
	ctx := context.Background()

	t.Run("opened from notification", func(t *testing.T) {
		initial := &fakeInitial{msg: &domain.Message{Title: "t", Data: map[string]string{"type": "timetable"}}}
		nav := &fakeNavigator{}
		r := NewRouter(&fakeDisplay{}, history.NewStore(kvstore.NewMemoryStore()), nav, initial)

		dest, ok := r.HandleColdStart(ctx)
		assert.True(t, ok)
		assert.Equal(t, DestinationTimetable, dest)

		_, ok = r.HandleColdStart(ctx)
		assert.False(t, ok)
		assert.Equal(t, 1, initial.calls)
		assert.Len(t, nav.visited, 1)
	})

	t.Run("normal launch", func(t *testing.T) {
		nav := &fakeNavigator{}
		r := NewRouter(&fakeDisplay{}, history.NewStore(kvstore.NewMemoryStore()), nav, &fakeInitial{})
		_, ok := r.HandleColdStart(ctx)
		assert.False(t, ok)
		assert.Empty(t, nav.visited)
	})

	t.Run("provider error is swallowed", func(t *testing.T) {
		r := NewRouter(&fakeDisplay{}, history.NewStore(kvstore.NewMemoryStore()), &fakeNavigator{}, &fakeInitial{err: errors.New("boom")})
		_, ok := r.HandleColdStart(ctx)
		assert.False(t, ok)
	})
}

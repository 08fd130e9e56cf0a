package inbound

import (
	"context"
	"fmt"
	"testing"

	"schoolapp/internal/notification/domain"
	"schoolapp/internal/notification/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	foreground []domain.Message
	opened     []domain.Message
}

func (h *recordingHandler) HandleForeground(_ context.Context, msg domain.Message) router.Delivery {
	h.foreground = append(h.foreground, msg)
	return router.Delivery{Stored: true}
}

func (h *recordingHandler) HandleOpened(_ context.Context, msg domain.Message) router.Destination {
	h.opened = append(h.opened, msg)
	return router.DestinationFor(msg)
}

func TestHandleMessage_Routing(t *testing.T) {
	h := &recordingHandler{}
	s := newService(h)
	ctx := context.Background()

	s.handleMessage(ctx, []byte(`{"messageId":"m1","title":"Grade","body":"Math","data":{"type":"grade"}}`), nil)
	s.handleMessage(ctx, []byte(`{"messageId":"m2","title":"Absent","data":{"type":"attendance"}}`), map[string]string{EventAttribute: EventOpened})

	require.Len(t, h.foreground, 1)
	assert.Equal(t, "Grade", h.foreground[0].Title)
	assert.Equal(t, domain.TypeGrade, h.foreground[0].Type())
	require.Len(t, h.opened, 1)
	assert.Equal(t, "m2", h.opened[0].MessageID)
}

func TestHandleMessage_InvalidPayload(t *testing.T) {
	h := &recordingHandler{}
	s := newService(h)

	s.handleMessage(context.Background(), []byte("not json"), nil)
	assert.Empty(t, h.foreground)
	assert.Empty(t, h.opened)
}

func TestHandleMessage_Redelivery(t *testing.T) {
	h := &recordingHandler{}
	s := newService(h)
	ctx := context.Background()
	payload := []byte(`{"messageId":"m1","title":"Grade"}`)

	s.handleMessage(ctx, payload, nil)
	s.handleMessage(ctx, payload, nil)
	assert.Len(t, h.foreground, 1)

	// Opening the same message later is a separate event.
	s.handleMessage(ctx, payload, map[string]string{EventAttribute: EventOpened})
	assert.Len(t, h.opened, 1)

	require.NoError(t, s.Reset(ctx))
	s.handleMessage(ctx, payload, nil)
	assert.Len(t, h.foreground, 2)

	// Messages without an ID are never deduplicated.
	s.handleMessage(ctx, []byte(`{"title":"x"}`), nil)
	s.handleMessage(ctx, []byte(`{"title":"x"}`), nil)
	assert.Len(t, h.foreground, 4)
}

func TestMarkSeen_Bounded(t *testing.T) {
	s := newService(&recordingHandler{})
	for i := 0; i < seenCapacity+10; i++ {
		s.markSeen(fmt.Sprintf("k%d", i))
	}
	assert.Len(t, s.seen, seenCapacity)
	assert.False(t, s.markSeen("k0"), "oldest keys are forgotten")
}

package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []string
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, "first:"+event.TicketID)
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		seen = append(seen, "second:"+event.TicketID)
		return nil
	})
	dispatcher.Subscribe(EventTicketReplied, func(_ context.Context, event Event) error {
		seen = append(seen, "replied:"+event.TicketID)
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t1"}))
	assert.Equal(t, []string{"first:t1", "second:t1"}, seen)
}

func TestDispatcherContinuesPastHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var called bool
	dispatcher.Subscribe(EventTicketReplied, func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventTicketReplied, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketReplied}))
	assert.True(t, called)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}))
}

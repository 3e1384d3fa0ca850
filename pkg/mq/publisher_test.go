package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2025, 3, 3, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	event, err := NewEvent("reservation.created", map[string]any{"seriesId": 7}, now)
	require.NoError(t, err)

	assert.Equal(t, "reservation.created", event.Type)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())
	assert.True(t, event.OccurredAt.Equal(now))
	assert.JSONEq(t, `{"seriesId":7}`, string(event.Payload))

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"reservation.created"`)
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("broken", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), &Event{Type: "x"}))
	assert.NoError(t, p.Close())
}

func TestPublisher_ClosedRejectsPublish(t *testing.T) {
	p := &Publisher{closed: true}
	err := p.Publish(context.Background(), &Event{Type: "payment.settlement"})
	assert.ErrorIs(t, err, ErrClosed)
}

package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_ImplementsEventPublisher(t *testing.T) {
	hub := NewHub()
	client := newMockClient("client-1")
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish(LoanCreated(map[string]interface{}{"id": float64(1)}))
	time.Sleep(10 * time.Millisecond)

	require.Len(t, client.GetMessages(), 1)
}

func TestNoOpPublisher(t *testing.T) {
	publisher := &NoOpPublisher{}

	// Must be safe to call with nothing wired
	assert.NotPanics(t, func() {
		publisher.Publish(LoanUpdated(map[string]interface{}{"id": float64(1)}))
	})
}

package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deangilmoreremix/smartcrm-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := UserChannel(uuid.New())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventContactUpdated, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventDealStageChanged, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventContactUpdated {
		t.Fatalf("first event: want=%s got=%s", SSEEventContactUpdated, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventDealStageChanged {
		t.Fatalf("second event: want=%s got=%s", SSEEventDealStageChanged, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	reconnect := SSEMessage{Channel: channel, Event: SSEEventSequenceCompleted, Data: map[string]any{"seq": 3}}
	hub.Broadcast(reconnect)
	gotReconnect := recvMessage(t, clientB.Outbound, time.Second)
	if gotReconnect.Event != SSEEventSequenceCompleted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventSequenceCompleted, gotReconnect.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	userA := uuid.New()
	userB := uuid.New()

	clientA := hub.NewSSEClient(userA)
	hub.AddChannel(clientA, UserChannel(userA))
	clientB := hub.NewSSEClient(userB)
	hub.AddChannel(clientB, UserChannel(userB))

	hub.Broadcast(SSEMessage{Channel: UserChannel(userA), Event: SSEEventNotificationCreated})

	got := recvMessage(t, clientA.Outbound, time.Second)
	if got.Event != SSEEventNotificationCreated {
		t.Fatalf("event: want=%s got=%s", SSEEventNotificationCreated, got.Event)
	}
	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("clientB should not receive userA's message, got %s", msg.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

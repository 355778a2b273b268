package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/council/internal/logging"
)

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.SubscribeAll(func(e Event) { got = append(got, "all:"+e.EventType()) })
	bus.Subscribe(TypeTurnStarted, func(e Event) { got = append(got, "first") })
	bus.Subscribe(TypeTurnStarted, func(e Event) { got = append(got, "second") })
	bus.Subscribe(TypeTurnCompleted, func(e Event) { got = append(got, "unrelated") })

	bus.Publish(NewTurnStartedEvent("c1", "hello"))

	want := []string{"first", "second", "all:turn.started"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("dispatch order = %v, want %v", got, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	id1 := bus.Subscribe(TypeRoleConsulted, func(Event) { calls++ })
	bus.Subscribe(TypeRoleConsulted, func(Event) { calls += 10 })

	if id1 == "" {
		t.Fatal("Subscribe returned empty id")
	}
	if !bus.Unsubscribe(id1) {
		t.Fatal("Unsubscribe(existing) = false")
	}
	if bus.Unsubscribe(id1) {
		t.Error("Unsubscribe(removed) = true")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}

	bus.Publish(NewRoleConsultedEvent("c1", "engineer", PhaseInitial, 0, false))
	if calls != 10 {
		t.Errorf("calls = %d, want 10", calls)
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(WithLogger(logging.NewLoggerToWriter(&buf, logging.LevelError)))

	reached := false
	bus.Subscribe(TypeAdvisoryRaised, func(Event) { panic("boom") })
	bus.Subscribe(TypeAdvisoryRaised, func(Event) { reached = true })

	bus.Publish(NewAdvisoryRaisedEvent("c1", AdvisoryPrerequisite, "marketer", []string{"researcher"}))

	if !reached {
		t.Error("handler after a panicking handler was not called")
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewConversationStartedEvent("c"))
		}()
	}
	wg.Wait()

	if count != 20 {
		t.Errorf("count = %d, want 20", count)
	}
}

func TestEventConstructors(t *testing.T) {
	at := time.Now()
	tests := []struct {
		event Event
		want  string
	}{
		{NewConversationStartedEvent("c"), TypeConversationStarted},
		{NewTranscriptAppendedEvent(1, "c", "user", "hi", "main", at), TypeTranscriptAppended},
		{NewTurnStartedEvent("c", "hi"), TypeTurnStarted},
		{NewTurnCompletedEvent("c", []string{"RECEIVE"}, nil, "", time.Second), TypeTurnCompleted},
		{NewRoleConsultedEvent("c", "r", PhaseFollowup, 2, true), TypeRoleConsulted},
		{NewAdvisoryRaisedEvent("c", AdvisoryNotMember, "", []string{"legal"}), TypeAdvisoryRaised},
		{NewRolesReloadedEvent("/tmp/roles.yaml", 4, ""), TypeRolesReloaded},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if tt.event.EventType() != tt.want {
				t.Errorf("EventType() = %q, want %q", tt.event.EventType(), tt.want)
			}
			if tt.event.Timestamp().IsZero() {
				t.Error("Timestamp() is zero")
			}
		})
	}
}

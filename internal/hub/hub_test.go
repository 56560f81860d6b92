package hub

import (
	"errors"
	"testing"
)

type fakeConn struct {
	events []Event
	err    error
}

func (c *fakeConn) Send(ev Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func TestShouldStopDefaultsToStop(t *testing.T) {
	h := New()

	if !h.ShouldStop("ghost") {
		t.Fatalf("unknown client must stop")
	}

	h.Register("alice", &fakeConn{})
	if !h.ShouldStop("alice") {
		t.Fatalf("freshly registered client must stop until generation starts")
	}

	h.SetGenerating("alice", true)
	if h.ShouldStop("alice") {
		t.Fatalf("generating client must not stop")
	}

	h.SetGenerating("alice", false)
	if !h.ShouldStop("alice") {
		t.Fatalf("stopped client must stop")
	}
}

func TestUnregisterClearsFlag(t *testing.T) {
	h := New()
	h.Register("alice", &fakeConn{})
	h.SetGenerating("alice", true)

	h.Unregister("alice")
	if !h.ShouldStop("alice") {
		t.Fatalf("unregistered client must stop")
	}

	// Idempotent.
	h.Unregister("alice")
}

func TestSetGeneratingUnknownClientIsNoOp(t *testing.T) {
	h := New()
	h.SetGenerating("ghost", true)
	if !h.ShouldStop("ghost") {
		t.Fatalf("flag must not be created for an unregistered client")
	}
}

func TestReRegisterResetsFlag(t *testing.T) {
	h := New()
	h.Register("alice", &fakeConn{})
	h.SetGenerating("alice", true)

	h.Register("alice", &fakeConn{})
	if !h.ShouldStop("alice") {
		t.Fatalf("re-registration must reset the generation flag")
	}
}

func TestBroadcastReachesAllAndSurvivesFailure(t *testing.T) {
	h := New()
	good := &fakeConn{}
	bad := &fakeConn{err: errors.New("broken pipe")}
	h.Register("good", good)
	h.Register("bad", bad)

	h.Broadcast(ConversationCreated("c1"))
	h.Broadcast(MessageAdded("c1", "m1"))

	if len(good.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(good.events))
	}
	if good.events[0].Type != "conversation_created" || good.events[0].ConversationID != "c1" {
		t.Fatalf("unexpected first event: %+v", good.events[0])
	}
	if good.events[1].Type != "message_added" || good.events[1].MessageID != "m1" {
		t.Fatalf("unexpected second event: %+v", good.events[1])
	}

	// A failed send never evicts the client.
	bad.err = nil
	h.Broadcast(SummaryUpdated("c1", "title"))
	if len(bad.events) != 1 || bad.events[0].Summary != "title" {
		t.Fatalf("client dropped after failed send: %+v", bad.events)
	}
}

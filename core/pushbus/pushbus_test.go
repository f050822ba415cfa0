package pushbus

import "testing"

func TestSubscribePublishDeliversEvent(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish(Event{BillID: "bill1", OpCode: "Issue", BlockHeight: 1})

	select {
	case e := <-ch:
		if e.BillID != "bill1" {
			t.Fatalf("unexpected event: %+v", e)
		}
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestPublishDropsOnFullSubscriberBuffer(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	for i := 0; i < Capacity+2; i++ {
		b.Publish(Event{BillID: "bill1", BlockHeight: uint64(i)})
	}
	if len(ch) != Capacity {
		t.Fatalf("expected buffer to cap at %d, got %d", Capacity, len(ch))
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	unsubscribe()
	b.Publish(Event{BillID: "bill1"})
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after unsubscribe")
	}
}

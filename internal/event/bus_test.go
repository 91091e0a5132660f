package event

import (
	"reflect"
	"testing"
)

func TestEmitRegistrationOrder(t *testing.T) {
	b := NewBus()
	var got []string

	b.On("x", func(string, Payload) { got = append(got, "first") })
	b.On("x", func(string, Payload) { got = append(got, "second") })
	b.On("x", func(string, Payload) { got = append(got, "third") })

	if !b.Emit("x", nil) {
		t.Fatal("expected Emit to report listeners")
	}
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

func TestEmitWithoutListeners(t *testing.T) {
	b := NewBus()
	if b.Emit("nothing", nil) {
		t.Error("expected Emit to report no listeners")
	}
}

func TestOnceRemovesAfterFirstDelivery(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Once("x", func(string, Payload) { calls++ })

	b.Emit("x", nil)
	b.Emit("x", nil)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestOffRemovesExactlyOneRegistration(t *testing.T) {
	b := NewBus()
	var got []string

	sub := b.On("x", func(string, Payload) { got = append(got, "removed") })
	b.On("x", func(string, Payload) { got = append(got, "kept") })

	if !b.Off(sub) {
		t.Fatal("expected Off to find the subscription")
	}
	if b.Off(sub) {
		t.Error("expected second Off to report already gone")
	}

	b.Emit("x", nil)
	if !reflect.DeepEqual(got, []string{"kept"}) {
		t.Errorf("expected only the kept listener, got %v", got)
	}
}

func TestRemoveAllStripsEveryListener(t *testing.T) {
	b := NewBus()
	b.On("x", func(string, Payload) {})
	b.On("x", func(string, Payload) {})
	b.On("y", func(string, Payload) {})

	if n := b.RemoveAll("x"); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if b.Emit("x", nil) {
		t.Error("expected no listeners left for x")
	}
	if !b.Emit("y", nil) {
		t.Error("expected y listener untouched")
	}
}

func TestNestedEmitIsDepthFirst(t *testing.T) {
	b := NewBus()
	var got []string

	b.On("outer", func(string, Payload) {
		got = append(got, "outer-before")
		b.Emit("inner", nil)
		got = append(got, "outer-after")
	})
	b.On("inner", func(string, Payload) { got = append(got, "inner") })

	b.Emit("outer", nil)

	want := []string{"outer-before", "inner", "outer-after"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected depth-first order %v, got %v", want, got)
	}
}

func TestRemovalDuringEmitKeepsCurrentDeliverySet(t *testing.T) {
	b := NewBus()
	var got []string
	var second Subscription

	b.On("x", func(string, Payload) {
		got = append(got, "first")
		b.Off(second)
	})
	second = b.On("x", func(string, Payload) { got = append(got, "second") })

	b.Emit("x", nil)
	if !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Errorf("expected snapshot delivery, got %v", got)
	}

	got = nil
	b.Emit("x", nil)
	if !reflect.DeepEqual(got, []string{"first"}) {
		t.Errorf("expected second listener gone on next emit, got %v", got)
	}
}

func TestOnceDeliversExactlyOnceUnderReentrantEmit(t *testing.T) {
	b := NewBus()
	calls := 0
	nested := false

	// The first listener re-emits the same event; the nested emission must be
	// the one and only delivery the once listener sees.
	b.On("x", func(string, Payload) {
		if !nested {
			nested = true
			b.Emit("x", nil)
		}
	})
	b.Once("x", func(string, Payload) { calls++ })

	b.Emit("x", nil)

	if calls != 1 {
		t.Errorf("expected exactly one delivery, got %d", calls)
	}
}

package catalog

import (
	"testing"
	"time"
)

// fakeClock drives the confirmer deterministically
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestConfirmer() (*Confirmer, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := NewConfirmer(3 * time.Second)
	c.now = clock.now
	return c, clock
}

func TestConfirmWithinWindow(t *testing.T) {
	c, clock := newTestConfirmer()

	if c.Trigger("item-1") {
		t.Fatal("first click confirmed immediately")
	}
	clock.advance(time.Second)
	if !c.Trigger("item-1") {
		t.Fatal("second click within window did not confirm")
	}

	// Confirming disarms: the next click starts over
	if c.Trigger("item-1") {
		t.Error("third click confirmed without rearming")
	}
}

func TestArmExpires(t *testing.T) {
	c, clock := newTestConfirmer()

	c.Trigger("item-1")
	clock.advance(4 * time.Second)

	if c.Trigger("item-1") {
		t.Fatal("click after expiry confirmed")
	}
	// A fresh pair within the window still works
	clock.advance(time.Second)
	if !c.Trigger("item-1") {
		t.Error("rearmed pair did not confirm")
	}
}

func TestDifferentItemRearms(t *testing.T) {
	c, clock := newTestConfirmer()

	c.Trigger("item-1")
	clock.advance(time.Second)
	if c.Trigger("item-2") {
		t.Fatal("click on a different item confirmed")
	}
	if id, ok := c.Armed(); !ok || id != "item-2" {
		t.Errorf("armed = %q/%v, want item-2", id, ok)
	}
}

func TestUnrelatedActionDisarms(t *testing.T) {
	c, clock := newTestConfirmer()

	c.Trigger("item-1")
	c.Disarm()
	clock.advance(time.Second)

	if c.Trigger("item-1") {
		t.Fatal("confirmed after disarm")
	}
}

func TestArmedReportsExpiry(t *testing.T) {
	c, clock := newTestConfirmer()

	c.Trigger("item-1")
	if _, ok := c.Armed(); !ok {
		t.Fatal("not armed after trigger")
	}
	clock.advance(5 * time.Second)
	if _, ok := c.Armed(); ok {
		t.Fatal("still armed after window")
	}
}

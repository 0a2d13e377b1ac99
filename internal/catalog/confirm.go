package catalog

import "time"

// DefaultConfirmWindow is how long a first delete click stays armed
const DefaultConfirmWindow = 3 * time.Second

// Confirmer is the two-phase delete guard: the first trigger arms an
// item, the second trigger within the window confirms. Arming expires
// after the window or on any unrelated action, so a stray click never
// deletes anything.
type Confirmer struct {
	window  time.Duration
	armedID string
	armedAt time.Time
	now     func() time.Time
}

// NewConfirmer creates a confirmer with the given arming window
func NewConfirmer(window time.Duration) *Confirmer {
	if window <= 0 {
		window = DefaultConfirmWindow
	}
	return &Confirmer{window: window, now: time.Now}
}

// Trigger registers a delete click for an item. It returns true when
// the click confirms an armed delete; otherwise the item is (re)armed.
func (c *Confirmer) Trigger(id string) (confirmed bool) {
	if c.armedID == id && c.armedID != "" && c.now().Sub(c.armedAt) <= c.window {
		c.Disarm()
		return true
	}
	c.armedID = id
	c.armedAt = c.now()
	return false
}

// Disarm clears any pending arm state (unrelated click)
func (c *Confirmer) Disarm() {
	c.armedID = ""
	c.armedAt = time.Time{}
}

// Armed returns the currently armed item id, if any
func (c *Confirmer) Armed() (string, bool) {
	if c.armedID == "" || c.now().Sub(c.armedAt) > c.window {
		return "", false
	}
	return c.armedID, true
}

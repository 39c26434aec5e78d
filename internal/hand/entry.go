package hand

// EventKind distinguishes hand entry from hand exit.
type EventKind int

const (
	Found EventKind = iota + 1
	Lost
)

func (k EventKind) String() string {
	switch k {
	case Found:
		return "found"
	case Lost:
		return "lost"
	}
	return "unknown"
}

// Event is a discrete presence change for one hand.
type Event struct {
	Kind   EventKind
	HandID string
}

// EntryTracker turns the per-frame set of hand ids into Found/Lost events.
// Found events for new ids come first, in frame order, followed by Lost
// events for ids that vanished, in the order they were first seen.
type EntryTracker struct {
	seen []string
}

// Update compares f against the previous frame and returns the events.
func (t *EntryTracker) Update(f Frame) []Event {
	var events []Event

	current := make(map[string]bool, len(f.Hands))
	for _, h := range f.Hands {
		current[h.ID] = true
		if !t.has(h.ID) {
			t.seen = append(t.seen, h.ID)
			events = append(events, Event{Kind: Found, HandID: h.ID})
		}
	}

	kept := t.seen[:0]
	var lost []string
	for _, id := range t.seen {
		if current[id] {
			kept = append(kept, id)
		} else {
			lost = append(lost, id)
		}
	}
	t.seen = kept
	for _, id := range lost {
		events = append(events, Event{Kind: Lost, HandID: id})
	}
	return events
}

// Tracked reports how many hands are currently present.
func (t *EntryTracker) Tracked() int {
	return len(t.seen)
}

func (t *EntryTracker) has(id string) bool {
	for _, s := range t.seen {
		if s == id {
			return true
		}
	}
	return false
}

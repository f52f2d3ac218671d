package core

import (
	"encoding/json"
	"fmt"

	"rewindcore/pkg/domain"
)

// History is the ordered sequence of entry handles, oldest first, split by a
// cursor into past (items[:index]) and future (items[index:]). It lives as a
// World resource: created empty at session start, replaced wholesale on
// scene load, and inspectable by serializers.
type History struct {
	items []domain.Handle
	index int
}

// NewHistory reconstructs a history from a persisted past sequence. The
// cursor starts at the full length: everything loaded is past, nothing is
// pending redo.
func NewHistory(past ...domain.Handle) History {
	items := append([]domain.Handle(nil), past...)
	return History{items: items, index: len(items)}
}

// Back moves the cursor one step into the past and returns the entry handle
// now sitting at the cursor. Returns false at the beginning of history with
// no state change.
func (h *History) Back() (domain.Handle, bool) {
	if h.index == 0 {
		return domain.Handle{}, false
	}
	h.index--
	return h.items[h.index], true
}

// Forward returns the entry handle at the cursor and moves the cursor one
// step into the future. Returns false at the end of history with no state
// change.
func (h *History) Forward() (domain.Handle, bool) {
	if h.index == len(h.items) {
		return domain.Handle{}, false
	}
	entry := h.items[h.index]
	h.index++
	return entry, true
}

// Push discards the future, appends entry, and leaves the cursor at the end.
// The removed future handles are returned; the caller owns destroying those
// entries.
func (h *History) Push(entry domain.Handle) []domain.Handle {
	removed := append([]domain.Handle(nil), h.items[h.index:]...)
	h.items = append(h.items[:h.index], entry)
	h.index = len(h.items)
	return removed
}

// Remap rewrites every stored entry handle through f. Used after a scene
// load relocates entries to fresh world slots.
func (h *History) Remap(f func(domain.Handle) domain.Handle) {
	for i := range h.items {
		h.items[i] = f(h.items[i])
	}
}

// MapHandles implements domain.HandleMapper.
func (h *History) MapHandles(f func(domain.Handle) domain.Handle) { h.Remap(f) }

// Len returns the total number of entries, past and future.
func (h History) Len() int { return len(h.items) }

// Index returns the cursor position: the number of past entries.
func (h History) Index() int { return h.index }

// Items returns a copy of the full entry sequence, oldest first.
func (h *History) Items() []domain.Handle {
	return append([]domain.Handle(nil), h.items...)
}

// Clone returns an independent copy, safe to hand to a serializer while the
// live history keeps moving.
func (h *History) Clone() History {
	return History{items: h.Items(), index: h.index}
}

type historyJSON struct {
	Items []domain.Handle `json:"items"`
	Index int             `json:"index"`
}

// MarshalJSON encodes the entry sequence and cursor verbatim.
func (h History) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyJSON{Items: h.items, Index: h.index})
}

// UnmarshalJSON restores a persisted history, keeping the saved cursor so a
// scene written mid-undo reloads with its redo branch intact.
func (h *History) UnmarshalJSON(data []byte) error {
	var raw historyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Index < 0 || raw.Index > len(raw.Items) {
		return fmt.Errorf("history index %d out of range [0,%d]", raw.Index, len(raw.Items))
	}
	h.items = raw.Items
	h.index = raw.Index
	return nil
}

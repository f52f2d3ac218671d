package core

import (
	"encoding/json"
	"reflect"
	"testing"

	"rewindcore/pkg/domain"
)

func h(index, gen uint32) domain.Handle {
	return domain.Handle{Index: index, Gen: gen}
}

func TestEmptyHistoryBoundaries(t *testing.T) {
	var hist History
	if _, ok := hist.Back(); ok {
		t.Fatalf("Back on empty history should fail")
	}
	if _, ok := hist.Forward(); ok {
		t.Fatalf("Forward on empty history should fail")
	}
	if hist.Len() != 0 || hist.Index() != 0 {
		t.Fatalf("empty history reports len=%d index=%d", hist.Len(), hist.Index())
	}
}

func TestPushLeavesNoFuture(t *testing.T) {
	var hist History
	hist.Push(h(1, 1))
	hist.Push(h(2, 1))
	if _, ok := hist.Forward(); ok {
		t.Fatalf("Forward must fail immediately after a push")
	}
	if hist.Index() != 2 || hist.Len() != 2 {
		t.Fatalf("after two pushes index=%d len=%d", hist.Index(), hist.Len())
	}
}

func TestBackForwardWalk(t *testing.T) {
	var hist History
	a, b := h(1, 1), h(2, 1)
	hist.Push(a)
	hist.Push(b)

	got, ok := hist.Back()
	if !ok || got != b {
		t.Fatalf("first Back = %v, %v; want %v", got, ok, b)
	}
	got, ok = hist.Back()
	if !ok || got != a {
		t.Fatalf("second Back = %v, %v; want %v", got, ok, a)
	}
	if _, ok := hist.Back(); ok {
		t.Fatalf("Back past the beginning should fail")
	}

	got, ok = hist.Forward()
	if !ok || got != a {
		t.Fatalf("first Forward = %v, %v; want %v", got, ok, a)
	}
	got, ok = hist.Forward()
	if !ok || got != b {
		t.Fatalf("second Forward = %v, %v; want %v", got, ok, b)
	}
	if _, ok := hist.Forward(); ok {
		t.Fatalf("Forward past the end should fail")
	}
}

func TestBoundaryConditionsMatchCursor(t *testing.T) {
	var hist History
	for i := uint32(1); i <= 3; i++ {
		hist.Push(h(i, 1))
	}
	for {
		if hist.Index() == 0 {
			break
		}
		if _, ok := hist.Back(); !ok {
			t.Fatalf("Back failed with index=%d > 0", hist.Index())
		}
	}
	if _, ok := hist.Back(); ok {
		t.Fatalf("Back succeeded with index==0")
	}
	for hist.Index() < hist.Len() {
		if _, ok := hist.Forward(); !ok {
			t.Fatalf("Forward failed with index=%d < len=%d", hist.Index(), hist.Len())
		}
	}
	if _, ok := hist.Forward(); ok {
		t.Fatalf("Forward succeeded with index==len")
	}
}

func TestPushTruncatesFuture(t *testing.T) {
	var hist History
	a, b, c, d := h(1, 1), h(2, 1), h(3, 1), h(4, 1)
	hist.Push(a)
	hist.Push(b)
	hist.Push(c)
	hist.Back()
	hist.Back()

	removed := hist.Push(d)
	if !reflect.DeepEqual(removed, []domain.Handle{b, c}) {
		t.Fatalf("truncated future = %v, want [%v %v]", removed, b, c)
	}
	want := []domain.Handle{a, d}
	if got := hist.Items(); !reflect.DeepEqual(got, want) {
		t.Fatalf("items after truncating push = %v, want %v", got, want)
	}
	if hist.Index() != 2 {
		t.Fatalf("index after truncating push = %d, want 2", hist.Index())
	}
}

func TestNewHistoryLoadsEverythingAsPast(t *testing.T) {
	a, b, c := h(1, 1), h(2, 1), h(3, 1)
	hist := NewHistory(a, b, c)
	if hist.Index() != 3 || hist.Len() != 3 {
		t.Fatalf("loaded history index=%d len=%d, want 3/3", hist.Index(), hist.Len())
	}
	if _, ok := hist.Forward(); ok {
		t.Fatalf("loaded history must have no pending future")
	}
	got, ok := hist.Back()
	if !ok || got != c {
		t.Fatalf("Back on loaded history = %v, %v; want %v", got, ok, c)
	}
}

func TestRemapRewritesEveryHandle(t *testing.T) {
	hist := NewHistory(h(1, 1), h(2, 1))
	hist.Remap(func(old domain.Handle) domain.Handle {
		return domain.Handle{Index: old.Index + 10, Gen: old.Gen}
	})
	want := []domain.Handle{h(11, 1), h(12, 1)}
	if got := hist.Items(); !reflect.DeepEqual(got, want) {
		t.Fatalf("remapped items = %v, want %v", got, want)
	}
}

func TestHistoryJSONRoundTripKeepsSavedCursor(t *testing.T) {
	hist := NewHistory(h(1, 1), h(2, 1), h(3, 1))
	hist.Back() // saved mid-undo: index 2, C pending redo

	data, err := json.Marshal(hist)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var loaded History
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if loaded.Index() != 2 || loaded.Len() != 3 {
		t.Fatalf("loaded index=%d len=%d, want 2/3", loaded.Index(), loaded.Len())
	}
	got, ok := loaded.Forward()
	if !ok || got != h(3, 1) {
		t.Fatalf("first Forward after load = %v, %v; want %v", got, ok, h(3, 1))
	}
}

func TestHistoryJSONRejectsBadCursor(t *testing.T) {
	cases := []string{
		`{"items":[{"index":1,"gen":1}],"index":2}`,
		`{"items":[],"index":-1}`,
	}
	for _, raw := range cases {
		var hist History
		if err := json.Unmarshal([]byte(raw), &hist); err == nil {
			t.Fatalf("expected cursor range error for %s", raw)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	hist := NewHistory(h(1, 1))
	cp := hist.Clone()
	hist.Push(h(2, 1))
	if cp.Len() != 1 {
		t.Fatalf("clone changed after push to original: len=%d", cp.Len())
	}
}

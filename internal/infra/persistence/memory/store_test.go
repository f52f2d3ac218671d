package memory

import (
	"context"
	"encoding/json"
	"testing"

	"rewindcore/internal/infra/persistence/scene"
	"rewindcore/pkg/domain"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("empty store Load = ok=%v err=%v, want absent", ok, err)
	}

	snap := scene.Snapshot{
		Entities: []scene.Entity{{
			Handle:     domain.Handle{Index: 2, Gen: 1},
			Components: map[string]json.RawMessage{"demo.Spot": []byte(`{"x":5}`)},
		}},
		Resources: map[string]json.RawMessage{"demo.Level": []byte(`{"value":3}`)},
	}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load = ok=%v err=%v", ok, err)
	}
	if len(got.Entities) != 1 || got.Entities[0].Handle != snap.Entities[0].Handle {
		t.Fatalf("loaded snapshot = %+v", got)
	}

	// Mutating the loaded copy must not affect the stored snapshot.
	got.Entities[0].Components["demo.Spot"] = []byte(`{"x":0}`)
	again, _, _ := s.Load(ctx)
	if string(again.Entities[0].Components["demo.Spot"]) != `{"x":5}` {
		t.Fatalf("store shared state with a loaded snapshot")
	}
}

func TestSaveReplacesSnapshot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first := scene.Snapshot{Resources: map[string]json.RawMessage{"a": []byte(`1`)}}
	second := scene.Snapshot{Resources: map[string]json.RawMessage{"b": []byte(`2`)}}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	got, _, _ := s.Load(ctx)
	if _, stale := got.Resources["a"]; stale {
		t.Fatalf("first snapshot survived a replacing save: %+v", got)
	}
	if string(got.Resources["b"]) != `2` {
		t.Fatalf("second snapshot missing: %+v", got)
	}
}

package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"rewindcore/internal/infra/blob/core"
)

func TestMockedRoundTrip(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()

	info, err := s.Put(ctx, "scenes/a.json", strings.NewReader(`{"entities":[]}`), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "scenes/a.json" || info.Size == 0 {
		t.Fatalf("put info = %+v", info)
	}
	if _, err := s.Put(ctx, "scenes/a.json", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatalf("overwriting put should fail")
	}

	got, rc, err := s.Get(ctx, "scenes/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"entities":[]}` || got.ContentType != "application/json" {
		t.Fatalf("get = %q info=%+v", body, got)
	}

	if _, err := s.Head(ctx, "missing"); err == nil {
		t.Fatalf("head of missing key should fail")
	}

	infos, err := s.List(ctx, "scenes/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "scenes/a.json" {
		t.Fatalf("list = %+v", infos)
	}

	if _, err := s.Delete(ctx, "scenes/a.json"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Head(ctx, "scenes/a.json"); err == nil {
		t.Fatalf("head after delete should fail")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("missing bucket should fail")
	}
}

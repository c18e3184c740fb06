package redis

import (
	"context"
	"os"
	"testing"

	"github.com/mentor-ia/mentor/internal/domain"
)

var _ domain.KVStore = (*Store)(nil)

func TestKey_Prefix(t *testing.T) {
	s := New(nil, "")
	if got := s.Key("user_profile"); got != "mentor:user_profile" {
		t.Errorf("Key() = %q, want %q", got, "mentor:user_profile")
	}

	s = New(nil, "test:")
	if got := s.Key("history"); got != "test:history" {
		t.Errorf("Key() = %q, want %q", got, "test:history")
	}
}

// TestStore_Live runs against a real server when MENTOR_TEST_REDIS is set.
func TestStore_Live(t *testing.T) {
	addr := os.Getenv("MENTOR_TEST_REDIS")
	if addr == "" {
		t.Skip("MENTOR_TEST_REDIS not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, Config{Addr: addr, Prefix: "mentor-test:"})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()
	defer s.Remove(ctx, "k")

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("Get() missing = %v, %v", ok, err)
	}
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v" {
		t.Errorf("Get() = %q, %v", v, ok)
	}
	if err := s.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key should be gone")
	}
}

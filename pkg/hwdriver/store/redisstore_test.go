//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
)

// redisAddr returns the test Redis address, checking TOR_HWDRIVER_TEST_REDIS_ADDR
// first and falling back to localhost:6379, matching the teacher's
// NEWTRON_TEST_REDIS_ADDR convention (internal/testutil/testutil.go).
func redisAddr() string {
	if addr := os.Getenv("TOR_HWDRIVER_TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func newTestRedisStore(t *testing.T) (*RedisStore, func()) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: redisAddr(), DB: 15})
	s := NewRedisStore(client)
	ctx := context.Background()
	if err := s.Initialize(ctx); err != nil {
		t.Skipf("redis not available at %s: %v", redisAddr(), err)
	}
	if err := s.TearDown(ctx); err != nil {
		t.Fatalf("TearDown: %v", err)
	}
	return s, func() {
		_ = s.TearDown(ctx)
		_ = client.Close()
	}
}

func TestRedisStore_RememberNetwork_Idempotent(t *testing.T) {
	s, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.RememberNetwork(ctx, "net1"); err != nil {
			t.Fatalf("RememberNetwork: %v", err)
		}
	}

	n, err := s.NumHostsForNetwork(ctx, "net1")
	if err != nil {
		t.Fatalf("NumHostsForNetwork: %v", err)
	}
	if n != 1 {
		t.Errorf("rows for net1 = %d, want 1 (placeholder should not duplicate)", n)
	}
}

func TestRedisStore_RememberHost_PromotesPlaceholder(t *testing.T) {
	s, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.RememberNetwork(ctx, "net1"); err != nil {
		t.Fatalf("RememberNetwork: %v", err)
	}
	if err := s.RememberHost(ctx, "net1", 100, "host1"); err != nil {
		t.Fatalf("RememberHost: %v", err)
	}

	n, err := s.NumHostsForNetwork(ctx, "net1")
	if err != nil {
		t.Fatalf("NumHostsForNetwork: %v", err)
	}
	if n != 1 {
		t.Errorf("rows for net1 = %d, want 1 (placeholder promoted in place)", n)
	}

	provisioned, err := s.IsNetworkProvisioned(ctx, "net1", intp(100), strp("host1"))
	if err != nil {
		t.Fatalf("IsNetworkProvisioned: %v", err)
	}
	if !provisioned {
		t.Error("expected binding to be provisioned")
	}
}

func TestRedisStore_ForgetHost_RemovesOnlyMatchingHost(t *testing.T) {
	s, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.RememberHost(ctx, "net1", 10, "h1"); err != nil {
		t.Fatalf("RememberHost h1: %v", err)
	}
	if err := s.RememberHost(ctx, "net1", 10, "h2"); err != nil {
		t.Fatalf("RememberHost h2: %v", err)
	}
	if err := s.ForgetHost(ctx, "net1", "h1"); err != nil {
		t.Fatalf("ForgetHost: %v", err)
	}

	list, err := s.GetNetworkList(ctx)
	if err != nil {
		t.Fatalf("GetNetworkList: %v", err)
	}
	net, ok := list["net1"]
	if !ok {
		t.Fatal("expected net1 to remain with h2")
	}
	if len(net.HostID) != 1 || net.HostID[0] != "h2" {
		t.Errorf("hosts = %v, want [h2]", net.HostID)
	}
}

func TestRedisStore_GetNetworkList_SortsHostsAndExcludesPlaceholders(t *testing.T) {
	s, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.RememberNetwork(ctx, "placeholder-only"); err != nil {
		t.Fatalf("RememberNetwork: %v", err)
	}
	for _, h := range []string{"zeta", "alpha", "mid"} {
		if err := s.RememberHost(ctx, "net1", 5, h); err != nil {
			t.Fatalf("RememberHost %s: %v", h, err)
		}
	}

	list, err := s.GetNetworkList(ctx)
	if err != nil {
		t.Fatalf("GetNetworkList: %v", err)
	}
	if _, ok := list["placeholder-only"]; ok {
		t.Error("placeholder-only network should be excluded from switch-compatible view")
	}
	net, ok := list["net1"]
	if !ok {
		t.Fatal("expected net1 in list")
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, h := range want {
		if net.HostID[i] != h {
			t.Errorf("HostID[%d] = %q, want %q", i, net.HostID[i], h)
		}
	}
}

func intp(n int) *int          { return &n }
func strp(s string) *string    { return &s }

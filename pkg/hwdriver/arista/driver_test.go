package arista

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/store"
)

type recordedCall struct {
	op      string
	network string
	vlan    int
	host    string
}

// fakeRPC is a hand-written fake eapi.Client recording calls in order; no
// mocking framework, matching the teacher's plain-stdlib test style.
type fakeRPC struct {
	calls     []recordedCall
	deleteErr error
	plugErr   error
}

func (f *fakeRPC) ListNetworks(ctx context.Context) (map[string]eapi.RemoteNet, error) {
	return map[string]eapi.RemoteNet{}, nil
}

func (f *fakeRPC) Plug(ctx context.Context, networkID string, vlanID int, host string) error {
	f.calls = append(f.calls, recordedCall{op: "plug", network: networkID, vlan: vlanID, host: host})
	return f.plugErr
}

func (f *fakeRPC) Unplug(ctx context.Context, networkID string, vlanID int, host string) error {
	f.calls = append(f.calls, recordedCall{op: "unplug", network: networkID, vlan: vlanID, host: host})
	return nil
}

func (f *fakeRPC) DeleteNetwork(ctx context.Context, networkID string) error {
	f.calls = append(f.calls, recordedCall{op: "delete", network: networkID})
	return f.deleteErr
}

var _ eapi.Client = (*fakeRPC)(nil)

// newTestDriver builds a Driver with the reconciler effectively parked: a
// very long sync interval means the background loop never fires during a
// short-lived unit test, so every RPC call observed is attributable to the
// lifecycle method under test.
func newTestDriver(t *testing.T, rpc eapi.Client, cfg Config) (*Driver, func()) {
	t.Helper()
	st := store.NewMemStore()
	if cfg.SyncInterval == 0 {
		cfg.SyncInterval = time.Hour
	}
	d, err := New(context.Background(), rpc, st, cfg, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, d.Close
}

// S1: plug dedup — five identical plug_host calls produce exactly one RPC.
func TestDriver_S1_PlugDedup(t *testing.T) {
	rpc := &fakeRPC{}
	d, cleanup := newTestDriver(t, rpc, Config{SegmentationType: "vlan", UseFQDN: false})
	defer cleanup()
	ctx := context.Background()

	if err := d.CreateNetwork(ctx, "net1"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := d.PlugHost(ctx, "net1", 1001, "ubuntu1"); err != nil {
			t.Fatalf("PlugHost call %d: %v", i, err)
		}
	}

	var plugs []recordedCall
	for _, c := range rpc.calls {
		if c.op == "plug" {
			plugs = append(plugs, c)
		}
	}
	if len(plugs) != 1 {
		t.Fatalf("plug RPCs = %d, want 1: %+v", len(plugs), plugs)
	}
	if plugs[0].network != "net1" || plugs[0].vlan != 1001 || plugs[0].host != "ubuntu1" {
		t.Errorf("unexpected plug call: %+v", plugs[0])
	}
}

// S2: FQDN stripping — plugging "host1.domain.com" then "host1" collapses
// to a single RPC with the normalized host.
func TestDriver_S2_FQDNStripping(t *testing.T) {
	rpc := &fakeRPC{}
	d, cleanup := newTestDriver(t, rpc, Config{SegmentationType: "vlan", UseFQDN: false})
	defer cleanup()
	ctx := context.Background()

	if err := d.PlugHost(ctx, "net1", 1002, "host1.domain.com"); err != nil {
		t.Fatal(err)
	}
	if err := d.PlugHost(ctx, "net1", 1002, "host1"); err != nil {
		t.Fatal(err)
	}

	var plugs []recordedCall
	for _, c := range rpc.calls {
		if c.op == "plug" {
			plugs = append(plugs, c)
		}
	}
	if len(plugs) != 1 {
		t.Fatalf("plug RPCs = %d, want 1: %+v", len(plugs), plugs)
	}
	if plugs[0].host != "host1" {
		t.Errorf("host = %q, want %q", plugs[0].host, "host1")
	}
}

// S3: delete_network tolerates an RPC failure — the store is still updated.
func TestDriver_S3_DeleteToleratesRPCFailure(t *testing.T) {
	rpc := &fakeRPC{deleteErr: errors.New("switch unreachable")}
	d, cleanup := newTestDriver(t, rpc, Config{SegmentationType: "vlan"})
	defer cleanup()
	ctx := context.Background()

	if err := d.CreateNetwork(ctx, "net1"); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteNetwork(ctx, "net1"); err != nil {
		t.Fatalf("DeleteNetwork should swallow RPC errors, got: %v", err)
	}

	provisioned, err := d.store.IsNetworkProvisioned(ctx, "net1", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if provisioned {
		t.Error("store should have forgotten net1 despite the RPC failure")
	}
}

// Gate property: delete_network on a never-provisioned network issues no
// RPC at all.
func TestDriver_DeleteNetwork_UnprovisionedSkipsRPC(t *testing.T) {
	rpc := &fakeRPC{}
	d, cleanup := newTestDriver(t, rpc, Config{SegmentationType: "vlan"})
	defer cleanup()

	if err := d.DeleteNetwork(context.Background(), "ghost"); err != nil {
		t.Fatal(err)
	}
	if len(rpc.calls) != 0 {
		t.Errorf("expected no RPC calls, got %+v", rpc.calls)
	}
}

// VLAN gating: a non-vlan segmentation type updates the store but never
// calls the switch.
func TestDriver_NonVLANMode_SkipsRPCButUpdatesStore(t *testing.T) {
	rpc := &fakeRPC{}
	d, cleanup := newTestDriver(t, rpc, Config{SegmentationType: "tunnel"})
	defer cleanup()
	ctx := context.Background()

	if err := d.PlugHost(ctx, "net1", 5, "h1"); err != nil {
		t.Fatal(err)
	}
	if len(rpc.calls) != 0 {
		t.Errorf("expected no RPC calls in non-vlan mode, got %+v", rpc.calls)
	}
	provisioned, err := d.store.IsNetworkProvisioned(ctx, "net1", ip(5), sp("h1"))
	if err != nil {
		t.Fatal(err)
	}
	if !provisioned {
		t.Error("store should record the binding even without RPC")
	}
}

// Normalization symmetry: plug then unplug the same host (one FQDN, one
// short form) leaves no residual row.
func TestDriver_NormalizationSymmetry(t *testing.T) {
	rpc := &fakeRPC{}
	d, cleanup := newTestDriver(t, rpc, Config{SegmentationType: "vlan", UseFQDN: false})
	defer cleanup()
	ctx := context.Background()

	if err := d.PlugHost(ctx, "net1", 10, "host1.domain.com"); err != nil {
		t.Fatal(err)
	}
	if err := d.UnplugHost(ctx, "net1", 10, "host1"); err != nil {
		t.Fatal(err)
	}

	n, err := d.store.NumHostsForNetwork(ctx, "net1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("residual rows for net1 = %d, want 0", n)
	}
}

func ip(n int) *int       { return &n }
func sp(s string) *string { return &s }

// Package store implements the Provisioned-Net Store: the durable local
// record of (network_id, segmentation_id, host_id) bindings the controller
// intends the switch to hold.
package store

import (
	"context"
	"sort"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
)

// Binding is one row of the provisioned-nets table. SegmentationID and Host
// are either both set or both zero-valued (a placeholder row).
type Binding struct {
	ID             int64
	NetworkID      string
	SegmentationID int
	Host           string
}

// Bound reports whether this row represents a fully bound host (as opposed
// to a network-only placeholder).
func (b Binding) Bound() bool {
	return b.Host != ""
}

// Store is the Provisioned-Net Store contract. Every method is a
// single-statement transactional unit per spec.
type Store interface {
	// Initialize creates the underlying schema/keyspace. Idempotent.
	Initialize(ctx context.Context) error
	// TearDown destroys the underlying schema/keyspace. Used only by tests.
	TearDown(ctx context.Context) error

	// RememberNetwork inserts a placeholder row for networkID iff no row
	// exists for it yet.
	RememberNetwork(ctx context.Context, networkID string) error

	// RememberHost promotes an existing placeholder for networkID by
	// filling in vlanID/host, or inserts a new bound row if no placeholder
	// exists (or one already bound exists).
	RememberHost(ctx context.Context, networkID string, vlanID int, host string) error

	// ForgetNetwork deletes every row for networkID.
	ForgetNetwork(ctx context.Context, networkID string) error

	// ForgetHost deletes every row matching (networkID, host), regardless
	// of VLAN.
	ForgetHost(ctx context.Context, networkID, host string) error

	// IsNetworkProvisioned reports whether a row exists for networkID when
	// vlanID and host are both nil. If both are non-nil, it instead reports
	// whether the exact (networkID, *vlanID, *host) row exists. If only one
	// of them is nil it reports false.
	IsNetworkProvisioned(ctx context.Context, networkID string, vlanID *int, host *string) (bool, error)

	// GetNetworkList returns the switch-compatible view: bound rows only,
	// host lists sorted ascending.
	GetNetworkList(ctx context.Context) (map[string]eapi.RemoteNet, error)

	// NumNetworksProvisioned returns the count of distinct networks with at
	// least one row (bound or placeholder). Supplemental introspection,
	// carried over from the original ProvisionedNetsStorage.
	NumNetworksProvisioned(ctx context.Context) (int, error)

	// NumHostsForNetwork returns the row count (bound + placeholder) for
	// networkID.
	NumHostsForNetwork(ctx context.Context, networkID string) (int, error)

	// HostsForNetwork returns the raw rows for networkID, in no particular
	// order — an operational/introspection query, not the sync-facing view.
	HostsForNetwork(ctx context.Context, networkID string) ([]Binding, error)
}

// segmentationType is fixed at "vlan" for the view the store emits; tunnel
// segmentation is reserved and unimplemented per spec (§1 Non-goals).
const segmentationType = "vlan"

// sortedHosts returns a sorted copy of hosts so callers never observe
// insertion order, satisfying the "queries return sorted host lists"
// invariant regardless of backend.
func sortedHosts(hosts []string) []string {
	out := make([]string, len(hosts))
	copy(out, hosts)
	sort.Strings(out)
	return out
}

// Package sync implements the background reconciler that periodically
// reconverges switch state toward the driver's local store.
package sync

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/store"
)

// Service reconciles the RPC client's remote state toward the store's
// desired state. It holds no lock of its own — spec.md §5 requires the
// owning driver to serialize every tick against its own lifecycle calls
// under one sync_lock, so Service.Tick assumes the caller already holds it.
type Service struct {
	rpc   eapi.Client
	store store.Store
	log   *logrus.Entry
}

// New builds a Service over the given RPC client and store.
func New(rpc eapi.Client, st store.Store, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{rpc: rpc, store: st, log: log}
}

// Tick runs exactly one reconciliation pass per spec.md §4.3:
//  1. fetch remote; on RpcError, warn-log and return (retry next tick)
//  2. fetch desired from the store
//  3. if equal, return
//  4. delete every network present remotely but absent locally
//  5. plug every host of networks present locally but absent remotely
//  6. plug every host present locally but missing from a network that
//     exists in both
//
// Network-delete always precedes plug-add. Host iteration within a
// network is sorted for deterministic, reproducible ticks.
func (s *Service) Tick(ctx context.Context) error {
	remote, err := s.rpc.ListNetworks(ctx)
	if err != nil {
		s.log.WithError(err).Warn("switch unavailable, deferring sync to next tick")
		return nil
	}

	desired, err := s.store.GetNetworkList(ctx)
	if err != nil {
		return err
	}

	if networksEqual(remote, desired) {
		return nil
	}

	for _, networkID := range sortedKeys(remote) {
		if _, ok := desired[networkID]; !ok {
			if err := s.rpc.DeleteNetwork(ctx, networkID); err != nil {
				s.log.WithError(err).WithField("network", networkID).Warn("sync: delete_network failed, retrying next tick")
				return nil
			}
		}
	}

	for _, networkID := range sortedKeys(desired) {
		desiredNet := desired[networkID]
		remoteNet, ok := remote[networkID]
		if !ok {
			for _, host := range desiredNet.HostID {
				if err := s.rpc.Plug(ctx, networkID, desiredNet.SegmentationID, host); err != nil {
					s.log.WithError(err).WithFields(logrus.Fields{"network": networkID, "host": host}).Warn("sync: plug failed, retrying next tick")
					return nil
				}
			}
			continue
		}

		if hostsEqual(desiredNet.HostID, remoteNet.HostID) {
			continue
		}
		for _, host := range missingHosts(desiredNet.HostID, remoteNet.HostID) {
			if err := s.rpc.Plug(ctx, networkID, desiredNet.SegmentationID, host); err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{"network": networkID, "host": host}).Warn("sync: plug failed, retrying next tick")
				return nil
			}
		}
	}

	return nil
}

func networksEqual(a, b map[string]eapi.RemoteNet) bool {
	if len(a) != len(b) {
		return false
	}
	for id, netA := range a {
		netB, ok := b[id]
		if !ok {
			return false
		}
		if netA.SegmentationID != netB.SegmentationID {
			return false
		}
		if !hostsEqual(netA.HostID, netB.HostID) {
			return false
		}
	}
	return true
}

func hostsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// missingHosts returns the sorted set difference desired \ remote.
func missingHosts(desired, remote []string) []string {
	remoteSet := make(map[string]struct{}, len(remote))
	for _, h := range remote {
		remoteSet[h] = struct{}{}
	}
	var missing []string
	for _, h := range desired {
		if _, ok := remoteSet[h]; !ok {
			missing = append(missing, h)
		}
	}
	sort.Strings(missing)
	return missing
}

func sortedKeys(m map[string]eapi.RemoteNet) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package store

import (
	"context"
	"sync"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
)

// MemStore is an in-memory Store implementation. It satisfies the same
// single-statement-transactional contract as RedisStore by guarding every
// operation with a mutex, and is used by the driver and sync tests so they
// don't need a live Redis instance.
type MemStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]Binding
}

// NewMemStore returns a ready-to-use in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{rows: make(map[int64]Binding)}
}

func (s *MemStore) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows == nil {
		s.rows = make(map[int64]Binding)
	}
	return nil
}

func (s *MemStore) TearDown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[int64]Binding)
	s.nextID = 0
	return nil
}

func (s *MemStore) RememberNetwork(ctx context.Context, networkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.NetworkID == networkID {
			return nil
		}
	}
	s.nextID++
	s.rows[s.nextID] = Binding{ID: s.nextID, NetworkID: networkID}
	return nil
}

func (s *MemStore) RememberHost(ctx context.Context, networkID string, vlanID int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, row := range s.rows {
		if row.NetworkID == networkID && !row.Bound() {
			row.SegmentationID = vlanID
			row.Host = host
			s.rows[id] = row
			return nil
		}
	}
	s.nextID++
	s.rows[s.nextID] = Binding{ID: s.nextID, NetworkID: networkID, SegmentationID: vlanID, Host: host}
	return nil
}

func (s *MemStore) ForgetNetwork(ctx context.Context, networkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, row := range s.rows {
		if row.NetworkID == networkID {
			delete(s.rows, id)
		}
	}
	return nil
}

func (s *MemStore) ForgetHost(ctx context.Context, networkID, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, row := range s.rows {
		if row.NetworkID == networkID && row.Host == host {
			delete(s.rows, id)
		}
	}
	return nil
}

func (s *MemStore) IsNetworkProvisioned(ctx context.Context, networkID string, vlanID *int, host *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.NetworkID != networkID {
			continue
		}
		if vlanID == nil && host == nil {
			return true, nil
		}
		if vlanID != nil && host != nil && row.SegmentationID == *vlanID && row.Host == *host {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemStore) GetNetworkList(ctx context.Context) (map[string]eapi.RemoteNet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byNet := make(map[string]*eapi.RemoteNet)
	for _, row := range s.rows {
		if !row.Bound() {
			continue
		}
		net, ok := byNet[row.NetworkID]
		if !ok {
			net = &eapi.RemoteNet{
				Name:             row.NetworkID,
				SegmentationID:   row.SegmentationID,
				SegmentationType: segmentationType,
			}
			byNet[row.NetworkID] = net
		}
		net.HostID = append(net.HostID, row.Host)
	}

	result := make(map[string]eapi.RemoteNet, len(byNet))
	for id, net := range byNet {
		net.HostID = sortedHosts(net.HostID)
		result[id] = *net
	}
	return result, nil
}

func (s *MemStore) NumNetworksProvisioned(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	for _, row := range s.rows {
		seen[row.NetworkID] = struct{}{}
	}
	return len(seen), nil
}

func (s *MemStore) NumHostsForNetwork(ctx context.Context, networkID string) (int, error) {
	rows, err := s.HostsForNetwork(ctx, networkID)
	return len(rows), err
}

func (s *MemStore) HostsForNetwork(ctx context.Context, networkID string) ([]Binding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []Binding
	for _, row := range s.rows {
		if row.NetworkID == networkID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

var _ Store = (*MemStore)(nil)

package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
)

// RedisStore persists provisioned-net bindings in Redis, in the same
// hash-per-row idiom as the teacher's ConfigDBClient
// (pkg/newtron/device/sonic/configdb.go): each row is a Redis hash at
// "arista_provisioned_nets|<id>", with a per-network SET index so
// forget_network/is_network_provisioned don't require a full keyspace
// scan (get_network_list still enumerates the index keys with KEYS), and
// an INCR counter standing in for the SQL
// autoincrement primary key the original relational schema used.
type RedisStore struct {
	client *redis.Client
}

const (
	rowKeyPrefix  = "arista_provisioned_nets|"
	netIndexPrefix = "arista_provisioned_nets:net:"
	idCounterKey  = "arista_provisioned_nets:next_id"
)

// NewRedisStore wraps an existing Redis client. The caller owns the
// client's lifecycle (Close).
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromAddr dials a new Redis client for addr (host:port) and
// wraps it. Used by driver constructors (e.g. arista.NewConstructor) that
// are handed a flattened config map rather than an existing client.
func NewRedisStoreFromAddr(addr string) (*RedisStore, error) {
	return NewRedisStore(redis.NewClient(&redis.Options{Addr: addr})), nil
}

func rowKey(id int64) string {
	return rowKeyPrefix + strconv.FormatInt(id, 10)
}

func netIndexKey(networkID string) string {
	return netIndexPrefix + networkID
}

// Initialize pings the connection; the keyspace needs no upfront schema
// since Redis hashes are created on first write.
func (s *RedisStore) Initialize(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// TearDown removes every key this store owns. Used only by tests.
func (s *RedisStore) TearDown(ctx context.Context) error {
	ids, err := s.allIDs(ctx)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, rowKey(id))
	}
	netKeys, err := s.client.Keys(ctx, netIndexPrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("listing net index keys: %w", err)
	}
	for _, k := range netKeys {
		pipe.Del(ctx, k)
	}
	pipe.Del(ctx, idCounterKey)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) allIDs(ctx context.Context) ([]int64, error) {
	netKeys, err := s.client.Keys(ctx, netIndexPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing net index keys: %w", err)
	}

	seen := make(map[int64]struct{})
	var ids []int64
	for _, k := range netKeys {
		members, err := s.client.SMembers(ctx, k).Result()
		if err != nil {
			return nil, fmt.Errorf("reading index %s: %w", k, err)
		}
		for _, m := range members {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (s *RedisStore) readRow(ctx context.Context, id int64) (Binding, bool, error) {
	vals, err := s.client.HGetAll(ctx, rowKey(id)).Result()
	if err != nil {
		return Binding{}, false, err
	}
	if len(vals) == 0 {
		return Binding{}, false, nil
	}
	b := Binding{ID: id, NetworkID: vals["network_id"]}
	if v, ok := vals["segmentation_id"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Binding{}, false, fmt.Errorf("parsing segmentation_id for row %d: %w", id, err)
		}
		b.SegmentationID = n
	}
	b.Host = vals["host_id"]
	return b, true, nil
}

// RememberNetwork inserts a placeholder row for networkID iff no row
// exists yet for it.
func (s *RedisStore) RememberNetwork(ctx context.Context, networkID string) error {
	ids, err := s.idsForNetwork(ctx, networkID)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return nil
	}

	id, err := s.client.Incr(ctx, idCounterKey).Result()
	if err != nil {
		return fmt.Errorf("allocating row id: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rowKey(id), "network_id", networkID)
		pipe.SAdd(ctx, netIndexKey(networkID), id)
		return nil
	})
	return err
}

// RememberHost promotes a placeholder row or inserts a new bound row.
func (s *RedisStore) RememberHost(ctx context.Context, networkID string, vlanID int, host string) error {
	ids, err := s.idsForNetwork(ctx, networkID)
	if err != nil {
		return err
	}

	for _, id := range ids {
		row, ok, err := s.readRow(ctx, id)
		if err != nil {
			return err
		}
		if ok && !row.Bound() {
			_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, rowKey(id), "segmentation_id", vlanID, "host_id", host)
				return nil
			})
			return err
		}
	}

	id, err := s.client.Incr(ctx, idCounterKey).Result()
	if err != nil {
		return fmt.Errorf("allocating row id: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, rowKey(id), "network_id", networkID, "segmentation_id", vlanID, "host_id", host)
		pipe.SAdd(ctx, netIndexKey(networkID), id)
		return nil
	})
	return err
}

// ForgetNetwork deletes every row for networkID.
func (s *RedisStore) ForgetNetwork(ctx context.Context, networkID string) error {
	ids, err := s.idsForNetwork(ctx, networkID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, rowKey(id))
		}
		pipe.Del(ctx, netIndexKey(networkID))
		return nil
	})
	return err
}

// ForgetHost deletes every row matching (networkID, host), regardless of
// VLAN.
func (s *RedisStore) ForgetHost(ctx context.Context, networkID, host string) error {
	ids, err := s.idsForNetwork(ctx, networkID)
	if err != nil {
		return err
	}

	var toRemove []int64
	for _, id := range ids {
		row, ok, err := s.readRow(ctx, id)
		if err != nil {
			return err
		}
		if ok && row.Host == host {
			toRemove = append(toRemove, id)
		}
	}
	if len(toRemove) == 0 {
		return nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range toRemove {
			pipe.Del(ctx, rowKey(id))
			pipe.SRem(ctx, netIndexKey(networkID), id)
		}
		return nil
	})
	return err
}

// IsNetworkProvisioned reports whether a row (or exact binding) exists.
func (s *RedisStore) IsNetworkProvisioned(ctx context.Context, networkID string, vlanID *int, host *string) (bool, error) {
	ids, err := s.idsForNetwork(ctx, networkID)
	if err != nil {
		return false, err
	}
	if vlanID == nil && host == nil {
		return len(ids) > 0, nil
	}
	if vlanID == nil || host == nil {
		return false, nil
	}

	for _, id := range ids {
		row, ok, err := s.readRow(ctx, id)
		if err != nil {
			return false, err
		}
		if ok && row.SegmentationID == *vlanID && row.Host == *host {
			return true, nil
		}
	}
	return false, nil
}

// GetNetworkList returns the switch-compatible view: bound rows only, host
// lists sorted ascending.
func (s *RedisStore) GetNetworkList(ctx context.Context) (map[string]eapi.RemoteNet, error) {
	netKeys, err := s.client.Keys(ctx, netIndexPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("listing net index keys: %w", err)
	}

	result := make(map[string]eapi.RemoteNet)
	for _, key := range netKeys {
		networkID := key[len(netIndexPrefix):]
		ids, err := s.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading index for %s: %w", networkID, err)
		}

		var hosts []string
		segID := 0
		for _, m := range ids {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			row, ok, err := s.readRow(ctx, id)
			if err != nil {
				return nil, err
			}
			if !ok || !row.Bound() {
				continue
			}
			hosts = append(hosts, row.Host)
			segID = row.SegmentationID
		}
		if len(hosts) == 0 {
			continue
		}
		result[networkID] = eapi.RemoteNet{
			Name:             networkID,
			SegmentationID:   segID,
			SegmentationType: segmentationType,
			HostID:           sortedHosts(hosts),
		}
	}
	return result, nil
}

// NumNetworksProvisioned returns the count of distinct networks with at
// least one row.
func (s *RedisStore) NumNetworksProvisioned(ctx context.Context) (int, error) {
	netKeys, err := s.client.Keys(ctx, netIndexPrefix+"*").Result()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, key := range netKeys {
		n, err := s.client.SCard(ctx, key).Result()
		if err != nil {
			return 0, err
		}
		if n > 0 {
			count++
		}
	}
	return count, nil
}

// NumHostsForNetwork returns the row count for networkID.
func (s *RedisStore) NumHostsForNetwork(ctx context.Context, networkID string) (int, error) {
	n, err := s.client.SCard(ctx, netIndexKey(networkID)).Result()
	return int(n), err
}

// HostsForNetwork returns the raw rows for networkID.
func (s *RedisStore) HostsForNetwork(ctx context.Context, networkID string) ([]Binding, error) {
	ids, err := s.idsForNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}
	rows := make([]Binding, 0, len(ids))
	for _, id := range ids {
		row, ok, err := s.readRow(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *RedisStore) idsForNetwork(ctx context.Context, networkID string) ([]int64, error) {
	members, err := s.client.SMembers(ctx, netIndexKey(networkID)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading index for %s: %w", networkID, err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var _ Store = (*RedisStore)(nil)

package arista

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/adapter"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eventlog"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/store"
)

// expected config keys, read from the map[string]string the Adapter passes
// every registered constructor — the flattened form of the YAML
// arista_driver section (config.Config's AristaDriverSection).
const (
	keyUser             = "arista_eapi_user"
	keyPass             = "arista_eapi_pass"
	keyHost             = "arista_eapi_host"
	keySegmentationType = "arista_segmentation_type"
	keyUseFQDN          = "arista_use_fqdn"
	keySyncInterval     = "arista_sync_interval"
	keyRedisAddr        = "arista_redis_addr"
)

// NewConstructor returns an adapter.Constructor that builds a fully wired
// EOS-class Driver (eAPI client + Redis store + sync service) from the
// flattened arista_driver config map. ctx governs the driver's background
// reconciler lifetime; it should outlive the Adapter.
func NewConstructor(ctx context.Context, log *logrus.Entry, event eventlog.Logger) adapter.Constructor {
	return func(cfg map[string]string) (hwdriver.Driver, error) {
		eapiCfg := eapi.Config{
			User: cfg[keyUser],
			Pass: cfg[keyPass],
			Host: cfg[keyHost],
		}
		client, err := eapi.NewEAPIClient(eapiCfg)
		if err != nil {
			return nil, err
		}

		redisAddr := cfg[keyRedisAddr]
		if redisAddr == "" {
			return nil, hwdriver.NewDriverConfigError("arista_driver", keyRedisAddr, "")
		}
		st, err := store.NewRedisStoreFromAddr(redisAddr)
		if err != nil {
			return nil, err
		}

		driverCfg := Config{
			SegmentationType: cfg[keySegmentationType],
			UseFQDN:          cfg[keyUseFQDN] == "true",
		}
		if raw := cfg[keySyncInterval]; raw != "" {
			if d, err := time.ParseDuration(raw); err == nil {
				driverCfg.SyncInterval = d
			}
		}

		return New(ctx, client, st, driverCfg, log, event)
	}
}

// Package arista implements the EOS-class hardware driver: it composes an
// eAPI client, a Provisioned-Net Store, and a background Sync Service behind
// the uniform hwdriver.Driver lifecycle.
package arista

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eapi"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/eventlog"
	hwsync "github.com/aristahw/tor-hwdriver/pkg/hwdriver/sync"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/store"
)

// Config holds the EOS driver's own options, read independently of the
// Adapter's global hw_driver_segmentation_type (spec §9: the driver's own
// option wins).
type Config struct {
	SegmentationType string // default "vlan"
	UseFQDN          bool
	SyncInterval     time.Duration // default 10s
}

func (c Config) vlanMode() bool {
	return c.SegmentationType == "" || c.SegmentationType == "vlan"
}

func (c Config) interval() time.Duration {
	if c.SyncInterval <= 0 {
		return 10 * time.Second
	}
	return c.SyncInterval
}

// Driver is the EOS-class hwdriver.Driver implementation. Every lifecycle
// operation and every reconciler tick acquires syncLock for its entire body,
// per spec.md §5: correctness over throughput.
type Driver struct {
	rpc   eapi.Client
	store store.Store
	sync  *hwsync.Service
	cfg   Config
	log   *logrus.Entry
	event eventlog.Logger

	syncLock sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Driver, initializes its Store, and starts the background
// reconciler. Callers should arrange for ctx to be canceled at shutdown;
// the reconciler loop exits once ctx is done. A nil event logger is
// replaced with eventlog.NewNoopLogger(), so observability is opt-in.
func New(ctx context.Context, rpc eapi.Client, st store.Store, cfg Config, log *logrus.Entry, event eventlog.Logger) (*Driver, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if event == nil {
		event = eventlog.NewNoopLogger()
	}
	if err := st.Initialize(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d := &Driver{
		rpc:    rpc,
		store:  st,
		sync:   hwsync.New(rpc, st, log),
		cfg:    cfg,
		log:    log,
		event:  event,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go d.reconcileLoop(runCtx)
	return d, nil
}

func (d *Driver) recordEvent(ev *eventlog.BindingEvent) {
	if err := d.event.Log(ev); err != nil {
		d.log.WithError(err).Warn("failed to record binding event")
	}
}

// Close cancels the background reconciler and waits for its current tick
// (if any) to finish. Not named in spec.md's original design (§9 notes no
// teardown path existed); added here per spec.md §5's explicit requirement
// that "driver teardown, if added, must cancel the pending timer."
func (d *Driver) Close() {
	d.cancel()
	<-d.done
}

// reconcileLoop self-rearms: the next tick is scheduled only after the
// current one completes, so a slow or hung tick can never overlap with
// another (spec.md §5 "Timer discipline").
func (d *Driver) reconcileLoop(ctx context.Context) {
	defer close(d.done)
	timer := time.NewTimer(d.cfg.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.syncLock.Lock()
			tickErr := d.sync.Tick(ctx)
			d.syncLock.Unlock()

			ev := eventlog.NewEvent("arista", eventlog.OpSyncTick)
			if tickErr != nil {
				d.log.WithError(tickErr).Error("sync tick failed")
				d.recordEvent(ev.WithError(tickErr))
			} else {
				d.recordEvent(ev.WithSuccess())
			}

			select {
			case <-ctx.Done():
				return
			default:
				timer.Reset(d.cfg.interval())
			}
		}
	}
}

// normalize truncates host at its first '.' when the driver is not running
// in FQDN mode, so plug and unplug compare and forget symmetrically.
func (d *Driver) normalize(host string) string {
	if d.cfg.UseFQDN {
		return host
	}
	if i := strings.IndexByte(host, '.'); i >= 0 {
		return host[:i]
	}
	return host
}

// CreateNetwork records the network placeholder locally; no RPC is issued
// until a host is plugged into it.
func (d *Driver) CreateNetwork(ctx context.Context, networkID string) error {
	d.syncLock.Lock()
	defer d.syncLock.Unlock()

	ev := eventlog.NewEvent("arista", eventlog.OpCreateNetwork).WithNetwork(networkID)
	err := d.store.RememberNetwork(ctx, networkID)
	if err != nil {
		d.recordEvent(ev.WithError(err))
	} else {
		d.recordEvent(ev.WithSuccess())
	}
	return err
}

// DeleteNetwork best-effort deletes the network on the switch, then
// unconditionally forgets it locally — an RPC failure here does not block
// the caller; the next reconciler tick will retry the remote delete.
func (d *Driver) DeleteNetwork(ctx context.Context, networkID string) error {
	d.syncLock.Lock()
	defer d.syncLock.Unlock()

	ev := eventlog.NewEvent("arista", eventlog.OpDeleteNetwork).WithNetwork(networkID)

	provisioned, err := d.store.IsNetworkProvisioned(ctx, networkID, nil, nil)
	if err != nil {
		d.recordEvent(ev.WithError(err))
		return err
	}
	if provisioned {
		if rpcErr := d.rpc.DeleteNetwork(ctx, networkID); rpcErr != nil {
			d.log.WithError(rpcErr).WithField("network", networkID).Warn("delete_network rpc failed, reconciler will retry")
		}
	}
	err = d.store.ForgetNetwork(ctx, networkID)
	if err != nil {
		d.recordEvent(ev.WithError(err))
	} else {
		d.recordEvent(ev.WithSuccess())
	}
	return err
}

// PlugHost gates on the Store so a repeated call for an already-provisioned
// (network, vlan, host) triple never re-issues the RPC (spec.md S1).
func (d *Driver) PlugHost(ctx context.Context, networkID string, vlanID int, host string) error {
	d.syncLock.Lock()
	defer d.syncLock.Unlock()

	h := d.normalize(host)
	ev := eventlog.NewEvent("arista", eventlog.OpPlugHost).WithNetwork(networkID).WithHost(vlanID, h)

	provisioned, err := d.store.IsNetworkProvisioned(ctx, networkID, &vlanID, &h)
	if err != nil {
		d.recordEvent(ev.WithError(err))
		return err
	}
	if provisioned {
		d.recordEvent(ev.WithSuccess())
		return nil
	}

	if d.cfg.vlanMode() {
		if err := d.rpc.Plug(ctx, networkID, vlanID, h); err != nil {
			d.recordEvent(ev.WithError(err))
			return err
		}
	}
	err = d.store.RememberHost(ctx, networkID, vlanID, h)
	if err != nil {
		d.recordEvent(ev.WithError(err))
	} else {
		d.recordEvent(ev.WithSuccess())
	}
	return err
}

// UnplugHost is the symmetric inverse of PlugHost.
func (d *Driver) UnplugHost(ctx context.Context, networkID string, vlanID int, host string) error {
	d.syncLock.Lock()
	defer d.syncLock.Unlock()

	h := d.normalize(host)
	ev := eventlog.NewEvent("arista", eventlog.OpUnplugHost).WithNetwork(networkID).WithHost(vlanID, h)

	provisioned, err := d.store.IsNetworkProvisioned(ctx, networkID, &vlanID, &h)
	if err != nil {
		d.recordEvent(ev.WithError(err))
		return err
	}
	if !provisioned {
		d.recordEvent(ev.WithSuccess())
		return nil
	}

	if d.cfg.vlanMode() {
		if err := d.rpc.Unplug(ctx, networkID, vlanID, h); err != nil {
			d.recordEvent(ev.WithError(err))
			return err
		}
	}
	err = d.store.ForgetHost(ctx, networkID, h)
	if err != nil {
		d.recordEvent(ev.WithError(err))
	} else {
		d.recordEvent(ev.WithSuccess())
	}
	return err
}

var _ hwdriver.Driver = (*Driver)(nil)

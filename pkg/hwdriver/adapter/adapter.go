// Package adapter implements the Driver Adapter: the multiplexer that fans
// network/port lifecycle callbacks out to every configured hardware driver.
package adapter

import (
	"context"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver"
	"github.com/aristahw/tor-hwdriver/pkg/hwdriver/dummy"
	"github.com/aristahw/tor-hwdriver/pkg/util"
)

// Network is the subset of network attributes the Adapter needs.
type Network struct {
	ID string
}

// Port is the subset of port attributes the Adapter needs. HostID mirrors
// the original's port.HOST_ID binding attribute; empty means unbound.
type Port struct {
	NetworkID string
	HostID    string
}

// GetSegmentationIDFunc resolves a network to its segmentation id (e.g.
// VLAN tag). The Adapter rejects construction without one.
type GetSegmentationIDFunc func(ctx context.Context, networkID string) (int, error)

// Constructor builds a driver from the raw config section map. Registered
// constructors are the Go analogue of the original's dynamic
// importutils.import_class — Go has no runtime class loading, so driver
// names resolve through this in-process registry instead.
type Constructor func(cfg map[string]string) (hwdriver.Driver, error)

var registry = map[string]Constructor{}

// Register adds a named driver constructor to the registry. This package's
// init registers "dummy"; any other driver (e.g. one built by
// arista.NewConstructor) is resolvable only after the embedding process
// registers it by name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

func init() {
	Register("dummy", func(cfg map[string]string) (hwdriver.Driver, error) {
		return dummy.New(), nil
	})
}

// Adapter fans lifecycle callbacks out to every configured non-dummy
// driver. The zero-driver case (after dummy-filtering) makes every fan-out
// method a no-op, per spec.md §4.5.
type Adapter struct {
	getSegID GetSegmentationIDFunc
	drivers  []hwdriver.Driver
}

// New resolves names (de-duplicated, order-preserving) through the
// registry, instantiates each, and filters out dummy.Driver instances from
// the fan-out set. Returns hwdriver.InvalidDelegateError if getSegID is
// nil, or hwdriver.DriverConfigError if names is empty or any name is
// unregistered.
func New(names []string, driverCfg map[string]string, getSegID GetSegmentationIDFunc) (*Adapter, error) {
	if getSegID == nil {
		return nil, &hwdriver.InvalidDelegateError{Reason: "get_segmentation_id must not be nil"}
	}
	if len(names) == 0 {
		return nil, hwdriver.NewDriverConfigError("hardware_driver", "hardware_drivers", "must name at least one driver")
	}

	seen := make(map[string]struct{}, len(names))
	var ordered []string
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		ordered = append(ordered, n)
	}
	if len(ordered) == 0 {
		return nil, hwdriver.NewDriverConfigError("hardware_driver", "hardware_drivers", "must name at least one driver")
	}

	var fanOut []hwdriver.Driver
	for _, name := range ordered {
		ctor, ok := registry[name]
		if !ok {
			return nil, hwdriver.NewDriverConfigError("hardware_driver", "hardware_drivers", "unknown driver \""+name+"\"")
		}
		drv, err := ctor(driverCfg)
		if err != nil {
			return nil, err
		}
		if _, isDummy := drv.(*dummy.Driver); isDummy {
			continue
		}
		fanOut = append(fanOut, drv)
	}

	return &Adapter{getSegID: getSegID, drivers: fanOut}, nil
}

// NewFromCSV is a convenience wrapper accepting the comma-separated string
// form of hardware_drivers, as the YAML config's "comma-separated string
// form also accepted" note allows.
func NewFromCSV(csv string, driverCfg map[string]string, getSegID GetSegmentationIDFunc) (*Adapter, error) {
	return New(util.SplitCommaSeparated(csv), driverCfg, getSegID)
}

// OnNetworkCreate delegates CreateNetwork to every configured driver.
func (a *Adapter) OnNetworkCreate(ctx context.Context, network Network) error {
	for _, d := range a.drivers {
		if err := d.CreateNetwork(ctx, network.ID); err != nil {
			return err
		}
	}
	return nil
}

// OnNetworkUpdate is a reserved no-op, per spec.md §4.5.
func (a *Adapter) OnNetworkUpdate(ctx context.Context, networkID string, network Network) error {
	return nil
}

// OnNetworkDelete delegates DeleteNetwork to every configured driver.
func (a *Adapter) OnNetworkDelete(ctx context.Context, networkID string) error {
	for _, d := range a.drivers {
		if err := d.DeleteNetwork(ctx, networkID); err != nil {
			return err
		}
	}
	return nil
}

// OnPortCreate is a no-op if the port is not yet bound to a compute host;
// otherwise it resolves the network's segmentation id and delegates
// PlugHost to every configured driver.
func (a *Adapter) OnPortCreate(ctx context.Context, port Port) error {
	if port.HostID == "" {
		return nil
	}
	seg, err := a.getSegID(ctx, port.NetworkID)
	if err != nil {
		return err
	}
	for _, d := range a.drivers {
		if err := d.PlugHost(ctx, port.NetworkID, seg, port.HostID); err != nil {
			return err
		}
	}
	return nil
}

// OnPortUpdate overwrites port.NetworkID and delegates to OnPortCreate.
func (a *Adapter) OnPortUpdate(ctx context.Context, port Port, networkID string) error {
	port.NetworkID = networkID
	return a.OnPortCreate(ctx, port)
}

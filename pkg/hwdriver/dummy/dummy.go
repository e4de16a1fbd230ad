// Package dummy implements the no-op hardware driver used for testing
// Adapter wiring and as a documented placeholder in hardware_drivers lists.
package dummy

import (
	"context"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver"
)

// Driver does nothing; every lifecycle method returns nil immediately. The
// Adapter filters instances of this type out of its fan-out set (spec.md
// §4.5: "stores the set of non-dummy instances").
type Driver struct{}

// New returns a Driver. Takes no configuration since it has none.
func New() *Driver {
	return &Driver{}
}

func (*Driver) CreateNetwork(ctx context.Context, networkID string) error { return nil }
func (*Driver) DeleteNetwork(ctx context.Context, networkID string) error { return nil }
func (*Driver) PlugHost(ctx context.Context, networkID string, vlanID int, host string) error {
	return nil
}
func (*Driver) UnplugHost(ctx context.Context, networkID string, vlanID int, host string) error {
	return nil
}

var _ hwdriver.Driver = (*Driver)(nil)

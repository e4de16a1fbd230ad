// Package config loads and validates the hardware-driver subsystem's
// configuration, the same way the teacher loads topology/settings YAML:
// gopkg.in/yaml.v3 into a typed struct, followed by an explicit Validate
// pass that accumulates every missing required field instead of failing on
// the first one.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aristahw/tor-hwdriver/pkg/util"
)

// HardwareDriverSection is the top-level "hardware_driver" YAML block.
type HardwareDriverSection struct {
	// HardwareDrivers is the required, comma-separated-or-list set of
	// driver names to instantiate. YAML accepts either a sequence or a
	// single comma-separated scalar; UnmarshalYAML normalizes both.
	HardwareDrivers []string `yaml:"hardware_drivers"`
	// SegmentationType is the Adapter's global default; each driver's own
	// segmentation option wins over this one (spec.md §9).
	SegmentationType string `yaml:"hw_driver_segmentation_type"`
}

// UnmarshalYAML accepts hardware_drivers as either a YAML sequence or a
// single comma-separated scalar string.
func (h *HardwareDriverSection) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		HardwareDrivers  yaml.Node `yaml:"hardware_drivers"`
		SegmentationType string    `yaml:"hw_driver_segmentation_type"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	h.SegmentationType = raw.SegmentationType

	switch raw.HardwareDrivers.Kind {
	case yaml.SequenceNode:
		return raw.HardwareDrivers.Decode(&h.HardwareDrivers)
	case yaml.ScalarNode:
		var csv string
		if err := raw.HardwareDrivers.Decode(&csv); err != nil {
			return err
		}
		h.HardwareDrivers = util.SplitCommaSeparated(csv)
		return nil
	default:
		h.HardwareDrivers = nil
		return nil
	}
}

// AristaDriverSection is the "arista_driver" YAML block.
type AristaDriverSection struct {
	User             string        `yaml:"arista_eapi_user"`
	Pass             string        `yaml:"arista_eapi_pass"`
	Host             string        `yaml:"arista_eapi_host"`
	SegmentationType string        `yaml:"arista_segmentation_type"`
	UseFQDN          bool          `yaml:"arista_use_fqdn"`
	SyncInterval     time.Duration `yaml:"arista_sync_interval"`
	// RedisAddr is where the Provisioned-Net Store's backing Redis instance
	// lives. Not named in spec.md §6 (which specifies the schema, not the
	// concrete store's connection details) but required to construct the
	// store outside of a test harness.
	RedisAddr string `yaml:"arista_redis_addr"`
}

// Config is the whole hardware-driver configuration document.
type Config struct {
	HardwareDriver HardwareDriverSection `yaml:"hardware_driver"`
	AristaDriver   AristaDriverSection   `yaml:"arista_driver"`
}

// Load reads and parses a YAML config file, then validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

// LoadBytes parses raw YAML bytes, then validates the result.
func LoadBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate accumulates every missing/invalid required field rather than
// stopping at the first, using the teacher's ValidationBuilder pattern
// (pkg/util/errors.go).
func (c *Config) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(len(c.HardwareDriver.HardwareDrivers) > 0, "hardware_driver.hardware_drivers is required")

	driverSet := make(map[string]struct{}, len(c.HardwareDriver.HardwareDrivers))
	for _, name := range c.HardwareDriver.HardwareDrivers {
		driverSet[name] = struct{}{}
	}
	if _, wantsArista := driverSet["arista"]; wantsArista {
		v.Add(c.AristaDriver.User != "", "arista_driver.arista_eapi_user is required")
		v.Add(c.AristaDriver.Pass != "", "arista_driver.arista_eapi_pass is required")
		v.Add(c.AristaDriver.Host != "", "arista_driver.arista_eapi_host is required")
	}
	return v.Build()
}

// EffectiveSegmentationType returns the arista_driver section's own
// segmentation type if set, else the adapter-wide default, else "vlan" —
// the driver's own option wins per spec.md §9.
func (c *Config) EffectiveSegmentationType() string {
	if c.AristaDriver.SegmentationType != "" {
		return c.AristaDriver.SegmentationType
	}
	if c.HardwareDriver.SegmentationType != "" {
		return c.HardwareDriver.SegmentationType
	}
	return "vlan"
}

// EffectiveSyncInterval returns the configured sync interval, defaulting to
// 10 seconds when unset, matching the YAML example's documented default.
func (c *Config) EffectiveSyncInterval() time.Duration {
	if c.AristaDriver.SyncInterval <= 0 {
		return 10 * time.Second
	}
	return c.AristaDriver.SyncInterval
}

// EffectiveRedisAddr returns the configured Redis address, defaulting to
// localhost:6379.
func (c *Config) EffectiveRedisAddr() string {
	if c.AristaDriver.RedisAddr == "" {
		return "localhost:6379"
	}
	return c.AristaDriver.RedisAddr
}

// DriverConfigMap flattens the arista_driver section into the
// map[string]string shape adapter.Constructor implementations expect —
// the Go analogue of the original passing the whole CONF object down to
// each driver's constructor.
func (c *Config) DriverConfigMap() map[string]string {
	return map[string]string{
		"arista_eapi_user":         c.AristaDriver.User,
		"arista_eapi_pass":         c.AristaDriver.Pass,
		"arista_eapi_host":         c.AristaDriver.Host,
		"arista_segmentation_type": c.EffectiveSegmentationType(),
		"arista_use_fqdn":          strconv.FormatBool(c.AristaDriver.UseFQDN),
		"arista_sync_interval":     c.EffectiveSyncInterval().String(),
		"arista_redis_addr":        c.EffectiveRedisAddr(),
	}
}

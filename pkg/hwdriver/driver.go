// Package hwdriver defines the shared contract between the driver adapter
// and the concrete hardware drivers it fans lifecycle events out to, plus
// the error kinds those drivers and their collaborators raise.
package hwdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver is the capability set any concrete hardware driver provides.
// The EOS-class driver (pkg/hwdriver/arista) and the no-op driver
// (pkg/hwdriver/dummy) both implement it.
type Driver interface {
	CreateNetwork(ctx context.Context, networkID string) error
	DeleteNetwork(ctx context.Context, networkID string) error
	PlugHost(ctx context.Context, networkID string, vlanID int, host string) error
	UnplugHost(ctx context.Context, networkID string, vlanID int, host string) error
}

// Sentinel errors so callers can classify failures with errors.Is without
// depending on the concrete error struct.
var (
	ErrDriverConfig    = errors.New("hardware driver configuration invalid")
	ErrInvalidDelegate = errors.New("invalid segmentation id delegate")
	ErrRPC             = errors.New("hardware rpc call failed")
)

// DriverConfigError is raised when required configuration is missing or
// empty at Adapter or driver construction time. It is always fatal.
type DriverConfigError struct {
	Section string
	Option  string
	Reason  string
}

func (e *DriverConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("hardware driver config: %s.%s: %s", e.Section, e.Option, e.Reason)
	}
	return fmt.Sprintf("hardware driver config: %s.%s is required", e.Section, e.Option)
}

func (e *DriverConfigError) Unwrap() error { return ErrDriverConfig }

// NewDriverConfigError builds a DriverConfigError for a missing required option.
func NewDriverConfigError(section, option, reason string) *DriverConfigError {
	return &DriverConfigError{Section: section, Option: option, Reason: reason}
}

// InvalidDelegateError is raised when the Adapter is constructed without a
// callable segmentation-id lookup.
type InvalidDelegateError struct {
	Reason string
}

func (e *InvalidDelegateError) Error() string {
	return "invalid get_segmentation_id delegate: " + e.Reason
}

func (e *InvalidDelegateError) Unwrap() error { return ErrInvalidDelegate }

// RPCError collapses any transport or protocol failure talking to the
// switch into a single kind, carrying the offending command sequence and
// host so callers and logs can report what was attempted.
type RPCError struct {
	Host     string
	Commands []string
	Cause    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc to %s failed executing [%s]: %v", e.Host, strings.Join(e.Commands, "; "), e.Cause)
}

func (e *RPCError) Unwrap() error { return ErrRPC }

// NewRPCError wraps cause as an RPCError for the given host/command sequence.
func NewRPCError(host string, commands []string, cause error) *RPCError {
	return &RPCError{Host: host, Commands: commands, Cause: cause}
}

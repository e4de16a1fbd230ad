// Package eventlog records one JSON-lines entry per binding lifecycle
// operation (network create/delete, host plug/unplug, sync tick outcome),
// adapted from the teacher's pkg/audit file logger but retargeted at
// binding events instead of CLI configuration changes.
package eventlog

import (
	"time"

	"github.com/google/uuid"
)

// Operation names the binding lifecycle event being recorded.
type Operation string

const (
	OpCreateNetwork Operation = "create_network"
	OpDeleteNetwork Operation = "delete_network"
	OpPlugHost      Operation = "plug_host"
	OpUnplugHost    Operation = "unplug_host"
	OpSyncTick      Operation = "sync_tick"
)

// BindingEvent is one auditable record of a binding lifecycle operation.
type BindingEvent struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Driver         string        `json:"driver"`
	Operation      Operation     `json:"operation"`
	NetworkID      string        `json:"network_id,omitempty"`
	SegmentationID int           `json:"segmentation_id,omitempty"`
	Host           string        `json:"host,omitempty"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// Filter defines criteria for querying recorded events.
type Filter struct {
	Driver      string
	Operation   Operation
	NetworkID   string
	Host        string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a BindingEvent stamped with a fresh id, using
// google/uuid rather than the teacher's ad hoc UnixNano-based generator.
func NewEvent(driver string, op Operation) *BindingEvent {
	return &BindingEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Driver:    driver,
		Operation: op,
	}
}

// WithNetwork sets the network id.
func (e *BindingEvent) WithNetwork(networkID string) *BindingEvent {
	e.NetworkID = networkID
	return e
}

// WithHost sets the segmentation id and host.
func (e *BindingEvent) WithHost(vlanID int, host string) *BindingEvent {
	e.SegmentationID = vlanID
	e.Host = host
	return e
}

// WithSuccess marks the event as successful.
func (e *BindingEvent) WithSuccess() *BindingEvent {
	e.Success = true
	return e
}

// WithError marks the event as failed.
func (e *BindingEvent) WithError(err error) *BindingEvent {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDuration records how long the operation took.
func (e *BindingEvent) WithDuration(d time.Duration) *BindingEvent {
	e.Duration = d
	return e
}

// Package metrics records trigger and sequencer counters.
package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations must not block or return errors.
type Sink interface {
	// Trigger channel
	TriggerAccepted(command string)
	TriggerRejected(reason string)
	ConnectionError()

	// Sequencer
	FocusCompleted(ok bool, duration time.Duration)
	SequenceCompleted(command string, failedSteps int, duration time.Duration)
	StepFailed(command string)
}

// Reject reasons for TriggerRejected.
const (
	RejectUnknownCommand = "unknown_command"
	RejectDecodeError    = "decode_error"
)

var (
	_ Sink = (*PrometheusSink)(nil)
	_ Sink = (*NoopSink)(nil)
)

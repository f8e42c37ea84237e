package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) TriggerAccepted(command string)                                     {}
func (n *NoopSink) TriggerRejected(reason string)                                      {}
func (n *NoopSink) ConnectionError()                                                   {}
func (n *NoopSink) FocusCompleted(ok bool, duration time.Duration)                     {}
func (n *NoopSink) SequenceCompleted(command string, failedSteps int, d time.Duration) {}
func (n *NoopSink) StepFailed(command string)                                          {}

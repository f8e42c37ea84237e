package metrics

import (
	"log"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	triggersAccepted *prometheus.CounterVec
	triggersRejected *prometheus.CounterVec
	connErrors       prometheus.Counter

	focusTotal       *prometheus.CounterVec
	focusDuration    prometheus.Histogram
	sequencesTotal   *prometheus.CounterVec
	sequenceDuration prometheus.Histogram
	stepFailures     *prometheus.CounterVec
}

// NewPrometheusSink creates a sink and registers its collectors on reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initTriggerMetrics(reg)
	s.initSequencerMetrics(reg)
	return s
}

func (s *PrometheusSink) initTriggerMetrics(reg prometheus.Registerer) {
	s.triggersAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keytrigger_triggers_accepted_total",
		Help: "Total number of trigger messages accepted and published.",
	}, []string{"command"})
	s.triggersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keytrigger_triggers_rejected_total",
		Help: "Total number of trigger messages answered with UNKNOWN_COMMAND.",
	}, []string{"reason"})
	s.connErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "keytrigger_connection_errors_total",
		Help: "Total number of trigger connection I/O errors.",
	})

	s.register(reg, s.triggersAccepted, "keytrigger_triggers_accepted_total")
	s.register(reg, s.triggersRejected, "keytrigger_triggers_rejected_total")
	s.register(reg, s.connErrors, "keytrigger_connection_errors_total")
}

func (s *PrometheusSink) initSequencerMetrics(reg prometheus.Registerer) {
	s.focusTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keytrigger_focus_attempts_total",
		Help: "Total number of target re-focus attempts.",
	}, []string{"ok"})
	s.focusDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "keytrigger_focus_duration_seconds",
		Help:    "Time spent in the window service focus call.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2},
	})
	s.sequencesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keytrigger_sequences_completed_total",
		Help: "Total number of step sequences run to completion.",
	}, []string{"command", "partial"})
	s.sequenceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "keytrigger_sequence_duration_seconds",
		Help:    "Wall time of a step sequence including settle delays.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20},
	})
	s.stepFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "keytrigger_step_failures_total",
		Help: "Total number of individual steps that failed to inject.",
	}, []string{"command"})

	s.register(reg, s.focusTotal, "keytrigger_focus_attempts_total")
	s.register(reg, s.focusDuration, "keytrigger_focus_duration_seconds")
	s.register(reg, s.sequencesTotal, "keytrigger_sequences_completed_total")
	s.register(reg, s.sequenceDuration, "keytrigger_sequence_duration_seconds")
	s.register(reg, s.stepFailures, "keytrigger_step_failures_total")
}

// register attempts to register a collector, logging any errors without propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) TriggerAccepted(command string) {
	s.triggersAccepted.WithLabelValues(command).Inc()
}

func (s *PrometheusSink) TriggerRejected(reason string) {
	s.triggersRejected.WithLabelValues(reason).Inc()
}

func (s *PrometheusSink) ConnectionError() {
	s.connErrors.Inc()
}

func (s *PrometheusSink) FocusCompleted(ok bool, duration time.Duration) {
	s.focusTotal.WithLabelValues(strconv.FormatBool(ok)).Inc()
	s.focusDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) SequenceCompleted(command string, failedSteps int, duration time.Duration) {
	s.sequencesTotal.WithLabelValues(command, strconv.FormatBool(failedSteps > 0)).Inc()
	s.sequenceDuration.Observe(duration.Seconds())
}

func (s *PrometheusSink) StepFailed(command string) {
	s.stepFailures.WithLabelValues(command).Inc()
}

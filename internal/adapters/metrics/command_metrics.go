package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommandMetricsCollector records every request that passes through the
// mediator: factory commands, billing runs, marketplace trades and queries.
type CommandMetricsCollector struct {
	commandDuration  *prometheus.HistogramVec
	commandsTotal    *prometheus.CounterVec
	commandErrors    *prometheus.CounterVec
	commandsInFlight *prometheus.GaugeVec
}

func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		// in-process handlers; a tick over every factory is the slow end
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_duration_seconds",
				Help:      "Time spent handling a mediator request",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1.0},
			},
			[]string{"command", "status"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_total",
				Help:      "Mediator requests handled, by request type and outcome",
			},
			[]string{"command", "status"},
		),
		commandErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "command_errors_total",
				Help:      "Rejected mediator requests, by request type and domain error",
			},
			[]string{"command", "error"},
		),
		commandsInFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "commands_in_flight",
				Help:      "Mediator requests currently being handled",
			},
			[]string{"command"},
		),
	}
}

// Register adds the collectors to Registry; it does nothing when metrics are disabled
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{
		c.commandDuration,
		c.commandsTotal,
		c.commandErrors,
		c.commandsInFlight,
	} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// begin marks a request as in flight and returns the matching release
func (c *CommandMetricsCollector) begin(commandName string) func() {
	g := c.commandsInFlight.WithLabelValues(commandName)
	g.Inc()
	return g.Dec
}

// RecordCommandExecution records one handled request. errorKind is empty on success.
func (c *CommandMetricsCollector) RecordCommandExecution(commandName string, duration float64, errorKind string) {
	status := "ok"
	if errorKind != "" {
		status = "error"
		c.commandErrors.WithLabelValues(commandName, errorKind).Inc()
	}
	c.commandDuration.WithLabelValues(commandName, status).Observe(duration)
	c.commandsTotal.WithLabelValues(commandName, status).Inc()
}

package telemetry

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"KeywordAnalyzer/internal/config"
	"KeywordAnalyzer/internal/ports"
)

// NamedSink is a sink with a log name.
type NamedSink interface {
	ports.TelemetrySink
	Name() string
}

// Dispatcher fans a stage payload out to every sink concurrently. Delivery
// errors are logged and never returned.
type Dispatcher struct {
	identity Identity
	sinks    []NamedSink
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// NewDispatcher wires sinks. A nil location means UTC.
func NewDispatcher(id Identity, sinks []NamedSink, loc *time.Location, log *slog.Logger) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{identity: id, sinks: sinks, location: loc, now: time.Now, logger: log}
}

// FromConfig builds the primary webhook and, when the primary is set, the
// internal one stamped with run_env. Unconfigured webhooks are left out.
func FromConfig(cfg config.TelemetryConfig, log *slog.Logger) *Dispatcher {
	var sinks []NamedSink
	primary := NewWebhookSink("primary", cfg.WebhookURL, cfg.Token, cfg.Timeout, nil)
	if primary.Configured() {
		sinks = append(sinks, primary)
		internal := NewWebhookSink("internal", cfg.InternalWebhookURL, cfg.InternalToken, cfg.Timeout,
			map[string]any{"run_env": cfg.RunEnv})
		if internal.Configured() {
			sinks = append(sinks, internal)
		}
	}
	id := Identity{AgentName: cfg.AgentName, AgentOwner: cfg.AgentOwner, JobType: DefaultJobType}
	return NewDispatcher(id, sinks, cfg.Location(), log)
}

// Identity returns the agent identity used in payloads.
func (d *Dispatcher) Identity() Identity { return d.identity }

// Enabled reports whether any sink is configured.
func (d *Dispatcher) Enabled() bool { return d != nil && len(d.sinks) > 0 }

// Emit sends the stage to all sinks and waits for them. It returns the
// number of successful deliveries.
func (d *Dispatcher) Emit(ctx context.Context, stage Stage) int {
	if !d.Enabled() {
		return 0
	}
	payload := stage.Payload(d.identity, d.now().In(d.location))

	delivered := make([]bool, len(d.sinks))
	var g errgroup.Group
	for i, sink := range d.sinks {
		g.Go(func() error {
			if err := sink.Send(ctx, payload); err != nil {
				d.warn("telemetry delivery failed",
					"sink", sink.Name(),
					"job_type", stage.Job,
					"run_id", stage.RunID,
					"err", err,
				)
				return nil
			}
			delivered[i] = true
			d.debug("telemetry delivered", "sink", sink.Name(), "job_type", stage.Job, "status", stage.Status)
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range delivered {
		if ok {
			n++
		}
	}
	return n
}

func (d *Dispatcher) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

func (d *Dispatcher) warn(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}

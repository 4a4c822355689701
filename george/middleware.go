package george

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LoggingMiddleware logs every command at debug level and transport failures
// at warn level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, cmd Command) (string, error) {
			start := time.Now()
			reply, err := next(ctx, cmd)
			if err != nil {
				logger.Warn("george command failed",
					"command", cmd.Name,
					"duration", time.Since(start),
					"error", err,
				)
				return reply, err
			}
			logger.Debug("george command",
				"command", cmd.Name,
				"args", len(cmd.Args),
				"reply_bytes", len(reply),
				"duration", time.Since(start),
			)
			return reply, nil
		}
	}
}

// Metrics holds the collectors updated by MetricsMiddleware.
type Metrics struct {
	Commands  *prometheus.CounterVec
	Sentinels *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
}

// NewMetrics creates the command collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tvpaint_george_commands_total",
				Help: "George commands sent, by command and outcome.",
			},
			[]string{"command", "outcome"},
		),
		Sentinels: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tvpaint_george_sentinel_replies_total",
				Help: "Replies matching a sentinel declared by the command.",
			},
			[]string{"command"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tvpaint_george_command_duration_seconds",
				Help:    "Round-trip time of George commands.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"command"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.Sentinels, m.Duration)
	}
	return m
}

// MetricsMiddleware records command counts, sentinel replies and latency.
func MetricsMiddleware(m *Metrics) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, cmd Command) (string, error) {
			start := time.Now()
			reply, err := next(ctx, cmd)
			m.Duration.WithLabelValues(cmd.Name).Observe(time.Since(start).Seconds())

			outcome := "ok"
			var hostErr *HostError
			switch {
			case errors.As(err, &hostErr):
				outcome = "host_error"
			case err != nil:
				outcome = "transport_error"
			default:
				if _, ok := cmd.match(reply); ok {
					outcome = "sentinel"
					m.Sentinels.WithLabelValues(cmd.Name).Inc()
				}
			}
			m.Commands.WithLabelValues(cmd.Name, outcome).Inc()
			return reply, err
		}
	}
}

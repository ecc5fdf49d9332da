package audit

import (
	"log/slog"
	"time"

	"github.com/tuannvm/fileaudit/internal/agent"
)

// Default simulated latencies standing in for real file I/O.
const (
	DefaultFileAnalysisDelay = 300 * time.Millisecond
	DefaultBatchDelay        = 200 * time.Millisecond
	DefaultAggregationDelay  = 250 * time.Millisecond
	DefaultSecurityDelay     = 400 * time.Millisecond

	// DefaultBatchSize is used when no positive batch size is configured.
	DefaultBatchSize = 5
)

// Options configures an audit agent.
type Options struct {
	// Delay is the simulated latency. Zero disables it.
	Delay  time.Duration
	Logger *slog.Logger
}

func (o Options) agentOptions() []agent.Option {
	if o.Logger == nil {
		return nil
	}
	return []agent.Option{agent.WithLogger(o.Logger)}
}

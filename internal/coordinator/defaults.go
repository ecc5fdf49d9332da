package coordinator

import (
	"log/slog"
	"time"

	"github.com/tuannvm/fileaudit/internal/audit"
	"github.com/tuannvm/fileaudit/internal/config"
)

// NewFromConfig creates a coordinator with the four standard agents
// registered and configured from cfg. A nil cfg uses config.Default.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	mode, err := ParseMode(cfg.Execution)
	if err != nil {
		return nil, err
	}

	delays := cfg.EffectiveDelays()
	with := func(d time.Duration) audit.Options {
		return audit.Options{Delay: d, Logger: logger}
	}

	c := New(append([]Option{WithMode(mode), WithLogger(logger)}, opts...)...)
	c.RegisterFileAnalysis(audit.NewFileAnalysisAgent(with(delays.FileAnalysis)))
	c.RegisterBatchProcessing(audit.NewBatchProcessingAgent(cfg.BatchSize, with(delays.Batch)))
	c.RegisterAggregation(audit.NewAggregationAgent(with(delays.Aggregation)))
	c.RegisterSecurityAnalysis(audit.NewSecurityAnalysisAgent(with(delays.Security)))
	return c, nil
}

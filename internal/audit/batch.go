package audit

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/types"
)

// Batch processing identity.
const (
	BatchProcessingName = "BatchProcessingAgent"
	BatchProcessingRole = "Batch Processor"
)

// Batch and validation status labels.
const (
	BatchValidated   = "validated"
	ValidationPassed = "passed"
)

// BatchSummary describes one processed batch.
type BatchSummary struct {
	BatchIndex   int      `json:"batchIndex" yaml:"batch_index"`
	FileCount    int      `json:"fileCount" yaml:"file_count"`
	Files        []string `json:"files" yaml:"files"`
	BatchStatus  string   `json:"batchStatus" yaml:"batch_status"`
	ValidFiles   int      `json:"validFiles" yaml:"valid_files"`
	InvalidFiles int      `json:"invalidFiles" yaml:"invalid_files"`
}

// BatchReport is the batch processing result.
type BatchReport struct {
	TotalBatches     int            `json:"totalBatches" yaml:"total_batches"`
	BatchSize        int            `json:"batchSize" yaml:"batch_size"`
	ProcessedBatches []BatchSummary `json:"processedBatches" yaml:"processed_batches"`
	ValidationStatus string         `json:"validationStatus" yaml:"validation_status"`
}

// BatchProcessingAgent is the typed agent produced by NewBatchProcessingAgent.
type BatchProcessingAgent = agent.Agent[[]types.FileMetadata, BatchReport]

type batchProcessor struct {
	size  int
	delay time.Duration
}

// NewBatchProcessingAgent creates the agent that partitions metadata into
// contiguous batches of batchSize. Non-positive sizes use DefaultBatchSize.
func NewBatchProcessingAgent(batchSize int, opts Options) *BatchProcessingAgent {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	bp := &batchProcessor{size: batchSize, delay: opts.Delay}
	return agent.New[[]types.FileMetadata, BatchReport](BatchProcessingName, BatchProcessingRole, bp, opts.agentOptions()...)
}

func (b *batchProcessor) Execute(ctx context.Context, files []types.FileMetadata) (BatchReport, error) {
	if len(files) == 0 {
		return BatchReport{}, types.InvalidInput(BatchProcessingName, "requires file metadata")
	}

	batches := Partition(files, b.size)
	summaries := make([]BatchSummary, len(batches))

	// Each goroutine writes only its own slot, so output stays in index order
	// regardless of completion order.
	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			summary, err := b.process(gctx, i, batch)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchReport{}, err
	}

	return BatchReport{
		TotalBatches:     len(batches),
		BatchSize:        b.size,
		ProcessedBatches: summaries,
		ValidationStatus: ValidationPassed,
	}, nil
}

func (b *batchProcessor) process(ctx context.Context, index int, batch []types.FileMetadata) (BatchSummary, error) {
	if err := agent.Sleep(ctx, b.delay); err != nil {
		return BatchSummary{}, err
	}
	names := make([]string, len(batch))
	for i, f := range batch {
		names[i] = f.Name
	}
	return BatchSummary{
		BatchIndex:   index,
		FileCount:    len(batch),
		Files:        names,
		BatchStatus:  BatchValidated,
		ValidFiles:   len(batch),
		InvalidFiles: 0,
	}, nil
}

// Partition splits files into contiguous chunks of at most size elements.
func Partition(files []types.FileMetadata, size int) [][]types.FileMetadata {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make([][]types.FileMetadata, 0, (len(files)+size-1)/size)
	for start := 0; start < len(files); start += size {
		end := min(start+size, len(files))
		batches = append(batches, files[start:end])
	}
	return batches
}

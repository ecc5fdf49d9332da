package audit

import (
	"context"
	"math"
	"time"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/types"
)

// Aggregation identity.
const (
	AggregationName = "AggregationAgent"
	AggregationRole = "Aggregator"
)

// Size distribution bucket bounds. Buckets are inclusive-exclusive.
const (
	MediumFileThreshold int64 = 1 << 20  // 1,048,576
	LargeFileThreshold  int64 = 10 << 20 // 10,485,760
)

// TypeCount is one entry of the file type histogram.
type TypeCount struct {
	Type       string `json:"type" yaml:"type"`
	Count      int    `json:"count" yaml:"count"`
	Percentage int    `json:"percentage" yaml:"percentage"`
}

// SizeDistribution counts files per size bucket.
type SizeDistribution struct {
	Small  int `json:"small" yaml:"small"`
	Medium int `json:"medium" yaml:"medium"`
	Large  int `json:"large" yaml:"large"`
}

// Aggregation is the aggregation result.
type Aggregation struct {
	TotalFiles               int                `json:"totalFiles" yaml:"total_files"`
	TotalSize                int64              `json:"totalSize" yaml:"total_size"`
	TotalSizeFormatted       string             `json:"totalSizeFormatted" yaml:"total_size_formatted"`
	AverageFileSize          int64              `json:"averageFileSize" yaml:"average_file_size"`
	AverageFileSizeFormatted string             `json:"averageFileSizeFormatted" yaml:"average_file_size_formatted"`
	FileTypes                []TypeCount        `json:"fileTypes" yaml:"file_types"`
	SizeDistribution         SizeDistribution   `json:"sizeDistribution" yaml:"size_distribution"`
	LargestFile              types.FileMetadata `json:"largestFile" yaml:"largest_file"`
	SmallestFile             types.FileMetadata `json:"smallestFile" yaml:"smallest_file"`
}

// AggregationAgent is the typed agent produced by NewAggregationAgent.
type AggregationAgent = agent.Agent[[]types.FileMetadata, Aggregation]

type aggregator struct {
	delay time.Duration
}

// NewAggregationAgent creates the agent that computes totals and statistics.
func NewAggregationAgent(opts Options) *AggregationAgent {
	return agent.New[[]types.FileMetadata, Aggregation](AggregationName, AggregationRole, &aggregator{delay: opts.Delay}, opts.agentOptions()...)
}

func (a *aggregator) Execute(ctx context.Context, files []types.FileMetadata) (Aggregation, error) {
	if len(files) == 0 {
		return Aggregation{}, types.InvalidInput(AggregationName, "requires file metadata")
	}
	if err := agent.Sleep(ctx, a.delay); err != nil {
		return Aggregation{}, err
	}
	return Aggregate(files), nil
}

// Aggregate computes the statistics for a non-empty metadata sequence.
// The total saturates at math.MaxInt64 instead of overflowing.
func Aggregate(files []types.FileMetadata) Aggregation {
	var total int64
	for _, f := range files {
		if f.Size > math.MaxInt64-total {
			total = math.MaxInt64
			continue
		}
		total += f.Size
	}
	var average int64 = math.MaxInt64
	if avg := math.Round(float64(total) / float64(len(files))); avg < math.MaxInt64 {
		average = int64(avg)
	}

	return Aggregation{
		TotalFiles:               len(files),
		TotalSize:                total,
		TotalSizeFormatted:       FormatSize(total),
		AverageFileSize:          average,
		AverageFileSizeFormatted: FormatSize(average),
		FileTypes:                typeHistogram(files),
		SizeDistribution:         distribution(files),
		LargestFile:              largest(files),
		SmallestFile:             smallest(files),
	}
}

// typeHistogram keeps types in order of first occurrence.
func typeHistogram(files []types.FileMetadata) []TypeCount {
	index := make(map[string]int)
	var hist []TypeCount
	for _, f := range files {
		i, ok := index[f.Type]
		if !ok {
			i = len(hist)
			index[f.Type] = i
			hist = append(hist, TypeCount{Type: f.Type})
		}
		hist[i].Count++
	}
	for i := range hist {
		hist[i].Percentage = int(math.Round(float64(hist[i].Count) / float64(len(files)) * 100))
	}
	return hist
}

func distribution(files []types.FileMetadata) SizeDistribution {
	var d SizeDistribution
	for _, f := range files {
		switch {
		case f.Size < MediumFileThreshold:
			d.Small++
		case f.Size < LargeFileThreshold:
			d.Medium++
		default:
			d.Large++
		}
	}
	return d
}

func largest(files []types.FileMetadata) types.FileMetadata {
	best := files[0]
	for _, f := range files[1:] {
		if f.Size > best.Size {
			best = f
		}
	}
	return best
}

func smallest(files []types.FileMetadata) types.FileMetadata {
	best := files[0]
	for _, f := range files[1:] {
		if f.Size < best.Size {
			best = f
		}
	}
	return best
}

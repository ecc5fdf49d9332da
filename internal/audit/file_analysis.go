package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/types"
)

// File analysis identity.
const (
	FileAnalysisName = "FileAnalysisAgent"
	FileAnalysisRole = "File Processor"
)

// FileAnalysis is the file analysis result.
type FileAnalysis struct {
	FilesAnalyzed int                  `json:"filesAnalyzed" yaml:"files_analyzed"`
	Files         []types.FileMetadata `json:"files" yaml:"files"`
	// AnalysisTime echoes the agent's elapsed time at the moment the result
	// was built, which is always the previous run's value.
	AnalysisTime int64 `json:"analysisTime" yaml:"analysis_time"`
}

// FileAnalysisAgent is the typed agent produced by NewFileAnalysisAgent.
type FileAnalysisAgent = agent.Agent[[]types.FileDescriptor, FileAnalysis]

type fileAnalyzer struct {
	delay time.Duration
	self  *FileAnalysisAgent
}

// NewFileAnalysisAgent creates the agent that turns descriptors into
// FileMetadata records.
func NewFileAnalysisAgent(opts Options) *FileAnalysisAgent {
	fa := &fileAnalyzer{delay: opts.Delay}
	a := agent.New[[]types.FileDescriptor, FileAnalysis](FileAnalysisName, FileAnalysisRole, fa, opts.agentOptions()...)
	fa.self = a
	return a
}

func (f *fileAnalyzer) Execute(ctx context.Context, files []types.FileDescriptor) (FileAnalysis, error) {
	if len(files) == 0 {
		return FileAnalysis{}, types.InvalidInput(FileAnalysisName, "requires a non-empty list of files")
	}

	metadata := make([]types.FileMetadata, 0, len(files))
	for i, file := range files {
		if err := file.Validate(); err != nil {
			return FileAnalysis{}, fmt.Errorf("%s: file %d: %w", FileAnalysisName, i, err)
		}
		metadata = append(metadata, Analyze(i, file))
	}

	if err := agent.Sleep(ctx, f.delay); err != nil {
		return FileAnalysis{}, err
	}

	return FileAnalysis{
		FilesAnalyzed: len(metadata),
		Files:         metadata,
		AnalysisTime:  f.self.Status().ExecutionTime,
	}, nil
}

// Analyze builds the metadata record for one descriptor at position id.
func Analyze(id int, file types.FileDescriptor) types.FileMetadata {
	return types.FileMetadata{
		ID:            id,
		Name:          file.Name,
		Size:          file.Size,
		Type:          TypeOf(file.Name),
		Extension:     ExtensionOf(file.Name),
		Created:       file.LastModified,
		SizeFormatted: FormatSize(file.Size),
	}
}

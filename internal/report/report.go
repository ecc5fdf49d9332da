// Package report assembles the final audit report from the outcomes of the
// pipeline agents and renders it for hosts.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/audit"
	"github.com/tuannvm/fileaudit/internal/types"
)

// StatusCompleted is the only overall status a built report carries; failed
// runs produce no report.
const StatusCompleted = "completed"

// Report is the final audit report.
type Report struct {
	AuditID            string          `json:"auditId" yaml:"audit_id"`
	Timestamp          time.Time       `json:"timestamp" yaml:"timestamp"`
	Status             string          `json:"status" yaml:"status"`
	TotalExecutionTime int64           `json:"totalExecutionTime" yaml:"total_execution_time"`
	Summary            Summary         `json:"summary" yaml:"summary"`
	AgentReports       AgentReports    `json:"agentReports" yaml:"agent_reports"`
	Findings           []types.Finding `json:"findings" yaml:"findings"`
	DetailedResults    DetailedResults `json:"detailedResults" yaml:"detailed_results"`
}

// Summary is the headline block of a report.
type Summary struct {
	TotalFiles int               `json:"totalFiles" yaml:"total_files"`
	TotalSize  string            `json:"totalSize" yaml:"total_size"`
	FileTypes  []audit.TypeCount `json:"fileTypes" yaml:"file_types"`
	RiskLevel  types.RiskLevel   `json:"riskLevel" yaml:"risk_level"`
}

// AgentStatus is the status block shared by every per-agent report. Status
// is empty when the agent did not run.
type AgentStatus struct {
	Name          string       `json:"name" yaml:"name"`
	Status        agent.Status `json:"status,omitempty" yaml:"status,omitempty"`
	ExecutionTime int64        `json:"executionTime" yaml:"execution_time"`
}

// Ran reports whether the agent produced a record in this run.
func (s AgentStatus) Ran() bool { return s.Status != "" }

type FileAnalysisReport struct {
	AgentStatus   `yaml:",inline"`
	FilesAnalyzed int `json:"filesAnalyzed" yaml:"files_analyzed"`
}

type BatchProcessingReport struct {
	AgentStatus  `yaml:",inline"`
	TotalBatches int `json:"totalBatches" yaml:"total_batches"`
}

type AggregationReport struct {
	AgentStatus `yaml:",inline"`
	Statistics  Statistics `json:"statistics" yaml:"statistics"`
}

// Statistics names the notable files of an aggregation.
type Statistics struct {
	AverageFileSize string `json:"averageFileSize,omitempty" yaml:"average_file_size,omitempty"`
	LargestFile     string `json:"largestFile,omitempty" yaml:"largest_file,omitempty"`
	SmallestFile    string `json:"smallestFile,omitempty" yaml:"smallest_file,omitempty"`
}

type SecurityAnalysisReport struct {
	AgentStatus    `yaml:",inline"`
	FindingsCount  int  `json:"findingsCount" yaml:"findings_count"`
	ThreatDetected bool `json:"threatDetected" yaml:"threat_detected"`
}

// AgentReports holds one status block per pipeline step.
type AgentReports struct {
	FileAnalysis    FileAnalysisReport     `json:"fileAnalysis" yaml:"file_analysis"`
	BatchProcessing BatchProcessingReport  `json:"batchProcessing" yaml:"batch_processing"`
	Aggregation     AggregationReport      `json:"aggregation" yaml:"aggregation"`
	Security        SecurityAnalysisReport `json:"security" yaml:"security"`
}

// All returns the status blocks in plan order.
func (a AgentReports) All() []AgentStatus {
	return []AgentStatus{
		a.FileAnalysis.AgentStatus,
		a.BatchProcessing.AgentStatus,
		a.Aggregation.AgentStatus,
		a.Security.AgentStatus,
	}
}

// DetailedResults echoes the raw agent outputs.
type DetailedResults struct {
	Files            []types.FileMetadata  `json:"files" yaml:"files"`
	AggregationData  *audit.Aggregation    `json:"aggregationData,omitempty" yaml:"aggregation_data,omitempty"`
	SecurityAnalysis *audit.SecurityReport `json:"securityAnalysis,omitempty" yaml:"security_analysis,omitempty"`
}

// Outcome is what a coordinator stored for one step: the run record and, for
// completed runs, the typed output. Both are nil when the step did not run.
type Outcome[T any] struct {
	Record *agent.Record
	Output *T
}

func (o Outcome[T]) status(name string) AgentStatus {
	s := AgentStatus{Name: name}
	if o.Record != nil {
		s.Status = o.Record.Status
		s.ExecutionTime = o.Record.ExecutionTime
	}
	return s
}

// Inputs are the step outcomes a report is built from.
type Inputs struct {
	FileAnalysis    Outcome[audit.FileAnalysis]
	BatchProcessing Outcome[audit.BatchReport]
	Aggregation     Outcome[audit.Aggregation]
	Security        Outcome[audit.SecurityReport]
}

// TotalExecutionTime sums the elapsed time of every recorded run. This is not
// the wall-clock span of the audit when steps ran concurrently.
func (in Inputs) TotalExecutionTime() int64 {
	var total int64
	for _, rec := range []*agent.Record{
		in.FileAnalysis.Record,
		in.BatchProcessing.Record,
		in.Aggregation.Record,
		in.Security.Record,
	} {
		if rec != nil {
			total += rec.ExecutionTime
		}
	}
	return total
}

// Build assembles a report from in. Steps that did not run contribute zero
// values: "0 Bytes", empty lists and an unknown risk level.
func Build(in Inputs, now time.Time) Report {
	fa := in.FileAnalysis.Output
	bp := in.BatchProcessing.Output
	agg := in.Aggregation.Output
	sec := in.Security.Output

	r := Report{
		AuditID:            NewAuditID(now),
		Timestamp:          now,
		Status:             StatusCompleted,
		TotalExecutionTime: in.TotalExecutionTime(),
		Summary: Summary{
			TotalSize: audit.FormatSize(0),
			FileTypes: []audit.TypeCount{},
			RiskLevel: types.RiskUnknown,
		},
		AgentReports: AgentReports{
			FileAnalysis:    FileAnalysisReport{AgentStatus: in.FileAnalysis.status("File Analysis")},
			BatchProcessing: BatchProcessingReport{AgentStatus: in.BatchProcessing.status("Batch Processing")},
			Aggregation:     AggregationReport{AgentStatus: in.Aggregation.status("Aggregation")},
			Security:        SecurityAnalysisReport{AgentStatus: in.Security.status("Security Analysis")},
		},
		Findings: []types.Finding{},
		DetailedResults: DetailedResults{
			Files:            []types.FileMetadata{},
			AggregationData:  agg,
			SecurityAnalysis: sec,
		},
	}

	if fa != nil {
		r.AgentReports.FileAnalysis.FilesAnalyzed = fa.FilesAnalyzed
		if fa.Files != nil {
			r.DetailedResults.Files = fa.Files
		}
	}
	if bp != nil {
		r.AgentReports.BatchProcessing.TotalBatches = bp.TotalBatches
	}
	if agg != nil {
		r.Summary.TotalFiles = agg.TotalFiles
		r.Summary.TotalSize = agg.TotalSizeFormatted
		if agg.FileTypes != nil {
			r.Summary.FileTypes = agg.FileTypes
		}
		r.AgentReports.Aggregation.Statistics = Statistics{
			AverageFileSize: agg.AverageFileSizeFormatted,
			LargestFile:     agg.LargestFile.Name,
			SmallestFile:    agg.SmallestFile.Name,
		}
	}
	if sec != nil {
		r.Summary.RiskLevel = sec.RiskLevel
		r.AgentReports.Security.FindingsCount = sec.FindingsCount
		r.AgentReports.Security.ThreatDetected = sec.ThreatDetected
		if sec.Findings != nil {
			r.Findings = sec.Findings
		}
	}
	return r
}

// NewAuditID returns "AUDIT-<unix ms>-<9 upper-case alphanumerics>".
func NewAuditID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("AUDIT-%d-%s", now.UnixMilli(), suffix[:9])
}

// Package types contains shared type definitions used across the fileaudit codebase.
// Agents, the coordinator and the host surfaces all exchange these values,
// so they live here to avoid import cycles between those packages.
package types

import (
	"strings"
	"time"
)

// FileDescriptor is one uploaded file as supplied by the host.
// Only the name, size and modification time are ever inspected.
type FileDescriptor struct {
	Name         string    `json:"name" yaml:"name"`
	Size         int64     `json:"size" yaml:"size"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
}

// NewFileDescriptor validates and builds a descriptor.
// Names must contain at least one non-space character and sizes must be non-negative.
func NewFileDescriptor(name string, size int64, lastModified time.Time) (FileDescriptor, error) {
	fd := FileDescriptor{Name: name, Size: size, LastModified: lastModified}
	if err := fd.Validate(); err != nil {
		return FileDescriptor{}, err
	}
	return fd, nil
}

// Validate checks the descriptor invariants.
func (f FileDescriptor) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return InvalidInput("file descriptor", "name is required")
	}
	if f.Size < 0 {
		return InvalidInput("file descriptor", "size of %q must be non-negative, got %d", f.Name, f.Size)
	}
	return nil
}

// FileMetadata is the per-file record produced by file analysis and consumed
// by every downstream agent. Values are never mutated after creation.
type FileMetadata struct {
	ID            int       `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Size          int64     `json:"size" yaml:"size"`
	Type          string    `json:"type" yaml:"type"`
	Extension     string    `json:"extension" yaml:"extension"`
	Created       time.Time `json:"created" yaml:"created"`
	SizeFormatted string    `json:"sizeFormatted" yaml:"size_formatted"`
}

// FindingType classifies a security finding.
type FindingType string

const (
	FindingSuccess FindingType = "success"
	FindingInfo    FindingType = "info"
	FindingWarning FindingType = "warning"
	FindingError   FindingType = "error"
)

// Severity grades a security finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Finding is one security or integrity observation.
type Finding struct {
	Type     FindingType `json:"type" yaml:"type"`
	Severity Severity    `json:"severity" yaml:"severity"`
	File     string      `json:"file" yaml:"file"`
	Message  string      `json:"message" yaml:"message"`
}

// RiskLevel is the coarse classification derived from finding counts.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
	// RiskUnknown is reported when no security analysis ran.
	RiskUnknown RiskLevel = "unknown"
)
